
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"trend-collector/internal/models"
	"trend-collector/internal/parser"
	"trend-collector/pkg/logger"
)

const (
	YonhapName     = "yonhap-news"
	ProviderYonhap = "yonhap"
)

// Feed is a news Adapter over per-category RSS/Atom feeds. Feeds only carry
// the latest items, so pages past the first are empty and date is ignored.
type Feed struct {
	name       string
	provider   string
	base       string
	attrib     string
	categories []Category
	fetcher    Fetcher
	parser     *gofeed.Parser
	log        *logger.Logger
}

// Yonhap reads Yonhap News Agency section feeds. f must accept feed media
// types.
func Yonhap(f Fetcher, l *logger.Logger, opts ...SiteOption) *Feed {
	cfg := SiteConfig{BaseURL: "https://www.yna.co.kr"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Feed{
		name:     YonhapName,
		provider: ProviderYonhap,
		base:     cfg.BaseURL,
		attrib:   "연합뉴스",
		categories: []Category{
			{"economy", "economy"},
			{"politics", "politics"},
			{"society", "society"},
			{"international", "international"},
			{"culture", "culture"},
			{"market", "market"},
		},
		fetcher: f,
		parser:  gofeed.NewParser(),
		log:     l,
	}
}

func (f *Feed) Name() string     { return f.name }
func (f *Feed) Provider() string { return f.provider }
func (f *Feed) Kind() Kind       { return News }

func (f *Feed) Categories() []string {
	out := make([]string, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c.Name)
	}
	return out
}

func (f *Feed) slug(category string) (string, bool) {
	for _, c := range f.categories {
		if c.Name == category {
			return c.ID, true
		}
	}
	return "", false
}

func (f *Feed) FetchPage(ctx context.Context, query string, page int, _ time.Time) ([]models.RawRecord, error) {
	slug, ok := f.slug(query)
	if !ok {
		return nil, &InvalidCategoryError{Source: f.name, Category: query, Valid: f.Categories()}
	}
	if page > 1 {
		return nil, nil
	}

	feedURL := fmt.Sprintf("%s/rss/%s.xml", f.base, slug)
	body, _, _, _, err := f.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, &FetchError{Source: f.name, URL: feedURL, Err: err}
	}
	defer body.Close()

	parsed, err := f.parser.Parse(body)
	if err != nil {
		return nil, &ParseError{Source: f.name, Index: -1, Err: err}
	}

	records := make([]models.RawRecord, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		title := parser.Clean(item.Title)
		if title == "" {
			f.log.Warnf("%v", &ParseError{Source: f.name, Index: i, Err: &parser.MissingFieldError{Field: "title", Selector: "item/title"}})
			continue
		}
		attrib := f.attrib
		if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
			attrib = item.Authors[0].Name
		}
		records = append(records, models.RawRecord{
			Title:       title,
			URL:         item.Link,
			Attribution: attrib,
			Summary:     stripTags(item.Description),
			Published:   item.Published,
			Category:    query,
			Source:      f.name,
		})
	}
	return records, nil
}

// stripTags reduces an HTML fragment from a feed description to its text.
func stripTags(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return parser.Clean(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return parser.Clean(fragment)
	}
	return parser.Clean(doc.Text())
}
