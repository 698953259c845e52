
package source

import (
	"context"
	"time"

	"trend-collector/internal/models"
	"trend-collector/internal/parser"
	"trend-collector/pkg/logger"
)

// URLFunc builds the path and query for one page, given the source id for a
// category (news) or the raw search keyword (blog).
type URLFunc func(id string, page int, date time.Time) string

// Category maps an English category identifier to the portal's own id.
type Category struct {
	Name string
	ID   string
}

// SiteConfig is everything that distinguishes one HTML portal from another.
type SiteConfig struct {
	Name       string
	Provider   string
	Kind       Kind
	BaseURL    string
	Categories []Category
	URL        URLFunc
	List       parser.ListSpec
}

// Site is an Adapter over a selector-driven HTML list page.
type Site struct {
	cfg     SiteConfig
	ids     map[string]string
	names   []string
	fetcher Fetcher
	parser  *parser.Parser
	log     *logger.Logger
}

type SiteOption func(*SiteConfig)

// WithBaseURL points the site at another host, e.g. a test server.
func WithBaseURL(base string) SiteOption {
	return func(c *SiteConfig) { c.BaseURL = base }
}

func NewSite(cfg SiteConfig, f Fetcher, l *logger.Logger, opts ...SiteOption) *Site {
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Site{cfg: cfg, fetcher: f, parser: parser.New(), log: l, ids: map[string]string{}}
	for _, c := range cfg.Categories {
		s.ids[c.Name] = c.ID
		s.names = append(s.names, c.Name)
	}
	return s
}

func (s *Site) Name() string     { return s.cfg.Name }
func (s *Site) Provider() string { return s.cfg.Provider }
func (s *Site) Kind() Kind       { return s.cfg.Kind }

func (s *Site) Categories() []string {
	if len(s.names) == 0 {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// FetchPage fetches and parses one list page. Items that fail extraction are
// logged as ParseErrors and skipped.
func (s *Site) FetchPage(ctx context.Context, query string, page int, date time.Time) ([]models.RawRecord, error) {
	id := query
	if s.cfg.Kind == News {
		var ok bool
		if id, ok = s.ids[query]; !ok {
			return nil, &InvalidCategoryError{Source: s.cfg.Name, Category: query, Valid: s.Categories()}
		}
	}
	if page < 1 {
		page = 1
	}

	pageURL := s.cfg.BaseURL + s.cfg.URL(id, page, date)
	body, finalURL, ct, _, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{Source: s.cfg.Name, URL: pageURL, Err: err}
	}
	defer body.Close()

	items, err := s.parser.ExtractList(body, ct, finalURL, s.cfg.List)
	if err != nil {
		return nil, &ParseError{Source: s.cfg.Name, Index: -1, Err: err}
	}

	records := make([]models.RawRecord, 0, len(items))
	for _, it := range items {
		if it.Err != nil {
			s.log.Warnf("%v", &ParseError{Source: s.cfg.Name, Index: it.Index, Err: it.Err})
			continue
		}
		rec := models.RawRecord{
			Title:       it.Title,
			URL:         it.Link,
			Attribution: it.Attribution,
			Summary:     it.Summary,
			Published:   it.Date,
			Source:      s.cfg.Name,
		}
		if s.cfg.Kind == News {
			rec.Category = query
		} else {
			rec.Keyword = query
		}
		records = append(records, rec)
	}
	s.log.Debugf("%s %q page %d: %d records", s.cfg.Name, query, page, len(records))
	return records, nil
}
