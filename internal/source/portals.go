
package source

import (
	"fmt"
	"net/url"
	"time"

	"trend-collector/internal/parser"
	"trend-collector/pkg/logger"
)

const (
	NaverNewsName = "naver-news"
	DaumNewsName  = "daum-news"
	NaverBlogName = "naver-blog"
	DaumBlogName  = "daum-blog"

	ProviderNaver = "naver"
	ProviderDaum  = "daum"
)

const compactDate = "20060102"

// NaverNews lists naver's per-section breaking news.
func NaverNews(f Fetcher, l *logger.Logger, opts ...SiteOption) *Site {
	return NewSite(SiteConfig{
		Name:     NaverNewsName,
		Provider: ProviderNaver,
		Kind:     News,
		BaseURL:  "https://news.naver.com",
		Categories: []Category{
			{"politics", "100"},
			{"economy", "101"},
			{"society", "102"},
			{"life-culture", "103"},
			{"it-science", "105"},
			{"world", "104"},
		},
		URL: func(id string, page int, date time.Time) string {
			return fmt.Sprintf("/main/list.naver?mode=LSD&mid=sec&sid1=%s&date=%s&page=%d", id, date.Format(compactDate), page)
		},
		List: parser.ListSpec{
			Items:       ".list_body .type06_headline li, .list_body .type06 li",
			Title:       parser.Field{Selector: "dt:not(.photo) a"},
			Attribution: parser.Field{Selector: ".writing"},
			Summary:     parser.Field{Selector: ".lede"},
			Date:        parser.Field{Selector: ".date"},
		},
	}, f, l, opts...)
}

// DaumNews lists daum's breaking news per section. Summaries are optional
// there and entries without a title link are layout filler.
func DaumNews(f Fetcher, l *logger.Logger, opts ...SiteOption) *Site {
	return NewSite(SiteConfig{
		Name:     DaumNewsName,
		Provider: ProviderDaum,
		Kind:     News,
		BaseURL:  "https://news.daum.net",
		Categories: []Category{
			{"society", "society"},
			{"politics", "politics"},
			{"economy", "economic"},
			{"international", "foreign"},
			{"culture", "culture"},
			{"it", "digital"},
			{"sports", "sports"},
			{"entertainment", "entertain"},
		},
		URL: func(id string, page int, date time.Time) string {
			return fmt.Sprintf("/breakingnews/%s?page=%d&regDate=%s", id, page, date.Format(compactDate))
		},
		List: parser.ListSpec{
			Items:        ".list_news2 li",
			Title:        parser.Field{Selector: ".tit_thumb a"},
			Attribution:  parser.Field{Selector: ".info_news .txt_info"},
			Summary:      parser.Field{Selector: ".desc_thumb", Optional: true},
			Date:         parser.Field{Selector: ".info_news .txt_info:nth-child(2)"},
			SkipUntitled: true,
		},
	}, f, l, opts...)
}

// NaverBlog searches naver's blog tab, ten results per page.
func NaverBlog(f Fetcher, l *logger.Logger, opts ...SiteOption) *Site {
	return NewSite(SiteConfig{
		Name:     NaverBlogName,
		Provider: ProviderNaver,
		Kind:     Blog,
		BaseURL:  "https://search.naver.com",
		URL: func(keyword string, page int, _ time.Time) string {
			start := (page-1)*10 + 1
			return fmt.Sprintf("/search.naver?where=blog&sm=tab_pge&query=%s&start=%d", url.QueryEscape(keyword), start)
		},
		List: parser.ListSpec{
			Items:       ".sh_blog_top",
			Title:       parser.Field{Selector: ".sh_blog_title"},
			Attribution: parser.Field{Selector: ".sh_blog_name"},
			Summary:     parser.Field{Selector: ".sh_blog_passage"},
			Date:        parser.Field{Selector: ".txt_inline"},
		},
	}, f, l, opts...)
}

// DaumBlog searches daum's blog collection.
func DaumBlog(f Fetcher, l *logger.Logger, opts ...SiteOption) *Site {
	return NewSite(SiteConfig{
		Name:     DaumBlogName,
		Provider: ProviderDaum,
		Kind:     Blog,
		BaseURL:  "https://search.daum.net",
		URL: func(keyword string, page int, _ time.Time) string {
			return fmt.Sprintf("/search?w=blog&q=%s&p=%d", url.QueryEscape(keyword), page)
		},
		List: parser.ListSpec{
			Items:       "#blogColl .c-list-basic > li, #blogColl .list_info > li",
			Title:       parser.Field{Selector: ".c-tit-doc a, a.f_link_b"},
			Attribution: parser.Field{Selector: ".c-tit-doc .txt_info, a.f_url", Optional: true},
			Summary:     parser.Field{Selector: ".c-desc, p.f_eb.desc", Optional: true},
			Date:        parser.Field{Selector: ".gem-subinfo .txt_info, span.f_nb.date", Optional: true},
		},
	}, f, l, opts...)
}
