
// Package source turns portal list pages and feeds into raw records. Every
// source is an Adapter; the HTML portals share one selector-driven Site.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"trend-collector/internal/models"
)

type Kind string

const (
	News Kind = "news"
	Blog Kind = "blog"
)

// Adapter fetches one page of results for a category (news) or a search
// keyword (blog).
type Adapter interface {
	Name() string
	Provider() string
	Kind() Kind
	// Categories is the closed, ordered category set. Blog adapters return nil.
	Categories() []string
	FetchPage(ctx context.Context, query string, page int, date time.Time) ([]models.RawRecord, error)
}

// Fetcher is the transport used by adapters; *crawler.HTTPClient satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error)
}

// FetchError is a transport or HTTP status failure for one page.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a single item that could not be extracted. Index is -1 when
// the page as a whole could not be parsed.
type ParseError struct {
	Source string
	Index  int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: parse page: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: parse item %d: %v", e.Source, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidCategoryError is returned before any request is made.
type InvalidCategoryError struct {
	Source   string
	Category string
	Valid    []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("%s: invalid category %q (valid: %s)", e.Source, e.Category, strings.Join(e.Valid, ", "))
}

// HasCategory reports whether a lists category.
func HasCategory(a Adapter, category string) bool {
	for _, c := range a.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
