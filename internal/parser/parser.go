
package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Field locates one value inside a list item. An empty Attr reads the text.
type Field struct {
	Selector string
	Attr     string
	Optional bool
}

// ListSpec describes a list page: Items selects one node per entry and the
// fields are resolved relative to it. Link defaults to the href of the title
// node when its Selector is empty.
type ListSpec struct {
	Items       string
	Title       Field
	Link        Field
	Attribution Field
	Summary     Field
	Date        Field
	// SkipUntitled drops entries with no title node instead of reporting them.
	SkipUntitled bool
}

// Item is the outcome for one list entry. Err is set when a required field
// is missing; the other fields are then incomplete.
type Item struct {
	Index       int
	Title       string
	Link        string
	Attribution string
	Summary     string
	Date        string
	Err         error
}

// MissingFieldError reports a required field that matched nothing.
type MissingFieldError struct {
	Field    string
	Selector string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing %s (%s)", e.Field, e.Selector)
}

type Parser struct{}

func New() *Parser { return &Parser{} }

var whitespaceRe = regexp.MustCompile(`\s+`)

// Document decodes r to UTF-8 using the declared or sniffed charset and
// parses it.
func (p *Parser) Document(r io.Reader, contentType string) (*goquery.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
}

// ExtractList returns one Item per node matched by spec.Items. Relative links
// are resolved against base when it is non-empty.
func (p *Parser) ExtractList(r io.Reader, contentType, base string, spec ListSpec) ([]Item, error) {
	doc, err := p.Document(r, contentType)
	if err != nil {
		return nil, err
	}
	var baseURL *url.URL
	if base != "" {
		baseURL, _ = url.Parse(base)
	}

	var items []Item
	doc.Find(spec.Items).Each(func(i int, s *goquery.Selection) {
		titleSel := s.Find(spec.Title.Selector).First()
		if titleSel.Length() == 0 && spec.SkipUntitled {
			return
		}
		it := Item{Index: i}
		var ok bool
		if it.Title, ok = value(titleSel, spec.Title.Attr); !ok || it.Title == "" {
			it.Err = &MissingFieldError{Field: "title", Selector: spec.Title.Selector}
			items = append(items, it)
			return
		}

		linkSel := titleSel
		linkField := spec.Link
		if linkField.Selector != "" {
			linkSel = s.Find(linkField.Selector).First()
		}
		if linkField.Attr == "" {
			linkField.Attr = "href"
		}
		link, ok := value(linkSel, linkField.Attr)
		if !ok && !linkField.Optional {
			it.Err = &MissingFieldError{Field: "link", Selector: linkField.Selector}
			items = append(items, it)
			return
		}
		it.Link = resolve(baseURL, link)

		for _, f := range []struct {
			name  string
			field Field
			dst   *string
		}{
			{"attribution", spec.Attribution, &it.Attribution},
			{"summary", spec.Summary, &it.Summary},
			{"date", spec.Date, &it.Date},
		} {
			if f.field.Selector == "" {
				continue
			}
			v, ok := value(s.Find(f.field.Selector).First(), f.field.Attr)
			if !ok && !f.field.Optional {
				it.Err = &MissingFieldError{Field: f.name, Selector: f.field.Selector}
				break
			}
			*f.dst = v
		}
		items = append(items, it)
	})
	return items, nil
}

func value(s *goquery.Selection, attr string) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	if attr != "" {
		v, ok := s.Attr(attr)
		return strings.TrimSpace(v), ok
	}
	return Clean(s.Text()), true
}

// Clean trims text and collapses internal whitespace runs.
func Clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func resolve(base *url.URL, link string) string {
	if base == nil || link == "" {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(u).String()
}
