
// Package collector runs one full collection pass over the enabled sources
// and assembles a Snapshot. It never persists anything.
package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trend-collector/internal/keywords"
	"trend-collector/internal/models"
	"trend-collector/internal/source"
	"trend-collector/pkg/logger"
)

const (
	overallTopN     = 20
	categoryTopN    = 10
	categoryKeepMax = 10
)

// ErrUnknownSource is returned when a requested provider has no adapter.
var ErrUnknownSource = errors.New("unknown source")

// CollectionError is a failure that escaped per-page containment. Partial
// results of the pass are discarded.
type CollectionError struct {
	Err error
}

func (e *CollectionError) Error() string { return "collection failed: " + e.Err.Error() }
func (e *CollectionError) Unwrap() error { return e.Err }

// Range is a closed interval for randomized pauses.
type Range struct {
	Min time.Duration
	Max time.Duration
}

type Config struct {
	NewsPages    int
	BlogPages    int
	SeedCount    int
	PageDelay    Range
	KeywordDelay Range
	// Providers is the default provider set when Options.Sources is empty.
	Providers []string
}

func DefaultConfig() Config {
	return Config{
		NewsPages:    2,
		BlogPages:    1,
		SeedCount:    5,
		PageDelay:    Range{Min: time.Second, Max: 2 * time.Second},
		KeywordDelay: Range{Min: 2 * time.Second, Max: 3 * time.Second},
		Providers:    []string{source.ProviderNaver, source.ProviderDaum},
	}
}

// Options narrows a single pass. Empty fields mean "everything".
type Options struct {
	Categories []string `json:"categories,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// DelayFunc pauses for a random duration in [min, max] or until ctx is done.
type DelayFunc func(ctx context.Context, min, max time.Duration)

// SleepRandom is the production DelayFunc.
func SleepRandom(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d += rand.N(max - min)
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type Collector struct {
	adapters []source.Adapter
	cfg      Config
	delay    DelayFunc
	now      func() time.Time
	log      *logger.Logger
}

type Option func(*Collector)

func WithDelay(d DelayFunc) Option { return func(c *Collector) { c.delay = d } }

func WithClock(now func() time.Time) Option { return func(c *Collector) { c.now = now } }

// New builds a collector over adapters, visited in the given order.
func New(adapters []source.Adapter, cfg Config, l *logger.Logger, opts ...Option) *Collector {
	c := &Collector{
		adapters: adapters,
		cfg:      cfg,
		delay:    SleepRandom,
		now:      time.Now,
		log:      l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// textBuffer accumulates ranker input for one key, remembering insertion order.
type textBuffer struct {
	order []string
	texts map[string]*strings.Builder
}

func newTextBuffer() *textBuffer {
	return &textBuffer{texts: map[string]*strings.Builder{}}
}

func (b *textBuffer) touch(key string) *strings.Builder {
	sb, ok := b.texts[key]
	if !ok {
		sb = &strings.Builder{}
		b.texts[key] = sb
		b.order = append(b.order, key)
	}
	return sb
}

// Collect runs news collection, keyword ranking and the blog pass.
func (c *Collector) Collect(ctx context.Context, opts Options) (snap *models.Snapshot, err error) {
	ctx, span := otel.Tracer("internal/collector").Start(ctx, "collector.collect")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = &CollectionError{Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	news, blogs, providers, err := c.selectAdapters(opts.Sources)
	if err != nil {
		return nil, err
	}
	if err := validateCategories(news, opts.Categories); err != nil {
		return nil, err
	}

	start := c.now()
	snap = &models.Snapshot{
		CollectedAt:      start,
		Sources:          providers,
		News:             []models.RawRecord{},
		Blogs:            []models.RawRecord{},
		CategoryKeywords: map[string][]string{},
	}
	span.SetAttributes(attribute.StringSlice("collector.sources", providers))

	var perSource []string
	for _, a := range news {
		records, overall, byCategory := c.collectNews(ctx, a, opts.Categories, start)
		snap.News = append(snap.News, records...)
		perSource = append(perSource, overall...)
		for _, cat := range byCategory.order {
			top := keywords.Top(byCategory.texts[cat].String(), categoryTopN)
			snap.CategoryKeywords[cat] = append(snap.CategoryKeywords[cat], top...)
		}
	}
	if err := interrupted(ctx); err != nil {
		return nil, err
	}
	snap.OverallKeywords = keywords.Count(perSource, overallTopN)

	seeds := opts.Keywords
	if len(seeds) == 0 {
		seeds = snap.OverallKeywords
		if len(seeds) > c.cfg.SeedCount {
			seeds = seeds[:c.cfg.SeedCount]
		}
	}
	for _, a := range blogs {
		snap.Blogs = append(snap.Blogs, c.collectBlogs(ctx, a, seeds, start)...)
	}

	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	for cat, list := range snap.CategoryKeywords {
		snap.CategoryKeywords[cat] = dedupe(list, categoryKeepMax)
	}

	span.SetAttributes(
		attribute.Int("collector.news", len(snap.News)),
		attribute.Int("collector.blogs", len(snap.Blogs)),
	)
	c.log.Infof("collected %d news, %d blogs from %v in %s",
		len(snap.News), len(snap.Blogs), providers, c.now().Sub(start).Round(time.Millisecond))
	return snap, nil
}

// interrupted turns a cancelled pass into an error. Every fetch after the
// cancellation failed, so the partial result must not be stored.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CollectionError{Err: fmt.Errorf("interrupted: %w", err)}
	}
	return nil
}

// collectNews walks one adapter's categories and pages. It returns the
// records, the adapter's own overall keywords and its per-category text.
func (c *Collector) collectNews(ctx context.Context, a source.Adapter, requested []string, date time.Time) ([]models.RawRecord, []string, *textBuffer) {
	categories := a.Categories()
	if len(requested) > 0 {
		categories = categories[:0:0]
		for _, cat := range requested {
			if source.HasCategory(a, cat) {
				categories = append(categories, cat)
			}
		}
	}

	var (
		records []models.RawRecord
		all     strings.Builder
		byCat   = newTextBuffer()
	)
	for _, cat := range categories {
		catText := byCat.touch(cat)
		for page := 1; page <= c.cfg.NewsPages; page++ {
			recs, err := a.FetchPage(ctx, cat, page, date)
			if err != nil {
				c.log.WithField("source", a.Name()).Warnf("category %s page %d: %v", cat, page, err)
				continue
			}
			records = append(records, recs...)
			for _, r := range recs {
				all.WriteString(r.Text())
				catText.WriteString(r.Text())
			}
			c.delay(ctx, c.cfg.PageDelay.Min, c.cfg.PageDelay.Max)
		}
	}
	return records, keywords.Top(all.String(), overallTopN), byCat
}

func (c *Collector) collectBlogs(ctx context.Context, a source.Adapter, seeds []string, date time.Time) []models.RawRecord {
	var records []models.RawRecord
	for _, kw := range seeds {
		for page := 1; page <= c.cfg.BlogPages; page++ {
			recs, err := a.FetchPage(ctx, kw, page, date)
			if err != nil {
				c.log.WithField("source", a.Name()).Warnf("keyword %q page %d: %v", kw, page, err)
				break
			}
			records = append(records, recs...)
		}
		c.delay(ctx, c.cfg.KeywordDelay.Min, c.cfg.KeywordDelay.Max)
	}
	return records
}

// selectAdapters splits the adapters matching the requested providers into
// news and blog sets and lists the providers in use.
func (c *Collector) selectAdapters(requested []string) (news, blogs []source.Adapter, providers []string, err error) {
	explicit := len(requested) > 0
	if !explicit {
		requested = c.cfg.Providers
	}
	if len(requested) == 0 {
		for _, a := range c.adapters {
			requested = append(requested, a.Provider())
		}
	}
	want := map[string]bool{}
	for _, p := range requested {
		want[p] = true
	}
	seen := map[string]bool{}
	for _, a := range c.adapters {
		if !want[a.Provider()] {
			continue
		}
		if !seen[a.Provider()] {
			seen[a.Provider()] = true
			providers = append(providers, a.Provider())
		}
		switch a.Kind() {
		case source.News:
			news = append(news, a)
		case source.Blog:
			blogs = append(blogs, a)
		}
	}
	if explicit {
		for _, p := range requested {
			if !seen[p] {
				return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownSource, p)
			}
		}
	}
	return news, blogs, providers, nil
}

// validateCategories rejects any requested category no news adapter knows.
func validateCategories(news []source.Adapter, requested []string) error {
	for _, cat := range requested {
		known := false
		for _, a := range news {
			if source.HasCategory(a, cat) {
				known = true
				break
			}
		}
		if !known {
			return &source.InvalidCategoryError{Source: "collector", Category: cat, Valid: union(news)}
		}
	}
	return nil
}

func union(adapters []source.Adapter) []string {
	var out []string
	seen := map[string]bool{}
	for _, a := range adapters {
		for _, c := range a.Categories() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func dedupe(list []string, max int) []string {
	out := make([]string, 0, len(list))
	seen := map[string]bool{}
	for _, k := range list {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == max {
			break
		}
	}
	return out
}
