
// Package report derives the economy and weekly views from stored snapshots.
// Reports are recomputed on every call and never persisted.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trend-collector/internal/classifier"
	"trend-collector/internal/keywords"
	"trend-collector/internal/models"
	"trend-collector/internal/store"
)

const (
	economyTopN = 20
	weeklyTopN  = 20
	weekDays    = 7
)

// SnapshotGetter is the part of the store the reports read from.
type SnapshotGetter interface {
	Get(ctx context.Context, date string) (*models.Snapshot, error)
}

type Generator struct {
	store SnapshotGetter
	now   func() time.Time
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

func New(s SnapshotGetter, opts ...Option) *Generator {
	g := &Generator{store: s, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Economy builds the economy report for today. A lookup failure is reported
// in the Error field rather than returned.
func (g *Generator) Economy(ctx context.Context, includeGlobal bool) *models.EconomyReport {
	date := g.now().Format(models.DateLayout)
	rep := &models.EconomyReport{
		Date:         date,
		Keywords:     []string{},
		DomesticNews: []models.RawRecord{},
		GlobalNews:   []models.RawRecord{},
		Blogs:        []models.RawRecord{},
		Sources:      []string{},
	}
	snap, err := g.store.Get(ctx, date)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	collectedAt := snap.CollectedAt
	rep.CollectedAt = &collectedAt
	if snap.Sources != nil {
		rep.Sources = snap.Sources
	}

	cl := classifier.New(includeGlobal)
	var text strings.Builder
	for _, r := range snap.News {
		switch cl.Classify(r) {
		case classifier.Domestic:
			rep.DomesticNews = append(rep.DomesticNews, r)
		case classifier.Global:
			rep.GlobalNews = append(rep.GlobalNews, r)
		default:
			continue
		}
		text.WriteString(r.Text())
	}

	if strings.TrimSpace(text.String()) == "" {
		rep.Keywords = append(rep.Keywords, classifier.FallbackKeywords...)
	} else {
		rep.Keywords = keywords.Top(text.String(), economyTopN)
	}

	for _, b := range snap.Blogs {
		if classifier.RelevantBlog(b, rep.Keywords) {
			rep.Blogs = append(rep.Blogs, b)
		}
	}
	return rep
}

// Weekly merges the seven daily snapshots ending at endDate (YYYY-MM-DD,
// empty for today). Missing days are skipped; other store errors fail the
// report.
func (g *Generator) Weekly(ctx context.Context, endDate string) (*models.WeeklyReport, error) {
	end := g.now()
	if endDate != "" {
		var err error
		end, err = time.ParseInLocation(models.DateLayout, endDate, end.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
	}
	start := end.AddDate(0, 0, -(weekDays - 1))

	rep := &models.WeeklyReport{
		Period: models.Period{
			Start: start.Format(models.DateLayout),
			End:   end.Format(models.DateLayout),
		},
		Daily: map[string]*models.Snapshot{},
	}
	var all []string
	for d := 0; d < weekDays; d++ {
		date := start.AddDate(0, 0, d).Format(models.DateLayout)
		snap, err := g.store.Get(ctx, date)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", date, err)
		}
		rep.Daily[date] = snap
		all = append(all, snap.TopKeywords()...)
	}
	rep.TopKeywords = keywords.Count(all, weeklyTopN)
	return rep, nil
}
