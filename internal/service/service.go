
// Package service is the collaborator-facing API of the trend engine. The
// HTTP server, the CLI and the background scheduler all go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trend-collector/internal/collector"
	"trend-collector/internal/models"
	"trend-collector/internal/notify"
	"trend-collector/internal/report"
	"trend-collector/internal/scheduler"
	"trend-collector/internal/store"
	"trend-collector/pkg/logger"
)

// DefaultIntervalHours is used when background collection is started
// without a positive interval.
const DefaultIntervalHours = 3

type Collector interface {
	Collect(ctx context.Context, opts collector.Options) (*models.Snapshot, error)
}

type SnapshotStore interface {
	Get(ctx context.Context, date string) (*models.Snapshot, error)
	Put(ctx context.Context, snap *models.Snapshot) error
	Today() string
}

type Service struct {
	collector Collector
	store     SnapshotStore
	notifier  notify.Notifier
	reports   *report.Generator
	scheduler *scheduler.Scheduler
	log       *logger.Logger
}

type Option func(*Service)

func WithNotifier(n notify.Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithReportClock fixes "today" for the report generators.
func WithReportClock(now func() time.Time) Option {
	return func(s *Service) { s.reports = report.New(s.store, report.WithClock(now)) }
}

func New(c Collector, st SnapshotStore, l *logger.Logger, opts ...Option) *Service {
	s := &Service{
		collector: c,
		store:     st,
		notifier:  notify.Nop{},
		log:       l,
	}
	s.reports = report.New(st)
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = scheduler.New(func(ctx context.Context) error {
		_, err := s.CollectTrends(ctx, collector.Options{})
		return err
	}, l)
	return s
}

// CollectTrends runs a collection pass, stores the result and announces it.
// Every failure comes back as a *collector.CollectionError.
func (s *Service) CollectTrends(ctx context.Context, opts collector.Options) (*models.Snapshot, error) {
	snap, err := s.collector.Collect(ctx, opts)
	if err != nil {
		var ce *collector.CollectionError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &collector.CollectionError{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &collector.CollectionError{Err: fmt.Errorf("interrupted: %w", err)}
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return nil, &collector.CollectionError{Err: fmt.Errorf("persist: %w", err)}
	}
	if err := s.notifier.SnapshotCommitted(ctx, snap); err != nil {
		s.log.Warnf("notify snapshot %s: %v", snap.Date(), err)
	}
	return snap, nil
}

// GetTrends returns the snapshot for date (empty for today). When nothing is
// stored for today and forceCollect is set, a collection runs first.
func (s *Service) GetTrends(ctx context.Context, date string, forceCollect bool) (*models.Snapshot, error) {
	today := s.store.Today()
	if date == "" {
		date = today
	}
	snap, err := s.store.Get(ctx, date)
	if errors.Is(err, store.ErrNotFound) && forceCollect && date == today {
		s.log.Infof("no snapshot for %s yet, collecting", date)
		return s.CollectTrends(ctx, collector.Options{})
	}
	return snap, err
}

// GetEconomyReport always reports on today's snapshot.
func (s *Service) GetEconomyReport(ctx context.Context, includeGlobal bool) *models.EconomyReport {
	return s.reports.Economy(ctx, includeGlobal)
}

func (s *Service) GetWeeklyReport(ctx context.Context, endDate string) (*models.WeeklyReport, error) {
	return s.reports.Weekly(ctx, endDate)
}

// StartBackgroundCollection returns false when collection is already running.
func (s *Service) StartBackgroundCollection(intervalHours int) bool {
	if intervalHours <= 0 {
		intervalHours = DefaultIntervalHours
	}
	return s.scheduler.Start(time.Duration(intervalHours) * time.Hour)
}

// StopBackgroundCollection is idempotent; it reports whether a loop was
// running.
func (s *Service) StopBackgroundCollection() bool {
	return s.scheduler.Stop()
}

func (s *Service) BackgroundRunning() bool {
	return s.scheduler.Running()
}
