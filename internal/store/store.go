
// Package store persists one snapshot per calendar date and serves today's
// snapshot from memory while it is fresh.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trend-collector/internal/models"
	"trend-collector/pkg/logger"
)

// DefaultFreshness is how long today's cached snapshot is served as is.
const DefaultFreshness = time.Hour

// ErrNotFound matches any *NotFoundError through errors.Is.
var ErrNotFound = errors.New("snapshot not found")

// NotFoundError means no snapshot was committed for Date.
type NotFoundError struct {
	Date string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no trend data for %s; run a collection first", e.Date)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type Store struct {
	backend   Backend
	cache     *Cache
	freshness time.Duration
	now       func() time.Time
	log       *logger.Logger
}

type Option func(*Store)

func WithFreshness(d time.Duration) Option { return func(s *Store) { s.freshness = d } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(backend Backend, cache *Cache, l *logger.Logger, opts ...Option) *Store {
	if cache == nil {
		cache = NewCache()
	}
	s := &Store{
		backend:   backend,
		cache:     cache,
		freshness: DefaultFreshness,
		now:       time.Now,
		log:       l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the store's current date key.
func (s *Store) Today() string {
	return s.now().Format(models.DateLayout)
}

// Get returns the snapshot for date (YYYY-MM-DD). An empty date means today.
func (s *Store) Get(ctx context.Context, date string) (*models.Snapshot, error) {
	if date == "" {
		date = s.Today()
	}
	if date == s.Today() {
		if snap, ok := s.cache.Fresh(date, s.now(), s.freshness); ok {
			return snap, nil
		}
	}

	data, err := s.backend.Read(ctx, date)
	if errors.Is(err, ErrNoData) {
		return nil, &NotFoundError{Date: date}
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", date, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", date, err)
	}
	if snap.CategoryKeywords == nil {
		snap.CategoryKeywords = map[string][]string{}
	}
	return &snap, nil
}

// Put writes snap under its own date, replacing anything stored there, and
// refreshes the cache when that date is today.
func (s *Store) Put(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	date := snap.Date()
	if err := s.backend.Write(ctx, date, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", date, err)
	}
	if date == s.Today() {
		s.cache.Set(snap, s.now())
	}
	s.log.Debugf("stored snapshot %s (%d bytes)", date, len(data))
	return nil
}
