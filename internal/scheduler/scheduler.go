
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trend-collector/pkg/logger"
)

// Job is one unit of periodic work. Its context is never cancelled by Stop.
type Job func(ctx context.Context) error

// Scheduler runs a Job immediately and then every interval on its own
// goroutine until stopped.
type Scheduler struct {
	job      Job
	log      *logger.Logger
	stopWait time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(job Job, l *logger.Logger) *Scheduler {
	return &Scheduler{job: job, log: l, stopWait: time.Second}
}

// Start launches the loop. It returns false while a loop is running,
// including a stopped loop still finishing its last pass.
func (s *Scheduler) Start(interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.draining() {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go s.loop(ctx, interval, done)
	s.log.Infof("background collection started, every %s", interval)
	return true
}

// Stop cancels the loop and waits briefly for it to exit. A job already in
// progress runs to completion. It reports whether a loop was running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()

	t := time.NewTimer(s.stopWait)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		s.log.Warnf("background collection still busy after %s; it will exit when the current pass ends", s.stopWait)
	}
	s.log.Infof("background collection stopped")
	return true
}

// Running is true until the loop goroutine has exited.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil || s.draining()
}

// draining reports whether the last loop has not exited yet. Callers hold mu.
func (s *Scheduler) draining() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	for {
		if err := s.run(context.WithoutCancel(ctx)); err != nil {
			s.log.Errorf("background collection failed: %v", err)
		} else {
			s.log.Infof("background collection finished")
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (s *Scheduler) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.job(ctx)
}
