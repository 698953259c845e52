
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"trend-collector/pkg/logger"
)

func TestStartStopPromptly(t *testing.T) {
	var runs int32
	s := New(func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, logger.Discard())

	if !s.Start(time.Hour) {
		t.Fatal("first start should succeed")
	}
	if s.Start(time.Hour) {
		t.Fatal("second start should be a no-op")
	}
	done := s.done

	start := time.Now()
	if !s.Stop() {
		t.Fatal("stop should report the running loop")
	}
	select {
	case <-done:
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("loop did not exit")
	}
	if time.Since(start) > 1500*time.Millisecond {
		t.Fatalf("stop took %s", time.Since(start))
	}
	if n := atomic.LoadInt32(&runs); n > 1 {
		t.Fatalf("at most one pass should run, got %d", n)
	}
	if s.Running() {
		t.Fatal("scheduler should be stopped")
	}
	if s.Stop() {
		t.Fatal("stop on a stopped scheduler is a no-op")
	}
}

func TestFailuresDoNotEndTheLoop(t *testing.T) {
	var runs int32
	s := New(func(ctx context.Context) error {
		n := atomic.AddInt32(&runs, 1)
		if n == 1 {
			return errors.New("portal down")
		}
		if n == 2 {
			panic("bad page")
		}
		return nil
	}, logger.Discard())

	s.Start(10 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	if n := atomic.LoadInt32(&runs); n < 3 {
		t.Fatalf("loop should survive failures, ran %d times", n)
	}
}

func TestStopDoesNotCancelRunningJob(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var cancelled atomic.Bool
	s := New(func(ctx context.Context) error {
		close(started)
		<-release
		cancelled.Store(ctx.Err() != nil)
		return nil
	}, logger.Discard())
	s.stopWait = 20 * time.Millisecond

	s.Start(time.Hour)
	<-started
	done := s.done
	s.Stop()
	close(release)
	<-done
	if cancelled.Load() {
		t.Fatal("job context should not be cancelled")
	}
}

func TestRestartAfterStop(t *testing.T) {
	s := New(func(ctx context.Context) error { return nil }, logger.Discard())
	s.Start(time.Hour)
	s.Stop()
	if !s.Start(time.Hour) {
		t.Fatal("start after stop should succeed")
	}
	s.Stop()
}

func TestNoSecondLoopWhileLastPassRuns(t *testing.T) {
	var active, maxActive int32
	started := make(chan struct{}, 1)
	s := New(func(ctx context.Context) error {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(2 * time.Second)
		return nil
	}, logger.Discard())
	s.stopWait = 50 * time.Millisecond

	s.Start(time.Hour)
	<-started
	done := s.done
	if !s.Stop() {
		t.Fatal("stop should report the running loop")
	}
	if !s.Running() {
		t.Fatal("loop is still finishing its pass and should report running")
	}
	if s.Start(time.Hour) {
		t.Fatal("start must wait for the previous pass to end")
	}

	<-done
	if s.Running() {
		t.Fatal("loop has exited")
	}
	if !s.Start(time.Hour) {
		t.Fatal("start after the pass ended should succeed")
	}
	<-started
	s.Stop()
	if n := atomic.LoadInt32(&maxActive); n != 1 {
		t.Fatalf("want one pass at a time, saw %d", n)
	}
}
