package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
)

const (
	defaultPruneInterval = time.Minute
	pruneLockKey         = "logging"
	pruneTimeout         = 2 * time.Minute
)

var defaultSchedLogger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)

type pruneStore interface {
	PruneQueryLogs(ctx context.Context, before time.Time) (int64, error)
}

type leaser interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Scheduler deletes query-log rows older than Retention on the Spec schedule.
// With a Locker set only one replica prunes per slot.
type Scheduler struct {
	Store     pruneStore
	Locker    leaser
	Spec      string
	Retention time.Duration
	Interval  time.Duration
	Metrics   *runtime.Metrics
	Logger    *log.Logger
	Now       func() time.Time

	mu   sync.Mutex
	last *time.Time
	stop chan struct{}
	done chan struct{}
}

// Start launches the ticker loop. It is a no-op when retention is disabled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.Retention <= 0 || s.Store == nil {
		s.logger().Printf("query-log retention disabled")
		return
	}
	if s.Logger == nil {
		s.Logger = defaultSchedLogger
	}
	interval := s.Interval
	if interval <= 0 {
		interval = defaultPruneInterval
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight prune.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if !isDue(s.Spec, last, now) {
		return
	}

	if s.Locker != nil {
		release, ok, err := s.Locker.Acquire(ctx, pruneLockKey, pruneTimeout)
		if err != nil {
			s.logger().Printf("prune lock: %v", err)
			return
		}
		if !ok {
			s.markRun(now)
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger().Printf("release prune lock: %v", err)
			}
		}()
	}

	pctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()
	n, err := s.Store.PruneQueryLogs(pctx, now.Add(-s.Retention))
	if err != nil {
		s.logger().Printf("prune query logs: %v", err)
		return
	}
	s.markRun(now)
	s.Metrics.QueryLogsPruned(n)
	if n > 0 {
		s.logger().Printf("pruned %d query log rows older than %s", n, s.Retention)
	}
}

func (s *Scheduler) markRun(t time.Time) {
	s.mu.Lock()
	s.last = &t
	s.mu.Unlock()
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// logger never assigns; Start fixes s.Logger before the loop goroutine runs.
func (s *Scheduler) logger() *log.Logger {
	if s.Logger == nil {
		return defaultSchedLogger
	}
	return s.Logger
}

// isDue reports whether a job on cronSpec should run at now given its last run.
// Supports "@daily", "@hourly", and standard 5-field cron expressions; an
// invalid expression behaves like "@daily".
func isDue(cronSpec string, last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	switch cronSpec {
	case "@daily", "":
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			return now.Sub(*last) >= 24*time.Hour
		}
		return !expr.Next(*last).After(now)
	}
}
