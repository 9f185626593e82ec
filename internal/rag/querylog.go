package rag

import (
	"context"
	"log"
	"time"

	"github.com/mohammad-safakhou/opticqa/internal/runtime"
)

// QueryLogger records answered questions. Implementations must not fail the
// request they are logging.
type QueryLogger interface {
	Log(ctx context.Context, question string, latency time.Duration)
}

// QueryLogStore is the persistence StoreLogger writes to.
type QueryLogStore interface {
	InsertQueryLog(ctx context.Context, question string, latency time.Duration) error
}

// StoreLogger writes to the query log table on a context detached from the
// request, bounded by Timeout. Failures are logged and counted.
type StoreLogger struct {
	Store   QueryLogStore
	Timeout time.Duration
	Metrics *runtime.Metrics
	Logger  *log.Logger
}

func (l StoreLogger) Log(ctx context.Context, question string, latency time.Duration) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := l.Store.InsertQueryLog(ctx, question, latency); err != nil {
		logger := l.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("query log write failed: %v", err)
		l.Metrics.QueryLogFailed()
	}
}

// NopLogger discards query logs.
type NopLogger struct{}

func (NopLogger) Log(context.Context, string, time.Duration) {}
