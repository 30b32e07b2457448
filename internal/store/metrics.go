package store

import (
	"context"
	"time"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/metrics"
)

func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveDBLatency(ctx, operation, start)
	}
}
