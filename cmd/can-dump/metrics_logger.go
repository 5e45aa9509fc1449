package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/canlink/go-can-transport/internal/metrics"
)

func startMetricsLogger(ctx context.Context, interval time.Duration, l *slog.Logger, wg *sync.WaitGroup) {
	if interval <= 0 {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				snap := metrics.Snap()
				l.Info("metrics_snapshot",
					"rx", snap.Rx,
					"tx", snap.Tx,
					"batches", snap.Batches,
					"errors", snap.Errors,
					"malformed", snap.Malformed,
				)
			case <-ctx.Done():
				return
			}
		}
	}()
}
