package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/canlink/go-can-transport/internal/can"
	"github.com/canlink/go-can-transport/internal/metrics"
	"github.com/canlink/go-can-transport/internal/socketcan"
)

// receiver is the slice of the transport the RX loop needs.
// Implemented by *socketcan.Transport in production and by fakes in tests.
type receiver interface {
	ReceiveBatch(*[]can.Frame, time.Duration) (int, error)
	Interface() string
}

// sleepFn allows tests to intercept backoff sleeps.
var sleepFn = time.Sleep

// startRXLoop drains the transport until ctx is cancelled, printing each
// frame to w. A zero-frame batch is an ordinary poll timeout; transport
// errors log, count, and back off exponentially before the next attempt.
func startRXLoop(ctx context.Context, tr receiver, w io.Writer, pollTimeout time.Duration, l *slog.Logger, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.Info("can_rx_end")
		backoff := rxBackoffMin
		batch := make([]can.Frame, 0, rxBatchCapacity)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			// ReceiveBatch appends; reset between calls.
			batch = batch[:0]
			n, err := tr.ReceiveBatch(&batch, pollTimeout)
			if err != nil {
				if ctx.Err() != nil { // shutting down
					return
				}
				if errors.Is(err, socketcan.ErrShortFrame) {
					metrics.IncMalformed()
				}
				metrics.IncError(metrics.ErrReceive)
				l.Warn("can_receive_error", "error", err, "backoff", backoff)
				sleepFn(backoff)
				backoff *= 2
				if backoff > rxBackoffMax {
					backoff = rxBackoffMax
				}
				continue
			}
			backoff = rxBackoffMin
			if n == 0 {
				continue
			}
			metrics.AddRx(n)
			metrics.IncRxBatch()
			for _, fr := range batch {
				fmt.Fprintf(w, "%s  %s\n", tr.Interface(), fr)
			}
		}
	}()
}
