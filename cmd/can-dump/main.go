// can-dump prints every frame seen on a SocketCAN interface, candump style.
// The interface must already exist and be up (udev rule, ip link, or similar);
// this tool neither configures bitrate nor changes link state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/canlink/go-can-transport/internal/metrics"
	"github.com/canlink/go-can-transport/internal/socketcan"
)

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("can-dump %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(2)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	tr := socketcan.New(cfg.canIf)
	if err := tr.Open(); err != nil {
		metrics.IncError(metrics.ErrOpen)
		l.Error("can_open_error", "if", cfg.canIf, "error", err)
		os.Exit(1)
	}
	defer func() { _ = tr.Close() }()
	l.Info("can_open", "if", cfg.canIf, "poll_timeout", cfg.pollTimeout)

	startRXLoop(ctx, tr, os.Stdout, cfg.pollTimeout, l, &wg)

	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srvHTTP := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srvHTTP.Shutdown(context.Background()) }()
	}
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	l.Info("shutdown_signal", "signal", s.String())
	cancel()
	wg.Wait()
}
