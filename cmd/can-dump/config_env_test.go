package main

import (
	"os"
	"testing"
	"time"
)

func TestApplyEnvOverrides_Basic(t *testing.T) {
	base := &appConfig{
		canIf:       "can0",
		pollTimeout: 500 * time.Millisecond,
		logFormat:   "text",
		logLevel:    "info",
	}

	os.Setenv("CAN_DUMP_IF", "vcan1")
	os.Setenv("CAN_DUMP_POLL_TIMEOUT", "100ms")
	os.Setenv("CAN_DUMP_LOG_METRICS_INTERVAL", "5s")
	t.Cleanup(func() {
		os.Unsetenv("CAN_DUMP_IF")
		os.Unsetenv("CAN_DUMP_POLL_TIMEOUT")
		os.Unsetenv("CAN_DUMP_LOG_METRICS_INTERVAL")
	})
	if err := applyEnvOverrides(base, map[string]struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.canIf != "vcan1" {
		t.Fatalf("expected interface override, got %q", base.canIf)
	}
	if base.pollTimeout != 100*time.Millisecond {
		t.Fatalf("expected pollTimeout 100ms got %v", base.pollTimeout)
	}
	if base.logMetricsEvery != 5*time.Second {
		t.Fatalf("expected logMetricsEvery 5s got %v", base.logMetricsEvery)
	}
}

func TestApplyEnvOverrides_FlagPrecedence(t *testing.T) {
	base := &appConfig{canIf: "can0"}
	os.Setenv("CAN_DUMP_IF", "vcan1")
	t.Cleanup(func() { os.Unsetenv("CAN_DUMP_IF") })
	// Simulate user passed -if flag (so env should be ignored)
	if err := applyEnvOverrides(base, map[string]struct{}{"if": {}}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if base.canIf != "can0" {
		t.Fatalf("expected interface unchanged can0 got %q", base.canIf)
	}
}

func TestApplyEnvOverrides_BadDuration(t *testing.T) {
	base := &appConfig{pollTimeout: 500 * time.Millisecond}
	os.Setenv("CAN_DUMP_POLL_TIMEOUT", "notaduration")
	t.Cleanup(func() { os.Unsetenv("CAN_DUMP_POLL_TIMEOUT") })
	if err := applyEnvOverrides(base, map[string]struct{}{}); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}
