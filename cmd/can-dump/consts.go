package main

import "time"

const (
	// rxBatchCapacity sizes the reusable receive buffer. A single drain on a
	// busy 1 Mbit/s bus rarely exceeds a few dozen queued frames.
	rxBatchCapacity = 64
	rxBackoffMin    = 20 * time.Millisecond
	rxBackoffMax    = 500 * time.Millisecond
)
