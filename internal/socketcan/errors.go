package socketcan

import "errors"

var (
	// ErrNotOpen is returned by data-path calls on a transport that is not
	// open; no syscall is attempted.
	ErrNotOpen = errors.New("socketcan: transport not open")

	// ErrShortWrite reports a write that produced fewer bytes than one
	// frame image. CAN raw writes are atomic or fail, so this is fatal.
	ErrShortWrite = errors.New("socketcan: short frame write")

	// ErrShortFrame reports a readable socket delivering fewer bytes than
	// one frame image. CAN raw reads are atomic, so this is fatal.
	ErrShortFrame = errors.New("socketcan: short frame read")

	// ErrHangup reports the readiness wait signalling an error or hang-up
	// condition on the socket instead of readability.
	ErrHangup = errors.New("socketcan: socket error/hangup condition")
)
