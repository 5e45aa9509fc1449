//go:build !linux

// Stub so dependents compile on non-linux platforms. Raw CAN sockets are a
// Linux kernel facility; every operation fails with ErrUnsupported.
package socketcan

import (
	"errors"
	"time"

	"github.com/canlink/go-can-transport/internal/can"
)

var ErrUnsupported = errors.New("socketcan: raw CAN sockets require linux")

type Transport struct {
	iface string
}

func New(iface string) *Transport { return &Transport{iface: iface} }

func (t *Transport) Open() error          { return ErrUnsupported }
func (t *Transport) Close() error         { return nil }
func (t *Transport) IsOpen() bool         { return false }
func (t *Transport) Interface() string    { return t.iface }
func (t *Transport) Send(can.Frame) error { return ErrNotOpen }

func (t *Transport) ReceiveBatch(*[]can.Frame, time.Duration) (int, error) {
	return 0, ErrNotOpen
}
