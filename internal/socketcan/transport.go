//go:build linux

// Package socketcan provides a bounded-wait transport over a Linux raw CAN
// socket. One Transport owns one socket bound to one named interface and one
// epoll descriptor watching it for read readiness.
//
// A Transport is not internally synchronized. Drive it from one goroutine,
// or serialize calls externally.
package socketcan

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/canlink/go-can-transport/internal/can"
)

// Transport wraps a raw CAN socket in non-blocking mode plus an epoll
// descriptor. Construction acquires nothing; Open acquires both descriptors
// or neither, and Close releases both. No partial-open state is observable.
type Transport struct {
	iface string
	sock  int
	ep    int
	open  bool
}

// New binds the transport to an interface name ("can0", "vcan0", ...). The
// name is not checked for existence until Open.
func New(iface string) *Transport {
	return &Transport{iface: iface, sock: -1, ep: -1}
}

// Open creates the raw CAN socket, binds it to the interface, switches it to
// non-blocking mode and registers it for read readiness. Every failure path
// releases whatever this attempt acquired and leaves the transport closed.
// Opening an already-open transport is a no-op returning nil.
func (t *Transport) Open() error {
	if t.open {
		return nil
	}
	sock, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return fmt.Errorf("socket(AF_CAN): %w", err)
	}
	ifi, err := net.InterfaceByName(t.iface)
	if err != nil {
		_ = unix.Close(sock)
		return fmt.Errorf("if %q: %w", t.iface, err)
	}
	if err := unix.Bind(sock, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		_ = unix.Close(sock)
		return fmt.Errorf("bind(can@%s): %w", t.iface, err)
	}
	if err := unix.SetNonblock(sock, true); err != nil {
		_ = unix.Close(sock)
		return fmt.Errorf("nonblock(can@%s): %w", t.iface, err)
	}
	ep, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		_ = unix.Close(sock)
		return fmt.Errorf("epoll_create: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(sock)}
	if err := unix.EpollCtl(ep, unix.EPOLL_CTL_ADD, sock, &ev); err != nil {
		_ = unix.Close(ep)
		_ = unix.Close(sock)
		return fmt.Errorf("epoll_ctl(add): %w", err)
	}
	t.sock, t.ep, t.open = sock, ep, true
	return nil
}

// Close releases the epoll descriptor and the socket if held. Idempotent:
// closing a closed or never-opened transport is a no-op returning nil.
func (t *Transport) Close() error {
	if !t.open {
		return nil
	}
	epErr := unix.Close(t.ep)
	sockErr := unix.Close(t.sock)
	t.sock, t.ep, t.open = -1, -1, false
	if epErr != nil {
		return fmt.Errorf("close epoll: %w", epErr)
	}
	if sockErr != nil {
		return fmt.Errorf("close socket: %w", sockErr)
	}
	return nil
}

// IsOpen reports whether both descriptors are held.
func (t *Transport) IsOpen() bool { return t.open }

// Interface returns the interface name the transport was bound to.
func (t *Transport) Interface() string { return t.iface }

// Send writes one frame image to the socket. It never blocks beyond a single
// non-blocking write attempt and never queues or retries: kernel-side
// backpressure (EAGAIN) surfaces as an error for the caller to handle.
func (t *Transport) Send(fr can.Frame) error {
	if !t.open {
		return ErrNotOpen
	}
	var buf [can.MTU]byte
	fr.Marshal(&buf)
	n, err := unix.Write(t.sock, buf[:])
	if err != nil {
		return fmt.Errorf("write(can@%s): %w", t.iface, err)
	}
	if n != can.MTU {
		return ErrShortWrite
	}
	return nil
}

// ReceiveBatch waits at most timeout for the socket to become readable, then
// drains every frame that is immediately available, appending each to *out
// in arrival order. The drain phase issues only non-blocking reads, so the
// call never blocks past its timeout. A timeout of zero (or negative) polls
// without waiting.
//
// *out is appended to, never cleared; repeated calls accumulate frames
// unless the caller resets the slice between calls.
//
// Results: (n>0, nil) frames appended; (0, nil) the wait expired with
// nothing to read; (n, err) the wait failed, the socket reported an
// error/hang-up condition, or a read failed for a reason other than
// "would block"; n frames may still have been appended before the failure.
// The transport stays open after a data-path error; recovery, if wanted, is
// the caller's Close/Open.
func (t *Transport) ReceiveBatch(out *[]can.Frame, timeout time.Duration) (int, error) {
	if !t.open {
		return 0, ErrNotOpen
	}
	ms := int(timeout.Milliseconds())
	if ms < 0 {
		ms = 0
	}
	var deadline time.Time
	if ms > 0 {
		deadline = time.Now().Add(timeout)
	}
	var events [1]unix.EpollEvent
	for {
		n, err := unix.EpollWait(t.ep, events[:], ms)
		if err == unix.EINTR {
			if ms > 0 {
				rem := time.Until(deadline)
				if rem <= 0 {
					return 0, nil
				}
				ms = int(rem.Milliseconds())
				if ms == 0 {
					ms = 1
				}
			}
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("epoll_wait: %w", err)
		}
		if n == 0 {
			return 0, nil // wait expired, not an error
		}
		if events[0].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			return 0, ErrHangup
		}
		break
	}

	appended := 0
	var buf [can.MTU]byte
	for {
		n, err := unix.Read(t.sock, buf[:])
		if err == unix.EAGAIN {
			return appended, nil // drained
		}
		if err != nil {
			return appended, fmt.Errorf("read(can@%s): %w", t.iface, err)
		}
		if n != can.MTU {
			return appended, ErrShortFrame
		}
		var fr can.Frame
		if err := fr.Unmarshal(buf[:]); err != nil {
			return appended, err
		}
		*out = append(*out, fr)
		appended++
	}
}
