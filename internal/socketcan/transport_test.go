//go:build linux

package socketcan

import (
	"os"
	"testing"
	"time"

	"github.com/canlink/go-can-transport/internal/can"
)

// newTestTransport opens a transport on the loopback-capable test interface
// (CAN_TEST_IF, default vcan0) and skips the test when none is available.
func newTestTransport(t *testing.T) *Transport {
	t.Helper()
	iface := os.Getenv("CAN_TEST_IF")
	if iface == "" {
		iface = "vcan0"
	}
	tr := New(iface)
	if err := tr.Open(); err != nil {
		t.Skipf("no usable CAN test interface %q: %v (ip link add dev vcan0 type vcan && ip link set up vcan0)", iface, err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestCloseIdempotent(t *testing.T) {
	tr := New("vcan0")
	if tr.IsOpen() {
		t.Fatal("never-opened transport reports open")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("close never-opened: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if tr.IsOpen() {
		t.Fatal("closed transport reports open")
	}
}

func TestDataPathNotOpen(t *testing.T) {
	tr := New("vcan0")
	if err := tr.Send(can.Frame{CANID: 0x123, Len: 1}); err != ErrNotOpen {
		t.Fatalf("Send on closed transport: got %v, want ErrNotOpen", err)
	}
	var out []can.Frame
	if n, err := tr.ReceiveBatch(&out, time.Second); n != 0 || err != ErrNotOpen {
		t.Fatalf("ReceiveBatch on closed transport: got (%d, %v), want (0, ErrNotOpen)", n, err)
	}
}

func TestOpenNonexistentInterface(t *testing.T) {
	tr := New("definitely-no-such-can-if")
	if err := tr.Open(); err == nil {
		_ = tr.Close()
		t.Fatal("expected Open to fail for nonexistent interface")
	}
	if tr.IsOpen() {
		t.Fatal("failed Open left transport open")
	}
	// Failed open leaves nothing to release.
	if err := tr.Close(); err != nil {
		t.Fatalf("close after failed open: %v", err)
	}
}

func TestOpenIdempotent(t *testing.T) {
	tr := newTestTransport(t)
	if !tr.IsOpen() {
		t.Fatal("expected open after Open")
	}
	if err := tr.Open(); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if !tr.IsOpen() {
		t.Fatal("second Open closed the transport")
	}
}

func TestSendAfterClose(t *testing.T) {
	tr := newTestTransport(t)
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tr.Send(can.Frame{CANID: 0x1, Len: 0}); err != ErrNotOpen {
		t.Fatalf("Send after close: got %v, want ErrNotOpen", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rx := newTestTransport(t)
	tx := newTestTransport(t)

	sent, err := can.NewFrame(0x123, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if err := tx.Send(sent); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var got []can.Frame
	n, err := rx.ReceiveBatch(&got, time.Second)
	if err != nil {
		t.Fatalf("ReceiveBatch: %v", err)
	}
	if n != 1 || len(got) != 1 {
		t.Fatalf("expected exactly one frame, got n=%d len=%d", n, len(got))
	}
	if got[0] != sent {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got[0], sent)
	}
}

func TestBatchDrainsAllPending(t *testing.T) {
	rx := newTestTransport(t)
	tx := newTestTransport(t)

	const count = 5
	for i := 0; i < count; i++ {
		fr, err := can.NewFrame(uint32(0x100+i), []byte{byte(i)})
		if err != nil {
			t.Fatalf("NewFrame: %v", err)
		}
		if err := tx.Send(fr); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	// Give the kernel a moment to queue everything on the rx socket.
	time.Sleep(20 * time.Millisecond)

	var got []can.Frame
	n, err := rx.ReceiveBatch(&got, time.Second)
	if err != nil {
		t.Fatalf("ReceiveBatch: %v", err)
	}
	if n != count {
		t.Fatalf("expected %d frames in one batch, got %d", count, n)
	}
	for i, fr := range got {
		if fr.ID() != uint32(0x100+i) || fr.Data[0] != byte(i) {
			t.Fatalf("frame %d out of order or corrupted: %+v", i, fr)
		}
	}
}

func TestZeroTimeoutPolls(t *testing.T) {
	rx := newTestTransport(t)
	var out []can.Frame
	start := time.Now()
	n, err := rx.ReceiveBatch(&out, 0)
	elapsed := time.Since(start)
	if n != 0 || err != nil {
		t.Fatalf("empty poll: got (%d, %v), want (0, nil)", n, err)
	}
	if elapsed > 100*time.Millisecond {
		t.Fatalf("zero-timeout poll blocked for %v", elapsed)
	}
}

func TestTimeoutIsBounded(t *testing.T) {
	rx := newTestTransport(t)
	var out []can.Frame
	const timeout = 200 * time.Millisecond
	start := time.Now()
	n, err := rx.ReceiveBatch(&out, timeout)
	elapsed := time.Since(start)
	if n != 0 || err != nil {
		t.Fatalf("idle wait: got (%d, %v), want (0, nil)", n, err)
	}
	if elapsed < timeout-50*time.Millisecond {
		t.Fatalf("wait returned early after %v", elapsed)
	}
	if elapsed > timeout+800*time.Millisecond {
		t.Fatalf("wait overran to %v", elapsed)
	}
}

// The output slice is appended to, never cleared; this is a documented
// contract, not an accident.
func TestReceiveBatchAppends(t *testing.T) {
	rx := newTestTransport(t)
	tx := newTestTransport(t)

	var acc []can.Frame
	for i := 0; i < 2; i++ {
		fr, err := can.NewFrame(uint32(0x200+i), []byte{byte(i)})
		if err != nil {
			t.Fatalf("NewFrame: %v", err)
		}
		if err := tx.Send(fr); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if _, err := rx.ReceiveBatch(&acc, time.Second); err != nil {
			t.Fatalf("ReceiveBatch %d: %v", i, err)
		}
	}
	if len(acc) != 2 {
		t.Fatalf("expected accumulated 2 frames, got %d", len(acc))
	}
	if acc[0].ID() != 0x200 || acc[1].ID() != 0x201 {
		t.Fatalf("accumulated frames wrong: %+v", acc)
	}
}
