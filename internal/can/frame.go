// Package can holds the classic CAN frame value type and its kernel wire
// image. Frames are plain values; they are copied into and out of the
// transport, never shared.
package can

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// SocketCAN flag and mask bits for CANID (same values as <linux/can.h>).
const (
	EFFFlag = 0x80000000 // extended (29-bit) frame format
	RTRFlag = 0x40000000 // remote transmission request
	ERRFlag = 0x20000000 // error message frame
	SFFMask = 0x7FF
	EFFMask = 0x1FFFFFFF
)

// MTU is the size of the kernel's struct can_frame for classic CAN.
const MTU = 16

// MaxLen is the classic CAN payload limit.
const MaxLen = 8

var (
	ErrInvalidID  = errors.New("can: identifier out of range")
	ErrInvalidLen = errors.New("can: payload length out of range")
	ErrTruncated  = errors.New("can: truncated frame image")
)

// Frame is one classic CAN frame. CANID carries the EFF/RTR/ERR flag bits in
// its upper bits exactly as SocketCAN does; Len is the payload length (0..8)
// and only the first Len bytes of Data are meaningful.
type Frame struct {
	CANID uint32
	Len   uint8
	Data  [MaxLen]byte
}

// NewFrame builds a data frame from a bare identifier and payload. IDs above
// the 11-bit range get the extended flag set automatically.
func NewFrame(id uint32, data []byte) (Frame, error) {
	if id > EFFMask {
		return Frame{}, ErrInvalidID
	}
	if len(data) > MaxLen {
		return Frame{}, ErrInvalidLen
	}
	f := Frame{CANID: id, Len: uint8(len(data))}
	if id > SFFMask {
		f.CANID |= EFFFlag
	}
	copy(f.Data[:], data)
	return f, nil
}

// NewExtendedFrame is NewFrame with the extended format forced, for 29-bit
// identifiers that happen to fit in 11 bits.
func NewExtendedFrame(id uint32, data []byte) (Frame, error) {
	f, err := NewFrame(id, data)
	if err != nil {
		return Frame{}, err
	}
	f.CANID |= EFFFlag
	return f, nil
}

// ID returns the bare identifier without flag bits.
func (f Frame) ID() uint32 {
	if f.IsExtended() {
		return f.CANID & EFFMask
	}
	return f.CANID & SFFMask
}

func (f Frame) IsExtended() bool { return f.CANID&EFFFlag != 0 }
func (f Frame) IsRemote() bool   { return f.CANID&RTRFlag != 0 }
func (f Frame) IsError() bool    { return f.CANID&ERRFlag != 0 }

// Validate checks the identifier range against the frame format and the
// payload length against the classic CAN limit.
func (f Frame) Validate() error {
	if f.Len > MaxLen {
		return ErrInvalidLen
	}
	if !f.IsExtended() && f.CANID&EFFMask > SFFMask {
		return ErrInvalidID
	}
	return nil
}

// Marshal writes f into the kernel's can_frame image:
//
//	can_id  u32   [0:4]  (includes EFF/RTR/ERR flags)
//	can_dlc u8    [4]
//	pad     3B    [5:8]
//	data    [8]   [8:16]
//
// The kernel expects fields in host byte order. On common Linux archs
// (little-endian) this matches binary.LittleEndian; switch to BigEndian if
// you ever target a big-endian port.
func (f Frame) Marshal(dst *[MTU]byte) {
	binary.LittleEndian.PutUint32(dst[0:4], f.CANID)
	dst[4] = f.Len
	dst[5], dst[6], dst[7] = 0, 0, 0
	copy(dst[8:], f.Data[:])
}

// Unmarshal decodes a can_frame image produced by the kernel. A length byte
// above 8 marks the image malformed.
func (f *Frame) Unmarshal(src []byte) error {
	if len(src) < MTU {
		return ErrTruncated
	}
	f.CANID = binary.LittleEndian.Uint32(src[0:4])
	f.Len = src[4]
	if f.Len > MaxLen {
		return ErrInvalidLen
	}
	copy(f.Data[:], src[8:MTU])
	return nil
}

// String renders the frame in candump style: "123 [2] DE AD".
func (f Frame) String() string {
	var b strings.Builder
	if f.IsExtended() {
		fmt.Fprintf(&b, "%08X", f.ID())
	} else {
		fmt.Fprintf(&b, "%03X", f.ID())
	}
	fmt.Fprintf(&b, " [%d]", f.Len)
	if f.IsRemote() {
		b.WriteString(" RTR")
		return b.String()
	}
	for _, d := range f.Data[:f.Len] {
		fmt.Fprintf(&b, " %02X", d)
	}
	return b.String()
}
