package main

import (
	"testing"

	"github.com/canlink/go-can-transport/internal/can"
)

func TestParseFrame(t *testing.T) {
	cases := []struct {
		spec string
		want can.Frame
	}{
		{"123#DEADBEEF", can.Frame{CANID: 0x123, Len: 4, Data: [8]byte{0xDE, 0xAD, 0xBE, 0xEF}}},
		{"123#", can.Frame{CANID: 0x123}},
		{"123#11.22.33", can.Frame{CANID: 0x123, Len: 3, Data: [8]byte{0x11, 0x22, 0x33}}},
		{"123#R", can.Frame{CANID: 0x123 | can.RTRFlag}},
		{"1F334455#1122", can.Frame{CANID: 0x1F334455 | can.EFFFlag, Len: 2, Data: [8]byte{0x11, 0x22}}},
		// Four identifier digits force extended format even for small IDs.
		{"0042#AA", can.Frame{CANID: 0x42 | can.EFFFlag, Len: 1, Data: [8]byte{0xAA}}},
	}
	for _, tc := range cases {
		got, err := parseFrame(tc.spec)
		if err != nil {
			t.Fatalf("%s: %v", tc.spec, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %+v want %+v", tc.spec, got, tc.want)
		}
	}
}

func TestParseFrame_Errors(t *testing.T) {
	specs := []string{
		"",        // no separator
		"123",     // no separator
		"#11",     // missing identifier
		"xyz#11",  // bad identifier
		"123#1",   // odd hex digit count
		"123#GG",  // bad hex
		"20000000#11",            // beyond the 29-bit range
		"123#112233445566778899", // 9 payload bytes
	}
	for _, spec := range specs {
		if _, err := parseFrame(spec); err == nil {
			t.Fatalf("%q: expected error", spec)
		}
	}
}
