package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/canlink/go-can-transport/internal/can"
)

var errBadSpec = errors.New("frame spec must be <id>#{data|R}")

// parseFrame parses the can-utils textual frame syntax:
//
//	123#DEADBEEF     standard data frame
//	123#R            remote frame
//	1F334455#1122    extended data frame (more than 3 identifier digits)
//	123#11.22.33     '.' separators in data are allowed
//
// More than three identifier digits force the extended format, matching
// cansend behavior.
func parseFrame(spec string) (can.Frame, error) {
	idPart, dataPart, found := strings.Cut(spec, "#")
	if !found || idPart == "" {
		return can.Frame{}, errBadSpec
	}
	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return can.Frame{}, fmt.Errorf("identifier %q: %w", idPart, err)
	}
	extended := len(idPart) > 3

	if strings.EqualFold(dataPart, "R") {
		fr := can.Frame{CANID: uint32(id) | can.RTRFlag}
		if extended {
			fr.CANID |= can.EFFFlag
		}
		if err := fr.Validate(); err != nil {
			return can.Frame{}, err
		}
		return fr, nil
	}

	hex := strings.ReplaceAll(dataPart, ".", "")
	if len(hex)%2 != 0 {
		return can.Frame{}, fmt.Errorf("data %q: odd number of hex digits", dataPart)
	}
	data := make([]byte, 0, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		b, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return can.Frame{}, fmt.Errorf("data %q: %w", dataPart, err)
		}
		data = append(data, byte(b))
	}
	if extended {
		return can.NewExtendedFrame(uint32(id), data)
	}
	return can.NewFrame(uint32(id), data)
}
