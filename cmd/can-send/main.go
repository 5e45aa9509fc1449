// can-send writes one frame (or a burst) to a SocketCAN interface, cansend
// style: can-send -if vcan0 123#DEADBEEF. The interface must already exist
// and be up; failures, including kernel-side backpressure, surface via the
// exit status; there is no internal retry.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/canlink/go-can-transport/internal/logging"
	"github.com/canlink/go-can-transport/internal/socketcan"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	canIf := flag.String("if", "can0", "SocketCAN interface to send on")
	count := flag.Int("count", 1, "Number of copies to send")
	gap := flag.Duration("gap", 0, "Pause between copies")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("can-send %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	l := logging.New(*logFormat, logging.ParseLevel(*logLevel), os.Stderr).With("app", "can-send")
	logging.Set(l)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: can-send [flags] <id>#{data|R}")
		os.Exit(2)
	}
	if *count < 1 {
		l.Error("invalid_count", "count", *count)
		os.Exit(2)
	}
	fr, err := parseFrame(flag.Arg(0))
	if err != nil {
		l.Error("frame_parse_error", "spec", flag.Arg(0), "error", err)
		os.Exit(2)
	}

	tr := socketcan.New(*canIf)
	if err := tr.Open(); err != nil {
		l.Error("can_open_error", "if", *canIf, "error", err)
		os.Exit(1)
	}
	defer func() { _ = tr.Close() }()

	for i := 0; i < *count; i++ {
		if i > 0 && *gap > 0 {
			time.Sleep(*gap)
		}
		if err := tr.Send(fr); err != nil {
			l.Error("can_send_error", "if", *canIf, "frame", fr.String(), "error", err)
			os.Exit(1)
		}
	}
	l.Debug("can_sent", "if", *canIf, "frame", fr.String(), "count", *count)
}
