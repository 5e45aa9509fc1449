package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canlink/go-can-transport/internal/logging"
)

// Prometheus counters for the CAN transport tools.
var (
	RxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "can_rx_frames_total",
		Help: "Total CAN frames received from the interface.",
	})
	TxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "can_tx_frames_total",
		Help: "Total CAN frames written to the interface.",
	})
	RxBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "can_rx_batches_total",
		Help: "Total non-empty receive batches drained from the socket.",
	})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
	MalformedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_frames_total",
		Help: "Total rejected malformed frames (short reads, invalid length).",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrOpen    = "transport_open"
	ErrReceive = "transport_receive"
	ErrSend    = "transport_send"
)

// StartHTTP serves Prometheus metrics at /metrics on addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localRx        uint64
	localTx        uint64
	localBatches   uint64
	localErrors    uint64
	localMalformed uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	Rx        uint64
	Tx        uint64
	Batches   uint64
	Errors    uint64 // sum across error labels
	Malformed uint64
}

func Snap() Snapshot {
	return Snapshot{
		Rx:        atomic.LoadUint64(&localRx),
		Tx:        atomic.LoadUint64(&localTx),
		Batches:   atomic.LoadUint64(&localBatches),
		Errors:    atomic.LoadUint64(&localErrors),
		Malformed: atomic.LoadUint64(&localMalformed),
	}
}

// Wrapper helpers to keep call sites simple.
func AddRx(n int) {
	RxFrames.Add(float64(n))
	atomic.AddUint64(&localRx, uint64(n))
}

func IncTx() {
	TxFrames.Inc()
	atomic.AddUint64(&localTx, 1)
}

func IncRxBatch() {
	RxBatches.Inc()
	atomic.AddUint64(&localBatches, 1)
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

func IncMalformed() {
	MalformedFrames.Inc()
	atomic.AddUint64(&localMalformed, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	// Pre-register error label series so the first error does not pay a
	// registration latency.
	for _, lbl := range []string{ErrOpen, ErrReceive, ErrSend} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}
