package lifecycle

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Processor's instrumentation. Collectors are registered
// only when a Registerer is supplied via WithMetrics; the nil receiver makes
// every recording call a no-op so the hot path never branches on config.
type metrics struct {
	componentStarts prometheus.Counter
	startFailures   prometheus.Counter
	componentStops  prometheus.Counter
	stopFailures    prometheus.Counter
	stopTimeouts    *prometheus.CounterVec
	running         prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		componentStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifecycle_component_starts_total",
			Help: "Number of successful component starts.",
		}),
		startFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifecycle_component_start_failures_total",
			Help: "Number of failed component starts.",
		}),
		componentStops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifecycle_component_stops_total",
			Help: "Number of completed component stops, sync and async.",
		}),
		stopFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifecycle_component_stop_failures_total",
			Help: "Number of component stops that returned an error.",
		}),
		stopTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifecycle_shutdown_timeouts_total",
			Help: "Number of phase shutdowns that hit the confirmation timeout.",
		}, []string{"phase"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lifecycle_running",
			Help: "Whether the last completed transition was a start (1) or a stop (0).",
		}),
	}
	reg.MustRegister(
		m.componentStarts,
		m.startFailures,
		m.componentStops,
		m.stopFailures,
		m.stopTimeouts,
		m.running,
	)
	return m
}

func (m *metrics) started() {
	if m != nil {
		m.componentStarts.Inc()
	}
}

func (m *metrics) startFailed() {
	if m != nil {
		m.startFailures.Inc()
	}
}

func (m *metrics) stopped() {
	if m != nil {
		m.componentStops.Inc()
	}
}

func (m *metrics) stopFailed() {
	if m != nil {
		m.stopFailures.Inc()
	}
}

func (m *metrics) stopTimedOut(phase int) {
	if m != nil {
		m.stopTimeouts.WithLabelValues(strconv.Itoa(phase)).Inc()
	}
}

func (m *metrics) setRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}
