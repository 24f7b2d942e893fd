package progress

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts progress events as prometheus series.
type Metrics struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	candles    *prometheus.CounterVec
	operations *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "candlestore",
			Name:      "import_events_total",
			Help:      "Import progress events by kind.",
		}, []string{"kind"}),
		candles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "candlestore",
			Name:      "imported_candles_total",
			Help:      "Candles accepted per timeframe.",
		}, []string{"timeframe"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "candlestore",
			Name:      "import_operations_total",
			Help:      "Import operations started and finished.",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.events, m.candles, m.operations)
	return m
}

func (m *Metrics) Report(e Event) {
	m.events.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case TimeframeDone:
		m.candles.WithLabelValues(e.Timeframe).Add(float64(e.Candles))
	case Started, Finished:
		m.operations.WithLabelValues(string(e.Kind)).Inc()
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Multi fans an event out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}
