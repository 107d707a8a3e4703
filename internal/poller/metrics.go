package poller

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the poller's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	FetchTotal   *prometheus.CounterVec
	FetchLatency *prometheus.HistogramVec
	BestEver     prometheus.Gauge
	Refreshes    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ckwidget",
				Name:      "fetch_total",
				Help:      "Upstream fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		FetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ckwidget",
				Name:      "fetch_duration_seconds",
				Help:      "Upstream fetch latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"source"},
		),
		BestEver: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ckwidget",
			Name:      "best_ever_difficulty",
			Help:      "Highest share difficulty recorded for the configured address",
		}),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ckwidget",
				Name:      "refresh_total",
				Help:      "Refresh cycles by result (ok, setup, error)",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.FetchTotal, m.FetchLatency, m.BestEver, m.Refreshes)
	}
	return m
}

func (m *Metrics) observeFetch(src Source, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "fallback"
	}
	m.FetchTotal.WithLabelValues(string(src), outcome).Inc()
	m.FetchLatency.WithLabelValues(string(src)).Observe(seconds)
}

func (m *Metrics) setBest(v int64) {
	if m == nil {
		return
	}
	m.BestEver.Set(float64(v))
}

func (m *Metrics) refreshed(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}
