package querier

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kindQuery = "query"
	kindExec  = "exec"
)

// Metrics holds Prometheus counters for statements issued through a DB.
type Metrics struct {
	statements *prometheus.CounterVec
}

// NewMetrics creates query metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderkit",
			Subsystem: "db",
			Name:      "statements_total",
			Help:      "Number of SQL statements issued, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.statements)
	return m
}

func (m *Metrics) observe(kind string) {
	m.statements.WithLabelValues(kind).Inc()
}
