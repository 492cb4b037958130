package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	registry         *prometheus.Registry
	drawerOperations *prometheus.CounterVec
	taxAssessments   *prometheus.CounterVec
	taxPayments      prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		drawerOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khata",
			Name:      "drawer_operations_total",
			Help:      "Drawer ledger operations recorded, by operation.",
		}, []string{"operation"}),
		taxAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khata",
			Name:      "tax_assessments_total",
			Help:      "Tax records assessed, by tax type.",
		}, []string{"type"}),
		taxPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khata",
			Name:      "tax_payments_total",
			Help:      "Tax payments applied.",
		}),
	}

	registry.MustRegister(m.drawerOperations, m.taxAssessments, m.taxPayments)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordDrawerOperation(operation string) {
	m.drawerOperations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordTaxAssessment(taxType string) {
	m.taxAssessments.WithLabelValues(taxType).Inc()
}

func (m *Metrics) RecordTaxPayment() {
	m.taxPayments.Inc()
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
