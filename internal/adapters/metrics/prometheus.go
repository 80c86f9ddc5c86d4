package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decisions counts access decisions by check and outcome.
type Decisions struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
}

func NewDecisions() *Decisions {
	reg := prometheus.NewRegistry()
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_decisions_total",
		Help: "Access decisions made by the RBAC engine.",
	}, []string{"check", "outcome"})
	reg.MustRegister(
		total,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Decisions{registry: reg, total: total}
}

func (d *Decisions) ObserveDecision(check string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	d.total.WithLabelValues(check, outcome).Inc()
}

func (d *Decisions) Counter(check, outcome string) prometheus.Counter {
	return d.total.WithLabelValues(check, outcome)
}

func (d *Decisions) Handler() http.Handler {
	return promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry})
}
