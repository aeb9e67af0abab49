// Package metrics exposes Prometheus counters for movements and loan
// eligibility checks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

// Outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// InvalidKind labels movements whose kind is not a known movement kind.
const InvalidKind = "invalid"

// Registry holds every collector served by Handler.
var Registry = prometheus.NewRegistry()

var (
	movements = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "kostumi_movements_total",
		Help: "Movement append attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	eligibility = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "kostumi_eligibility_checks_total",
		Help: "Loan eligibility checks by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Outcome classifies the result of an operation.
func Outcome(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	if _, ok := lifecycle.AsRejection(err); ok {
		return OutcomeRejected
	}
	return OutcomeError
}

// ObserveMovement counts one movement append attempt. Unknown kinds share
// the InvalidKind label.
func ObserveMovement(kind model.MovementKind, err error) {
	label := string(kind)
	if !kind.Valid() {
		label = InvalidKind
	}
	movements.WithLabelValues(label, Outcome(err)).Inc()
}

// ObserveEligibility counts one eligibility check.
func ObserveEligibility(err error) {
	eligibility.WithLabelValues(Outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
