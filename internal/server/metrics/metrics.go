// Package metrics exposes the Prometheus collectors of the deposit workflow
// and the HTTP transport.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "wastehub"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	DepositsSubmitted   *prometheus.CounterVec
	DepositsDecided     *prometheus.CounterVec
	CreditsAllocated    prometheus.Counter
	TransitionConflicts *prometheus.CounterVec
	BalanceAdjustments  prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DepositsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "submitted_total",
			Help:      "Deposits accepted for review, by waste type.",
		}, []string{"waste_type"}),
		DepositsDecided: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "decided_total",
			Help:      "Deposits moved out of pending, by resulting status.",
		}, []string{"status"}),
		CreditsAllocated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credits",
			Name:      "allocated_total",
			Help:      "Credits granted through deposit verification.",
		}),
		TransitionConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "transition_conflicts_total",
			Help:      "Verify or reject attempts on deposits that were no longer pending.",
		}, []string{"action"}),
		BalanceAdjustments: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credits",
			Name:      "adjustments_total",
			Help:      "Administrative credit balance changes recorded in the ledger.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) DepositSubmitted(wasteType string) {
	if m == nil {
		return
	}
	m.DepositsSubmitted.WithLabelValues(wasteType).Inc()
}

func (m *Metrics) DepositVerified(credits decimal.Decimal) {
	if m == nil {
		return
	}
	m.DepositsDecided.WithLabelValues("verified").Inc()
	m.CreditsAllocated.Add(credits.InexactFloat64())
}

func (m *Metrics) DepositRejected() {
	if m == nil {
		return
	}
	m.DepositsDecided.WithLabelValues("rejected").Inc()
}

// TransitionConflict counts a verify or reject that lost to an earlier decision.
func (m *Metrics) TransitionConflict(action string) {
	if m == nil {
		return
	}
	m.TransitionConflicts.WithLabelValues(action).Inc()
}

func (m *Metrics) BalanceAdjusted() {
	if m == nil {
		return
	}
	m.BalanceAdjustments.Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
