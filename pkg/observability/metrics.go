package observability

import (
	"errors"
	"log/slog"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cadence"

// Metrics records state transitions and hook failures.
type Metrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	active      *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_transitions_total",
				Help:      "Total number of state starts and ends",
			},
			[]string{"kind", "phase"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hook_failures_total",
				Help:      "Total number of failed or panicking state hooks",
			},
			[]string{"kind", "phase"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "state_duration_seconds",
				Help:      "Time between start and end of states",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"kind"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_states",
				Help:      "Number of started states that have not ended",
			},
			[]string{"kind"},
		),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.transitions, m.failures, m.durations, m.active} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// Hooks returns the observer feeding the transition metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(e domain.LifecycleEvent) {
			m.transitions.WithLabelValues(string(e.Kind), string(e.Phase)).Inc()
			m.active.WithLabelValues(string(e.Kind)).Inc()
		},
		OnEnd: func(e domain.LifecycleEvent) {
			m.transitions.WithLabelValues(string(e.Kind), string(e.Phase)).Inc()
			m.active.WithLabelValues(string(e.Kind)).Dec()
			m.durations.WithLabelValues(string(e.Kind)).Observe(e.Elapsed.Seconds())
		},
	}
}

// ReportFailure counts a hook failure.
func (m *Metrics) ReportFailure(f domain.HookFailure) {
	m.failures.WithLabelValues(string(f.Kind), string(f.Phase)).Inc()
}

// LogReporter logs hook failures at error level.
func LogReporter(logger *slog.Logger) ports.FailureReporter {
	return ports.ReporterFunc(func(f domain.HookFailure) {
		logger.Error("state hook failed",
			"state", f.State,
			"kind", f.Kind,
			"phase", f.Phase,
			"err", f.Err,
		)
	})
}

// Reporter combines the failure log and, when m is not nil, the failure counter.
func Reporter(logger *slog.Logger, m *Metrics) ports.FailureReporter {
	reporters := ports.MultiReporter{LogReporter(logger)}
	if m != nil {
		reporters = append(reporters, m)
	}
	return reporters
}
