package metrics

import (
	coremetrics "github.com/lmeyrat/transopt/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records assembly and solve outcomes in Prometheus metrics.
type PromSink struct {
	variables   prometheus.Gauge
	constraints prometheus.Gauge
	objective   prometheus.Gauge
	solves      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPromSink registers the run metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	variables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "model_variables",
		Help: "Number of decision variables in the last assembled model",
	})
	constraints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "model_constraints",
		Help: "Number of constraints in the last assembled model",
	})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_objective_value",
		Help: "Objective value of the last optimal solve",
	})
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solves_total",
		Help: "Total number of solver runs by terminal status",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Wall time of solver runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"status"})

	if err := reg.Register(variables); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			variables = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(constraints); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			constraints = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(objective); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			objective = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		variables:   variables,
		constraints: constraints,
		objective:   objective,
		solves:      solves,
		duration:    duration,
	}, nil
}

// RecordAssembly sets the model size gauges.
func (s *PromSink) RecordAssembly(ev coremetrics.AssemblyEvent) error {
	s.variables.Set(float64(ev.Variables))
	s.constraints.Set(float64(ev.Constraints))
	return nil
}

// RecordSolve counts the run and observes its duration.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	if ev.Status == "optimal" {
		s.objective.Set(ev.Objective)
	}
	return nil
}
