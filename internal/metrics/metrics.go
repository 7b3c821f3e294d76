// Package metrics provides Prometheus metrics for Rio compilations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds the compiler metrics. It implements compiler.Recorder.
type Collector struct {
	Compilations      *prometheus.CounterVec
	Cells             *prometheus.CounterVec
	MembraneCrossings prometheus.Counter
	CompileDuration   prometheus.Histogram
}

// New creates a collector registered on the default registerer.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rio",
				Name:      "compilations_total",
				Help:      "Total number of compilation units by outcome",
			},
			[]string{"outcome"},
		),
		Cells: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rio",
				Name:      "cells_total",
				Help:      "Total number of HRIR cells emitted by term",
			},
			[]string{"term"},
		),
		MembraneCrossings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rio",
				Name:      "membrane_crossings_total",
				Help:      "Total number of membrane crossings recorded",
			},
		),
		CompileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "rio",
				Name:      "compile_duration_seconds",
				Help:      "Parse and emit duration per unit in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
	}
}

// ObserveUnit records one finished compilation unit.
func (c *Collector) ObserveUnit(success bool, rTerms, dTerms, crossings int, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	c.Compilations.WithLabelValues(outcome).Inc()
	c.Cells.WithLabelValues("R").Add(float64(rTerms))
	c.Cells.WithLabelValues("D").Add(float64(dTerms))
	c.MembraneCrossings.Add(float64(crossings))
	c.CompileDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric gathered from g to filename in the
// Prometheus text format, for pickup by a node exporter textfile collector.
func WriteTextfile(filename string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(filename, g)
}
