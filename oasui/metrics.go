package oasui

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

type metrics struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	return &metrics{
		generationsTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "typedview",
			Name:      "oas_generations_total",
			Help:      "Total number of OpenAPI documents generated, by format and result.",
		}, []string{"format", "result"}),
		generationDuration: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Namespace: "typedview",
			Name:      "oas_generation_duration_seconds",
			Help:      "Time (in seconds) spent walking routes and building the OpenAPI document.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}
