package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsUseCaseObserver struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsUseCaseObserver records use-case counts and latencies on reg.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	factory := promauto.With(reg)
	return &metricsUseCaseObserver{
		total: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sisara",
				Name:      "use_case_total",
				Help:      "Total number of service use cases by result",
			},
			[]string{"use_case", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sisara",
				Name:      "use_case_duration_seconds",
				Help:      "Duration of service use cases in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"use_case"},
		),
	}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	result := "success"
	if !event.Success {
		result = "error"
	}
	o.total.WithLabelValues(event.Name, result).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}
