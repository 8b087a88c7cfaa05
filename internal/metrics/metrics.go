package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "deal_board"
)

// Metrics holds all application metrics
type Metrics struct {
	// Board API metrics (serve mode)
	BoardRequestsTotal   *prometheus.CounterVec
	BoardRequestDuration *prometheus.HistogramVec

	// CRM API metrics
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Pipeline metrics
	PipelineValue      prometheus.Gauge
	ActiveDeals        prometheus.Gauge
	WinRate            prometheus.Gauge
	AverageDealSize    prometheus.Gauge
	DealsTotal         prometheus.Gauge
	DealMutationsTotal *prometheus.CounterVec
	BoardLoadsTotal    *prometheus.CounterVec

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithLogger creates and registers all metrics with the default registry and a logger
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		BoardRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Board API requests served, by route and outcome",
			},
			[]string{"method", "route", "outcome"},
		),
		BoardRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Board API request latency in seconds, including CRM round trips",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),

		ExternalAPIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_api_request_duration_seconds",
				Help:      "CRM API request duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "status"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_requests_total",
				Help:      "Total number of CRM API requests",
			},
			[]string{"endpoint", "method", "status"},
		),
		ExternalAPIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_errors_total",
				Help:      "Total number of CRM API errors",
			},
			[]string{"endpoint", "error_type"},
		),

		PipelineValue: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pipeline_value",
				Help:      "Sum of deal values across the pipeline",
			},
		),
		ActiveDeals: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_deals",
				Help:      "Number of deals that are neither won nor lost",
			},
		),
		WinRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "win_rate_percent",
				Help:      "Won deals as a percentage of closed deals",
			},
		),
		AverageDealSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "average_deal_size",
				Help:      "Average deal value",
			},
		),
		DealsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "deals_total",
				Help:      "Total number of deals",
			},
		),
		DealMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deal_mutations_total",
				Help:      "Total number of deal create, update and delete requests",
			},
			[]string{"operation", "result"},
		),
		BoardLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "board_loads_total",
				Help:      "Total number of full board loads",
			},
			[]string{"result"},
		),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("Panic in metrics operation",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
			}
		}
	}()
	fn()
}
