// Package metrics - Prometheus метрики решателя
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Статусы операции решения
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Операции решения
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        prometheus.Histogram
	MaxFlowValue         prometheus.Gauge

	// Раунды
	RoundsTotal     prometheus.Counter
	PushesTotal     prometheus.Counter
	RelabelsTotal   prometheus.Counter
	ActiveNodes     prometheus.Histogram
	RoundDuration   prometheus.Histogram
	ViolationsTotal *prometheus.CounterVec

	// Размер задачи
	GraphNodes prometheus.Gauge
	GraphEdges prometheus.Gauge
	Workers    prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики в реестре по умолчанию
func InitMetrics(namespace, subsystem string) *Metrics {
	return InitMetricsWith(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, namespace, subsystem)
}

// InitMetricsWith инициализирует метрики в заданном реестре
func InitMetricsWith(reg prometheus.Registerer, gatherer prometheus.Gatherer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		SolveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"status"},
		),

		SolveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		MaxFlowValue: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "max_flow_value",
				Help:      "Last calculated max flow value",
			},
		),

		RoundsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rounds_total",
				Help:      "Total number of completed barrier rounds",
			},
		),

		PushesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pushes_total",
				Help:      "Total number of applied push operations",
			},
		),

		RelabelsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "relabels_total",
				Help:      "Total number of applied relabel operations",
			},
		),

		ActiveNodes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "round_active_nodes",
				Help:      "Number of active nodes processed per round",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		RoundDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "round_duration_seconds",
				Help:      "Duration of a single round including the barrier",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
		),

		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invariant_violations_total",
				Help:      "Detected invariant violations by error code",
			},
			[]string{"code"},
		),

		GraphNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes",
				Help:      "Number of nodes in the last processed graph",
			},
		),

		GraphEdges: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges",
				Help:      "Number of edges in the last processed graph",
			},
		),

		Workers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "workers",
				Help:      "Number of worker goroutines of the last run",
			},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),

		gatherer: gatherer,
	}

	reg.MustRegister(NewRuntimeCollector(namespace, subsystem))

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("preflow", "solver")
	}
	return defaultMetrics
}

// SolveTimer запускает таймер длительности решения
func (m *Metrics) SolveTimer() *Timer {
	return NewTimer(m.SolveDuration)
}

// RecordSolve записывает итог операции решения, длительность пишет SolveTimer
func (m *Metrics) RecordSolve(success bool, maxFlow int64) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	m.SolveOperationsTotal.WithLabelValues(status).Inc()
	if success {
		m.MaxFlowValue.Set(float64(maxFlow))
	}
}

// RecordGraphSize записывает размер задачи
func (m *Metrics) RecordGraphSize(nodes, edges, workers int) {
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
	m.Workers.Set(float64(workers))
}

// RecordRound записывает статистику одного раунда
func (m *Metrics) RecordRound(active, pushes, relabels int, duration time.Duration) {
	m.RoundsTotal.Inc()
	m.PushesTotal.Add(float64(pushes))
	m.RelabelsTotal.Add(float64(relabels))
	m.ActiveNodes.Observe(float64(active))
	m.RoundDuration.Observe(duration.Seconds())
}

// RecordViolation увеличивает счётчик нарушений инварианта
func (m *Metrics) RecordViolation(code string) {
	m.ViolationsTotal.WithLabelValues(code).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// WriteTextfile сохраняет все метрики реестра в формате textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}

// Handler возвращает HTTP handler для метрик реестра
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// NewMetricsServer создаёт HTTP сервер для метрик
func (m *Metrics) NewMetricsServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
