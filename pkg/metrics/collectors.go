package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RuntimeCollector собирает метрики runtime
type RuntimeCollector struct {
	goroutines *prometheus.Desc
	maxProcs   *prometheus.Desc
	memAlloc   *prometheus.Desc
	memTotal   *prometheus.Desc
	gcPause    *prometheus.Desc
	gcRuns     *prometheus.Desc
}

// NewRuntimeCollector создаёт новый коллектор runtime метрик
func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	fq := func(name string) string {
		return prometheus.BuildFQName(namespace, subsystem, name)
	}

	return &RuntimeCollector{
		goroutines: prometheus.NewDesc(fq("runtime_goroutines"), "Number of goroutines", nil, nil),
		maxProcs:   prometheus.NewDesc(fq("runtime_gomaxprocs"), "Value of GOMAXPROCS", nil, nil),
		memAlloc:   prometheus.NewDesc(fq("runtime_memory_alloc_bytes"), "Bytes allocated and still in use", nil, nil),
		memTotal:   prometheus.NewDesc(fq("runtime_memory_total_alloc_bytes"), "Total bytes allocated (even if freed)", nil, nil),
		gcPause:    prometheus.NewDesc(fq("runtime_gc_pause_seconds"), "Last GC pause duration", nil, nil),
		gcRuns:     prometheus.NewDesc(fq("runtime_gc_runs_total"), "Total number of completed GC cycles", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.maxProcs
	ch <- c.memAlloc
	ch <- c.memTotal
	ch <- c.gcPause
	ch <- c.gcRuns
}

// Collect implements prometheus.Collector
func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.maxProcs, prometheus.GaugeValue, float64(runtime.GOMAXPROCS(0)))
	ch <- prometheus.MustNewConstMetric(c.memAlloc, prometheus.GaugeValue, float64(stats.Alloc))
	ch <- prometheus.MustNewConstMetric(c.memTotal, prometheus.CounterValue, float64(stats.TotalAlloc))
	ch <- prometheus.MustNewConstMetric(c.gcRuns, prometheus.CounterValue, float64(stats.NumGC))

	if stats.NumGC > 0 {
		ch <- prometheus.MustNewConstMetric(c.gcPause, prometheus.GaugeValue, float64(stats.PauseNs[(stats.NumGC+255)%256])/1e9)
	}
}

// Timer для измерения времени выполнения
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer создаёт новый таймер
func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: observer,
	}
}

// ObserveDuration записывает длительность, nil-таймер ничего не делает
func (t *Timer) ObserveDuration() time.Duration {
	if t == nil {
		return 0
	}
	duration := time.Since(t.start)
	t.observer.Observe(duration.Seconds())
	return duration
}
