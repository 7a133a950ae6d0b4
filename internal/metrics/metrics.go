package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "knapsack_ga"

type Metrics struct {
	jobs            *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	generations     prometheus.Counter
	restarts        prometheus.Counter
	championFitness prometheus.Gauge
}

// New 在 reg 上注册所有指标，服务进程传入 prometheus.DefaultRegisterer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "total",
			Help:      "求解任务数量，按状态区分",
		}, []string{"status"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "单次求解耗时",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		generations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "generations_total",
			Help:      "已经完成的迭代代数",
		}),
		restarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "restarts_total",
			Help:      "因为停滞而重新生成种群的次数",
		}),
		championFitness: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "champion_fitness",
			Help:      "最近一次求解得到的冠军适应度",
		}),
	}
}

func (m *Metrics) JobQueued() {
	m.jobs.WithLabelValues("queued").Inc()
}

func (m *Metrics) JobFailed() {
	m.jobs.WithLabelValues("failed").Inc()
}

// ObserveRun 记录一次成功的求解
func (m *Metrics) ObserveRun(generations int, restarts int, fitness int64, elapsed time.Duration) {
	m.jobs.WithLabelValues("succeeded").Inc()
	m.solveDuration.Observe(elapsed.Seconds())
	m.generations.Add(float64(generations))
	m.restarts.Add(float64(restarts))
	m.championFitness.Set(float64(fitness))
}
