package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Стадии, на которых фиксируются ошибки партиции.
const (
	StageEvaluate = "evaluate"
	StageCommit   = "commit"
	StageEmit     = "emit"
	StageStore    = "store"
	StageLock     = "lock"
)

// Metrics — метрики планировщика публикаций.
type Metrics struct {
	PollCycles      *prometheus.CounterVec
	CycleDuration   *prometheus.HistogramVec
	Published       *prometheus.CounterVec
	PartitionErrors *prometheus.CounterVec
	LockSkips       *prometheus.CounterVec
	Active          *prometheus.GaugeVec
}

// NewMetrics регистрирует метрики в reg.
// nil reg — prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		PollCycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dryrun_poll_cycles_total",
			Help: "Total poll cycles executed",
		}, []string{"monitor", "dry_run"}),
		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dryrun_poll_cycle_duration_seconds",
			Help:    "Duration of one poll cycle",
			Buckets: prometheus.DefBuckets,
		}, []string{"monitor"}),
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dryrun_partitions_published_total",
			Help: "Total artifact versions published per partition",
		}, []string{"monitor", "partition"}),
		PartitionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dryrun_partition_errors_total",
			Help: "Partition failures by stage",
		}, []string{"monitor", "stage"}),
		LockSkips: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dryrun_lock_skips_total",
			Help: "Partitions skipped because another instance holds the lock",
		}, []string{"monitor"}),
		Active: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dryrun_poller_active",
			Help: "1 if the poller is active on this instance",
		}, []string{"monitor"}),
	}
}

// NewTestMetrics создаёт метрики на отдельном registry.
func NewTestMetrics() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}
