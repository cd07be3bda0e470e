package poller

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/lock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

// Default configuration values.
const (
	defaultInterval    = 30 * time.Second
	defaultLockTTL     = time.Minute
	defaultLockTimeout = 2 * time.Second
	releaseTimeout     = 5 * time.Second
)

// Config — конфигурация Poller.
type Config[D Delta] struct {
	// Monitor — предметная логика (обязателен).
	Monitor Monitor[D]

	// Locker — распределённая блокировка (опционально; nil — без координации).
	Locker lock.Locker

	// LockTTL — время жизни блокировки партиции (default: 1m).
	LockTTL time.Duration

	// LockTimeout — предельное время попытки захвата (default: 2s).
	LockTimeout time.Duration

	// Schedule — расписание тиков (default: каждые 30s).
	Schedule Schedule

	// SendEvents — false переводит все тики Run в dry-run.
	SendEvents bool

	Clock   clock.Clock
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Poller — планировщик тиков для одного Monitor.
type Poller[D Delta] struct {
	monitor     Monitor[D]
	locker      lock.Locker
	lockTTL     time.Duration
	lockTimeout time.Duration
	schedule    Schedule
	sendEvents  bool

	clock   clock.Clock
	metrics *telemetry.Metrics
	logger  *slog.Logger

	active atomic.Bool
}

// New создаёт Poller в состоянии Suspended.
func New[D Delta](cfg Config[D]) *Poller[D] {
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	lockTimeout := cfg.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}

	schedule := cfg.Schedule
	if schedule == nil {
		schedule = cron.Every(defaultInterval)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics(prometheus.NewRegistry())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics.Active.WithLabelValues(cfg.Monitor.Name()).Set(0)

	return &Poller[D]{
		monitor:     cfg.Monitor,
		locker:      cfg.Locker,
		lockTTL:     lockTTL,
		lockTimeout: lockTimeout,
		schedule:    schedule,
		sendEvents:  cfg.SendEvents,
		clock:       clk,
		metrics:     metrics,
		logger:      telemetry.WithMonitor(logger, cfg.Monitor.Name()),
	}
}

// Name возвращает имя монитора.
func (p *Poller[D]) Name() string {
	return p.monitor.Name()
}

// IsActive возвращает true в состоянии Active.
func (p *Poller[D]) IsActive() bool {
	return p.active.Load()
}

// OnStatusChange переключает Active/Suspended.
// Безопасен для вызова из любой горутины.
func (p *Poller[D]) OnStatusChange(change domain.StatusChange) {
	up := change.IsUp()
	if p.active.Swap(up) == up {
		return
	}

	if up {
		p.metrics.Active.WithLabelValues(p.Name()).Set(1)
		p.logger.Info("poller activated", "previous", change.Previous, "current", change.Current)
	} else {
		p.metrics.Active.WithLabelValues(p.Name()).Set(0)
		p.logger.Info("poller suspended", "previous", change.Previous, "current", change.Current)
	}
}

// Run выполняет тики по расписанию до отмены ctx.
//
// statuses — сообщения о смене статуса экземпляра. Закрытие канала
// сохраняет текущее состояние.
func (p *Poller[D]) Run(ctx context.Context, statuses <-chan domain.StatusChange) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-statuses:
				if !ok {
					return
				}
				p.OnStatusChange(change)
			}
		}
	}()

	p.logger.Info("poller started", "send_events", p.sendEvents)

	for {
		now := p.clock.Now()
		next := p.schedule.Next(now)
		timer := time.NewTimer(max(next.Sub(now), 0))

		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if !p.IsActive() {
			p.logger.Debug("poller suspended, skipping tick")
			continue
		}

		p.Poll(ctx, p.sendEvents)
	}
}

// Poll выполняет один тик: перебирает партиции и обрабатывает каждую.
func (p *Poller[D]) Poll(ctx context.Context, sendEvents bool) CycleResult {
	start := time.Now()
	partitions := p.monitor.Partitions()

	result := CycleResult{Partitions: make([]PartitionResult, 0, len(partitions))}
	for _, name := range partitions {
		if ctx.Err() != nil {
			break
		}
		pr := p.PollSingle(ctx, PollContext{
			PartitionName: name,
			Metadata:      map[string]any{},
			DryRun:        !sendEvents,
		})
		result.Partitions = append(result.Partitions, pr)
	}
	result.Duration = time.Since(start)

	p.metrics.PollCycles.WithLabelValues(p.Name(), strconv.FormatBool(!sendEvents)).Inc()
	p.metrics.CycleDuration.WithLabelValues(p.Name()).Observe(result.Duration.Seconds())

	p.logger.Info("poll cycle completed",
		"partitions", len(partitions),
		"committed", result.Count(OutcomeCommitted),
		"dry_run_due", result.Count(OutcomeDryRun),
		"locked", result.Count(OutcomeLocked),
		"failed", result.Failed(),
		"duration", result.Duration,
	)

	return result
}

// PollSingle обрабатывает одну партицию под блокировкой.
func (p *Poller[D]) PollSingle(ctx context.Context, pc PollContext) PartitionResult {
	logger := telemetry.WithPartition(p.logger, pc.PartitionName)
	res := PartitionResult{Partition: pc.PartitionName}

	if p.locker != nil {
		lockName := p.Name() + "." + pc.PartitionName
		l, ok, err := lock.WithTimeout(ctx, p.locker, lockName, p.lockTTL, p.lockTimeout)
		if err != nil {
			logger.Warn("failed to acquire lock, skipping partition", "lock", lockName, "error", err)
			p.metrics.PartitionErrors.WithLabelValues(p.Name(), telemetry.StageLock).Inc()
			res.Outcome = OutcomeLockError
			res.Error = err.Error()
			return res
		}
		if !ok {
			logger.Debug("lock held by another instance, skipping partition", "lock", lockName)
			p.metrics.LockSkips.WithLabelValues(p.Name()).Inc()
			res.Outcome = OutcomeLocked
			return res
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if err := l.Release(releaseCtx); err != nil {
				logger.Warn("failed to release lock", "lock", lockName, "error", err)
			}
		}()
	}

	delta, err := p.monitor.GenerateDelta(ctx, pc)
	if err != nil {
		logger.Error("failed to generate delta", "error", err)
		p.metrics.PartitionErrors.WithLabelValues(p.Name(), telemetry.StageEvaluate).Inc()
		res.Outcome = OutcomeEvaluateFailed
		res.Error = err.Error()
		return res
	}

	if delta.IsEmpty() {
		res.Outcome = OutcomeNotDue
		return res
	}

	if pc.DryRun {
		logger.Info("partition is due, dry run: skipping commit")
		res.Outcome = OutcomeDryRun
		return res
	}

	if err := p.monitor.CommitDelta(ctx, delta, true); err != nil {
		logger.Error("failed to commit delta", "error", err)
		p.metrics.PartitionErrors.WithLabelValues(p.Name(), telemetry.StageCommit).Inc()
		res.Outcome = OutcomeCommitFailed
		res.Error = err.Error()
		return res
	}

	p.metrics.Published.WithLabelValues(p.Name(), pc.PartitionName).Inc()
	res.Outcome = OutcomeCommitted
	return res
}
