package dryrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cache"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/emitter"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/partition"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/poller"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

// MonitorName — имя монитора в логах, метриках и именах блокировок.
const MonitorName = "dryrunPollingMonitor"

// PollingConfig — параметры публикации.
type PollingConfig struct {
	PublishInterval         time.Duration
	NumberOfUniqueArtifacts int
	ArtifactPrefix          string
	IndexPadLength          int
}

// Config — зависимости Monitor.
type Config struct {
	Polling PollingConfig
	Cache   *cache.Cache
	Emitter emitter.Emitter
	Clock   clock.Clock
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Monitor — poller.Monitor для dry-run артефактов.
type Monitor struct {
	polling PollingConfig
	cache   *cache.Cache
	emitter emitter.Emitter
	clock   clock.Clock
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

var _ poller.Monitor[domain.PollingDelta] = (*Monitor)(nil)

// New создаёт Monitor.
func New(cfg Config) *Monitor {
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

	return &Monitor{
		polling: cfg.Polling,
		cache:   cfg.Cache,
		emitter: cfg.Emitter,
		clock:   clk,
		metrics: metrics,
		logger:  telemetry.WithMonitor(logger, MonitorName),
	}
}

// Name возвращает MonitorName.
func (m *Monitor) Name() string {
	return MonitorName
}

// Partitions возвращает имена артефактов из конфигурации.
func (m *Monitor) Partitions() []string {
	return partition.Enumerate(m.polling.ArtifactPrefix, m.polling.NumberOfUniqueArtifacts, m.polling.IndexPadLength)
}

// Evaluate проверяет, пора ли публиковать партицию. Только чтение.
func (m *Monitor) Evaluate(ctx context.Context, name string, now time.Time) (due bool, lastPublish int64, err error) {
	lastPublish, err = m.cache.LastPublish(ctx, name)
	if err != nil {
		return false, 0, err
	}

	elapsed := now.UnixMilli() - lastPublish
	return elapsed >= m.polling.PublishInterval.Milliseconds(), lastPublish, nil
}

// GenerateDelta оценивает партицию pc.PartitionName.
func (m *Monitor) GenerateDelta(ctx context.Context, pc poller.PollContext) (domain.PollingDelta, error) {
	name := pc.PartitionName
	logger := telemetry.WithPartition(m.logger, name)

	logger.Debug("checking dry run artifact")

	due, last, err := m.Evaluate(ctx, name, m.clock.Now())
	if err != nil {
		return domain.PollingDelta{}, fmt.Errorf("evaluate %s: %w", name, err)
	}

	if !due {
		logger.Debug("not yet time to publish dry run artifact", "last_publish", last)
		return domain.PollingDelta{}, nil
	}

	logger.Info("time to publish new dry run artifact version", "last_publish", last)
	return domain.PollingDelta{
		Items: []domain.DryRunDelta{{ArtifactName: name, LastPublish: last}},
	}, nil
}

// CommitDelta публикует каждый элемент дельты и записывает новый timestamp.
//
// sendEvents=false только записывает timestamp. Ошибки элементов
// не прерывают обработку остальных и возвращаются вместе.
func (m *Monitor) CommitDelta(ctx context.Context, delta domain.PollingDelta, sendEvents bool) error {
	now := m.clock.Now().UnixMilli()

	var errs []error
	for _, item := range delta.Items {
		if err := m.commitItem(ctx, item, now, sendEvents); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// commitItem: событие, затем timestamp.
func (m *Monitor) commitItem(ctx context.Context, item domain.DryRunDelta, now int64, sendEvents bool) error {
	name := item.ArtifactName
	logger := telemetry.WithPartition(m.logger, name)

	// Версия строго растёт, даже если часы не сдвинулись
	ts := max(now, item.LastPublish+1)

	var emitErr error
	if sendEvents {
		event := domain.NewArtifactEvent(name, ts)
		logger.Info("sending artifact event", "version", ts, "idempotency_key", event.IdempotencyKey())

		if err := m.emitter.Send(ctx, event); err != nil {
			logger.Error("failed to send artifact event, version may be lost", "version", ts, "error", err)
			m.metrics.PartitionErrors.WithLabelValues(MonitorName, telemetry.StageEmit).Inc()
			emitErr = fmt.Errorf("emit %s: %w", name, err)
		}
	}

	// Пишем timestamp даже при ошибке отправки
	if err := m.cache.SetLastPublish(ctx, name, ts); err != nil {
		logger.Error("failed to store last publish timestamp", "version", ts, "error", err)
		m.metrics.PartitionErrors.WithLabelValues(MonitorName, telemetry.StageStore).Inc()
		return errors.Join(emitErr, fmt.Errorf("store %s: %w", name, err))
	}

	return emitErr
}
