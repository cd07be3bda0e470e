package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cache"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/config"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/constraint"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/dryrun"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/emitter"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/leader"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/lock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/mq"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/poller"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/repo"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/stage"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/supplier"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

// ErrDisabled — публикация артефактов выключена (artifact.igor.enabled=false).
var ErrDisabled = errors.New("artifact publishing is disabled")

// Options — внешние зависимости Build.
type Options struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Clock      clock.Clock

	// Store — готовое хранилище вместо store.backend (тесты).
	Store cache.HashStore
}

// Runtime — собранные компоненты.
type Runtime struct {
	Config  config.Config
	Cache   *cache.Cache
	Locker  lock.Locker
	Emitter emitter.Emitter
	Metrics *telemetry.Metrics
	Clock   clock.Clock
	Logger  *slog.Logger

	// Constraints оценивает dry-run ограничения, состояния лежат в том же store.
	Constraints      *constraint.Evaluator
	ConstraintStates *constraint.HashRepository

	// Monitor, Poller и Supplier равны nil, если публикация выключена.
	Monitor  *dryrun.Monitor
	Poller   *poller.Poller[domain.PollingDelta]
	Supplier *supplier.Supplier

	pool    *pgxpool.Pool
	redis   *redis.Client
	mqConn  *mq.Connection
	closers []func()
}

// Build собирает Runtime. При ошибке уже открытые соединения закрываются.
func Build(ctx context.Context, cfg config.Config, opts Options) (_ *Runtime, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	rt := &Runtime{
		Config:  cfg,
		Metrics: telemetry.NewMetrics(opts.Registerer),
		Clock:   clk,
		Logger:  logger,
	}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	if err := rt.connect(ctx); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		if store, err = rt.buildStore(ctx); err != nil {
			return nil, err
		}
	}
	rt.Cache = cache.New(store, cfg.Store.Prefix)
	rt.ConstraintStates = constraint.NewHashRepository(store, cfg.Store.Prefix)
	rt.Constraints = constraint.New(constraint.Config{
		Repository: rt.ConstraintStates,
		Clock:      clk,
		Logger:     logger,
	})

	if rt.Locker, err = rt.buildLocker(); err != nil {
		return nil, err
	}
	if rt.Emitter, err = rt.buildEmitter(ctx); err != nil {
		return nil, err
	}

	igor := cfg.Artifact.Igor
	if !igor.Enabled {
		logger.Info("artifact publishing disabled")
		return rt, nil
	}

	rt.Monitor = dryrun.New(dryrun.Config{
		Polling: dryrun.PollingConfig{
			PublishInterval:         igor.PublishInterval.Std(),
			NumberOfUniqueArtifacts: igor.NumberOfUniqueArtifacts,
			ArtifactPrefix:          igor.ArtifactPrefix,
			IndexPadLength:          igor.IndexPadLength,
		},
		Cache:   rt.Cache,
		Emitter: rt.Emitter,
		Clock:   clk,
		Metrics: rt.Metrics,
		Logger:  logger,
	})

	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, fmt.Errorf("%w: pollSchedule: %v", config.ErrInvalidConfig, err)
	}

	rt.Poller = poller.New(poller.Config[domain.PollingDelta]{
		Monitor:     rt.Monitor,
		Locker:      rt.Locker,
		LockTTL:     cfg.Lock.TTL.Std(),
		LockTimeout: cfg.Lock.AcquireTimeout.Std(),
		Schedule:    schedule,
		SendEvents:  cfg.Emitter.SendEvents,
		Clock:       clk,
		Metrics:     rt.Metrics,
		Logger:      logger,
	})

	// Версии выводятся только из интервалов, кратных секунде
	if rt.Supplier, err = supplier.New(igor.PublishInterval.Std(), clk); err != nil {
		logger.Warn("artifact versions unavailable", "error", err)
		err = nil
	}

	return rt, nil
}

// connect открывает нужные конфигурации соединения с PostgreSQL и Redis.
func (r *Runtime) connect(ctx context.Context) error {
	if r.Config.NeedsPostgres() {
		pool, err := repo.NewPool(ctx, r.Config.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		r.pool = pool
		r.closers = append(r.closers, pool.Close)
		r.Logger.Info("database connected")
	}

	if r.Config.NeedsRedis() {
		client, err := cache.NewRedisClient(ctx, r.Config.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		r.redis = client
		r.closers = append(r.closers, func() { _ = client.Close() })
		r.Logger.Info("redis connected")
	}
	return nil
}

func (r *Runtime) buildStore(ctx context.Context) (cache.HashStore, error) {
	switch r.Config.Store.Backend {
	case config.BackendPostgres:
		if err := repo.EnsureSchema(ctx, r.pool); err != nil {
			return nil, err
		}
		return repo.NewHashRepo(r.pool), nil
	case config.BackendRedis:
		return cache.NewRedisStore(r.redis), nil
	default:
		return cache.NewMemoryStore(), nil
	}
}

func (r *Runtime) buildLocker() (lock.Locker, error) {
	switch r.Config.Lock.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendPostgres:
		return lock.NewPostgres(r.pool), nil
	case config.BackendRedis:
		return lock.NewRedis(r.redis, r.Config.Store.Prefix), nil
	case config.BackendMemory:
		return lock.NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: lock.backend %q", config.ErrInvalidConfig, r.Config.Lock.Backend)
	}
}

func (r *Runtime) buildEmitter(ctx context.Context) (emitter.Emitter, error) {
	var e emitter.Emitter

	switch r.Config.Emitter.Backend {
	case config.BackendKeel:
		e = emitter.NewKeelEmitter(r.Config.Keel.URL, r.Config.Keel.Timeout.Std())

	case config.BackendMQ:
		conn, err := mq.NewConnection(r.Config.RabbitMQ.URL, r.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		r.mqConn = conn
		r.closers = append(r.closers, func() { _ = conn.Close() })

		if err := mq.SetupTopology(ctx, conn); err != nil {
			return nil, err
		}
		conn.OnReconnect(mq.SetupTopology)
		r.Logger.Info("rabbitmq connected")

		e = emitter.NewMQEmitter(mq.NewPublisher(conn, r.Logger))

	default:
		e = emitter.NewLogEmitter(r.Logger)
	}

	return emitter.NewRateLimited(e, r.Config.Emitter.RatePerSec, r.Config.Emitter.Burst), nil
}

// Statuses возвращает источник статуса экземпляра по leader.backend.
func (r *Runtime) Statuses(ctx context.Context) <-chan domain.StatusChange {
	if r.Config.Leader.Backend == config.BackendPostgres && r.pool != nil {
		return leader.NewAdvisory(r.pool, r.Config.Leader.LockKey, r.Config.Leader.CheckInterval.Std(), r.Logger).Run(ctx)
	}
	return leader.Static(domain.InstanceStatusUp)
}

// WaitTask создаёт wait-задачу по блоку stage.
func (r *Runtime) WaitTask() *stage.WaitTask {
	return stage.NewWaitTask(stage.Config{
		BackoffPeriod: r.Config.Stage.BackoffPeriod.Std(),
		Timeout:       r.Config.Stage.Timeout.Std(),
	}, r.Clock)
}

// Ready проверяет доступность зависимостей для /healthz.
func (r *Runtime) Ready(ctx context.Context) error {
	if r.pool != nil {
		if err := r.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if r.redis != nil {
		if err := r.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if r.mqConn != nil && !r.mqConn.IsConnected() {
		return errors.New("rabbitmq: not connected")
	}
	return nil
}

// Close освобождает соединения.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
