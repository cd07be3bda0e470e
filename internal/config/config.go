package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/mq"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/repo"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendNone     = "none"
	BackendStatic   = "static"
	BackendLog      = "log"
	BackendKeel     = "keel"
	BackendMQ       = "mq"
)

// Config — корень конфигурации.
type Config struct {
	Artifact     ArtifactConfig `yaml:"artifact"`
	PollSchedule string         `yaml:"pollSchedule"`
	Stage        StageConfig    `yaml:"stage"`
	Store        StoreConfig    `yaml:"store"`
	Lock         LockConfig     `yaml:"lock"`
	Emitter      EmitterConfig  `yaml:"emitter"`
	Leader       LeaderConfig   `yaml:"leader"`
	Server       ServerConfig   `yaml:"server"`
	Postgres     PostgresConfig `yaml:"postgres"`
	Redis        RedisConfig    `yaml:"redis"`
	Keel         KeelConfig     `yaml:"keel"`
	RabbitMQ     RabbitMQConfig `yaml:"rabbitmq"`
}

// ArtifactConfig — блок artifact.
type ArtifactConfig struct {
	Igor IgorConfig `yaml:"igor"`
}

// IgorConfig — параметры публикации артефактов.
type IgorConfig struct {
	Enabled                 bool     `yaml:"enabled"`
	PublishInterval         Duration `yaml:"publishInterval"`
	NumberOfUniqueArtifacts int      `yaml:"numberOfUniqueArtifacts"`
	ArtifactPrefix          string   `yaml:"artifactPrefix"`
	IndexPadLength          int      `yaml:"indexPadLength"`
}

// StageConfig — параметры wait-задачи.
type StageConfig struct {
	BackoffPeriod Duration `yaml:"backoffPeriod"`
	Timeout       Duration `yaml:"timeout"`
}

// StoreConfig — хранилище timestamp публикаций.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Prefix  string `yaml:"prefix"`
}

// LockConfig — блокировки партиций.
type LockConfig struct {
	Backend        string   `yaml:"backend"`
	TTL            Duration `yaml:"ttl"`
	AcquireTimeout Duration `yaml:"acquireTimeout"`
}

// EmitterConfig — доставка событий.
type EmitterConfig struct {
	Backend    string  `yaml:"backend"`
	RatePerSec float64 `yaml:"ratePerSec"`
	Burst      int     `yaml:"burst"`
	SendEvents bool    `yaml:"sendEvents"`
}

// LeaderConfig — источник статуса экземпляра.
type LeaderConfig struct {
	Backend       string   `yaml:"backend"`
	LockKey       int64    `yaml:"lockKey"`
	CheckInterval Duration `yaml:"checkInterval"`
}

// ServerConfig — HTTP /healthz и /metrics.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// PostgresConfig — подключение к PostgreSQL (store, lock, leader).
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig — подключение к Redis (store, lock).
type RedisConfig struct {
	URL string `yaml:"url"`
}

// KeelConfig — HTTP-приёмник событий.
type KeelConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// RabbitMQConfig — брокер для emitter.backend=mq.
type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Artifact: ArtifactConfig{Igor: IgorConfig{
			Enabled:                 true,
			PublishInterval:         Duration(10 * time.Minute),
			NumberOfUniqueArtifacts: 1,
			ArtifactPrefix:          "dryrun-artifact-",
			IndexPadLength:          0,
		}},
		PollSchedule: "@every 30s",
		Stage: StageConfig{
			BackoffPeriod: Duration(30 * time.Second),
			Timeout:       Duration(time.Hour),
		},
		Store:    StoreConfig{Backend: BackendMemory, Prefix: "igor"},
		Lock:     LockConfig{Backend: BackendMemory, TTL: Duration(time.Minute), AcquireTimeout: Duration(2 * time.Second)},
		Emitter:  EmitterConfig{Backend: BackendLog, Burst: 1, SendEvents: true},
		Leader:   LeaderConfig{Backend: BackendStatic, CheckInterval: Duration(5 * time.Second)},
		Server:   ServerConfig{Port: 8081},
		Postgres: PostgresConfig{URL: repo.DefaultDSN},
		Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
		Keel:     KeelConfig{Timeout: Duration(10 * time.Second)},
		RabbitMQ: RabbitMQConfig{URL: mq.DefaultURL()},
	}
}

// Load читает конфигурацию: path, иначе DRYRUN_CONFIG, иначе только Default.
// Переменные окружения применяются поверх файла.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("DRYRUN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse разбирает YAML поверх Default и проверяет результат.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// Пустой файл — только значения по умолчанию
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrInvalidConfig) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// applyEnv применяет переопределения из окружения.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("STORE_PREFIX"); v != "" {
		c.Store.Prefix = v
	}
	if v := getenv("DB_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("KEEL_URL"); v != "" {
		c.Keel.URL = v
	}
	if v := getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := getenv("SCHED_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SCHED_PORT: %q is not a number", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate проверяет конфигурацию.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	igor := c.Artifact.Igor
	if igor.PublishInterval <= 0 {
		fail("artifact.igor.publishInterval must be > 0")
	}
	if igor.NumberOfUniqueArtifacts < 0 {
		fail("artifact.igor.numberOfUniqueArtifacts must be >= 0")
	}
	if igor.IndexPadLength < 0 {
		fail("artifact.igor.indexPadLength must be >= 0")
	}

	if _, err := c.Schedule(); err != nil {
		fail("pollSchedule: %v", err)
	}

	if c.Stage.BackoffPeriod < 0 {
		fail("stage.backoffPeriod must be >= 0")
	}
	if c.Stage.Timeout < 0 {
		fail("stage.timeout must be >= 0")
	}

	if !oneOf(c.Store.Backend, BackendMemory, BackendPostgres, BackendRedis) {
		fail("store.backend: unknown backend %q", c.Store.Backend)
	}
	if !oneOf(c.Lock.Backend, BackendNone, BackendMemory, BackendPostgres, BackendRedis) {
		fail("lock.backend: unknown backend %q", c.Lock.Backend)
	}
	if c.Lock.TTL < 0 || c.Lock.AcquireTimeout < 0 {
		fail("lock: durations must be >= 0")
	}
	if !oneOf(c.Emitter.Backend, BackendLog, BackendKeel, BackendMQ) {
		fail("emitter.backend: unknown backend %q", c.Emitter.Backend)
	}
	if c.Emitter.Backend == BackendKeel && c.Keel.URL == "" {
		fail("keel.url is required for keel emitter")
	}
	if c.Keel.Timeout < 0 {
		fail("keel.timeout must be >= 0")
	}
	if c.Emitter.RatePerSec < 0 {
		fail("emitter.ratePerSec must be >= 0")
	}
	if !oneOf(c.Leader.Backend, BackendStatic, BackendPostgres) {
		fail("leader.backend: unknown backend %q", c.Leader.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		fail("server.port out of range: %d", c.Server.Port)
	}

	return errors.Join(errs...)
}

// Schedule разбирает pollSchedule (стандартный cron или "@every 30s").
func (c Config) Schedule() (cron.Schedule, error) {
	if c.PollSchedule == "" {
		return nil, errors.New("empty schedule")
	}
	return cron.ParseStandard(c.PollSchedule)
}

// NeedsPostgres возвращает true, если какой-либо компонент использует PostgreSQL.
func (c Config) NeedsPostgres() bool {
	return c.Store.Backend == BackendPostgres || c.Lock.Backend == BackendPostgres || c.Leader.Backend == BackendPostgres
}

// NeedsRedis возвращает true, если какой-либо компонент использует Redis.
func (c Config) NeedsRedis() bool {
	return c.Store.Backend == BackendRedis || c.Lock.Backend == BackendRedis
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
