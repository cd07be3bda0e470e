package api

import (
	"log/slog"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cache"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/dryrun"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/poller"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/supplier"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	cache    *cache.Cache
	monitor  *dryrun.Monitor
	poller   *poller.Poller[domain.PollingDelta]
	supplier *supplier.Supplier
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Cache    *cache.Cache
	Monitor  *dryrun.Monitor
	Poller   *poller.Poller[domain.PollingDelta]
	Supplier *supplier.Supplier
	Logger   *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cache:    cfg.Cache,
		monitor:  cfg.Monitor,
		poller:   cfg.Poller,
		supplier: cfg.Supplier,
		logger:   logger.With("component", "api"),
	}
}
