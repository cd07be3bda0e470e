// Dry-run Scheduler — периодически публикует версии dry-run артефактов.
//
// Scheduler:
//   - Перебирает партиции по расписанию pollSchedule
//   - Публикует событие, если с прошлой публикации прошёл publishInterval
//   - Записывает timestamp публикации в хранилище
//   - Работает только на экземпляре со статусом UP (leader.backend)
//
// Несколько экземпляров координируются блокировками партиций.
// Путь к конфигурации — DRYRUN_CONFIG.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/api"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/app"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/config"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting dryrun-scheduler")

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := app.Build(ctx, cfg, app.Options{
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		logger.Error("failed to build scheduler", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.Ready(checkCtx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Административный API
	api.NewHandler(api.Config{
		Cache:    rt.Cache,
		Monitor:  rt.Monitor,
		Poller:   rt.Poller,
		Supplier: rt.Supplier,
		Logger:   logger,
	}).RegisterRoutes(mux)

	port := ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if rt.Poller == nil {
		// Публикация выключена: отдаём только /healthz и /metrics
		<-ctx.Done()
		logger.Info("dryrun-scheduler stopped")
		return
	}

	if err := rt.Poller.Run(ctx, rt.Statuses(ctx)); err != nil && ctx.Err() == nil {
		logger.Error("poller stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("dryrun-scheduler stopped")
}
