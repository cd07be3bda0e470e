package emitter

import (
	"context"
	"log/slog"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// Emitter отправляет событие публикации артефакта.
type Emitter interface {
	Send(ctx context.Context, event domain.ArtifactEvent) error
}

// Func — адаптер функции к Emitter.
type Func func(ctx context.Context, event domain.ArtifactEvent) error

// Send вызывает f.
func (f Func) Send(ctx context.Context, event domain.ArtifactEvent) error {
	return f(ctx, event)
}

// LogEmitter только логирует событие.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter создаёт LogEmitter.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Send логирует событие и всегда возвращает nil.
func (e *LogEmitter) Send(_ context.Context, event domain.ArtifactEvent) error {
	e.logger.Info("artifact event",
		"event_name", event.EventName,
		"idempotency_key", event.IdempotencyKey(),
		"artifacts", len(event.Payload.Artifacts),
	)
	return nil
}
