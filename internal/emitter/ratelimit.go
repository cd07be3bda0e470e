package emitter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// RateLimited ограничивает частоту отправки событий.
type RateLimited struct {
	next    Emitter
	limiter *rate.Limiter
}

// NewRateLimited оборачивает next. perSec <= 0 — без ограничения.
func NewRateLimited(next Emitter, perSec float64, burst int) Emitter {
	if perSec <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Send ждёт разрешения лимитера и передаёт событие дальше.
func (r *RateLimited) Send(ctx context.Context, event domain.ArtifactEvent) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %v", ErrEmitFailed, err)
	}
	return r.next.Send(ctx, event)
}
