package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

const (
	defaultKeelTimeout = 10 * time.Second
	artifactEventsPath = "/artifacts/events"

	// HeaderIdempotencyKey — заголовок с ключом дедупликации события.
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// KeelEmitter отправляет события в Keel по HTTP.
type KeelEmitter struct {
	baseURL string
	client  *http.Client
}

// NewKeelEmitter создаёт KeelEmitter. timeout <= 0 — 10 секунд.
func NewKeelEmitter(baseURL string, timeout time.Duration) *KeelEmitter {
	if timeout <= 0 {
		timeout = defaultKeelTimeout
	}
	return &KeelEmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Send выполняет POST {baseURL}/artifacts/events с JSON-телом события.
// Любой статус вне 2xx — ErrEmitFailed.
func (e *KeelEmitter) Send(ctx context.Context, event domain.ArtifactEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrEmitFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+artifactEventsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrEmitFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := event.IdempotencyKey(); key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: keel returned %d: %s", ErrEmitFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	// Тело ответа не используется, дочитываем для переиспользования соединения
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
