package constraint

import (
	"context"
	"log/slog"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
)

// Type — тип ограничения в delivery config.
const Type = "osoriano/dry-run-constraint@v1"

// JudgedBy — автор оценки.
const JudgedBy = "Spinnaker"

// Status — статус ограничения.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
)

// Constraint — ограничение, как оно задано в delivery config.
type Constraint struct {
	// WaitTime — сколько держать PENDING.
	WaitTime time.Duration `json:"waitTime"`

	// Fail — итоговый статус FAIL вместо PASS.
	Fail bool `json:"fail"`

	// Alternate — чередовать PASS и FAIL после WaitTime.
	Alternate bool `json:"alternate"`

	// AlternateInterval — период чередования. 0 — равен WaitTime.
	AlternateInterval time.Duration `json:"alternateInterval"`
}

// Interval возвращает фактический период чередования.
func (c Constraint) Interval() time.Duration {
	if c.AlternateInterval > 0 {
		return c.AlternateInterval
	}
	return c.WaitTime
}

// State — состояние ограничения для версии в окружении.
type State struct {
	DeliveryConfig    string    `json:"deliveryConfigName"`
	Environment       string    `json:"environmentName"`
	ArtifactVersion   string    `json:"artifactVersion"`
	ArtifactReference string    `json:"artifactReference"`
	Type              string    `json:"type"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	JudgedAt          time.Time `json:"judgedAt"`
	JudgedBy          string    `json:"judgedBy,omitempty"`

	// Attributes — ограничение, с которым был выставлен текущий статус.
	Attributes *Constraint `json:"attributes,omitempty"`
}

// NewState создаёт PENDING-состояние, начатое в createdAt.
func NewState(deliveryConfig, environment, reference, version string, createdAt time.Time) State {
	return State{
		DeliveryConfig:    deliveryConfig,
		Environment:       environment,
		ArtifactVersion:   version,
		ArtifactReference: reference,
		Type:              Type,
		Status:            StatusPending,
		CreatedAt:         createdAt.UTC(),
	}
}

// Repository сохраняет результаты оценки.
type Repository interface {
	StoreState(ctx context.Context, state State) error
}

// Config — зависимости Evaluator.
type Config struct {
	Repository Repository
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Evaluator оценивает dry-run ограничения.
type Evaluator struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// New создаёт Evaluator.
func New(cfg Config) *Evaluator {
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Evaluator{
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		logger: cfg.Logger.With("constraint", Type),
	}
}

// Status вычисляет статус на текущий момент, ничего не сохраняя.
func (e *Evaluator) Status(c Constraint, state State) Status {
	return statusAt(c, state, e.clock.Now())
}

// CanPromote оценивает ограничение, сохраняет оценку и сообщает,
// можно ли продвигать версию (статус PASS).
func (e *Evaluator) CanPromote(ctx context.Context, c Constraint, state State) (bool, State, error) {
	now := e.clock.Now()
	status := statusAt(c, state, now)

	e.logger.Info("constraint status",
		"delivery_config", state.DeliveryConfig,
		"environment", state.Environment,
		"version", state.ArtifactVersion,
		"status", status,
	)

	next := state
	if status != state.Status {
		attrs := c
		next.Attributes = &attrs
		next.Status = status
	}
	next.JudgedAt = now.UTC()
	next.JudgedBy = JudgedBy

	if e.repo != nil {
		if err := e.repo.StoreState(ctx, next); err != nil {
			return false, state, err
		}
	}
	return status == StatusPass, next, nil
}

func statusAt(c Constraint, state State, now time.Time) Status {
	elapsed := now.Sub(state.CreatedAt)
	if elapsed < c.WaitTime {
		return StatusPending
	}

	pass, fail := StatusPass, StatusFail
	if c.Fail {
		pass, fail = fail, pass
	}

	interval := c.Interval()
	if !c.Alternate || interval <= 0 {
		return pass
	}

	if ((elapsed-c.WaitTime)/interval)%2 == 0 {
		return pass
	}
	return fail
}
