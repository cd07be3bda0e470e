package poller

import (
	"context"
	"time"
)

// Delta — результат оценки одной партиции.
type Delta interface {
	IsEmpty() bool
}

// PollContext — контекст оценки одной партиции в одном тике.
type PollContext struct {
	// PartitionName — имя партиции.
	PartitionName string

	// Metadata — дополнительные данные для Monitor.
	Metadata map[string]any

	// DryRun — только оценка, без CommitDelta.
	DryRun bool
}

// Monitor — предметная логика, которую Poller вызывает на каждом тике.
type Monitor[D Delta] interface {
	// Name — имя монитора (метрики, логи, имена блокировок).
	Name() string

	// Partitions — упорядоченный список партиций для оценки.
	Partitions() []string

	// GenerateDelta оценивает одну партицию. Не должен иметь побочных эффектов.
	GenerateDelta(ctx context.Context, pc PollContext) (D, error)

	// CommitDelta применяет дельту: отправляет события и сохраняет состояние.
	CommitDelta(ctx context.Context, delta D, sendEvents bool) error
}

// Schedule вычисляет время следующего тика. cron.Schedule удовлетворяет ему.
type Schedule interface {
	Next(t time.Time) time.Time
}

// ScheduleFunc — адаптер функции к Schedule.
type ScheduleFunc func(t time.Time) time.Time

// Next вызывает f.
func (f ScheduleFunc) Next(t time.Time) time.Time {
	return f(t)
}

// Outcome — итог обработки одной партиции в тике.
type Outcome string

const (
	// OutcomeNotDue — дельта пуста.
	OutcomeNotDue Outcome = "not_due"

	// OutcomeCommitted — дельта применена.
	OutcomeCommitted Outcome = "committed"

	// OutcomeDryRun — партиция due, но тик в режиме dry-run.
	OutcomeDryRun Outcome = "dry_run"

	// OutcomeLocked — блокировку держит другой экземпляр.
	OutcomeLocked Outcome = "locked"

	// OutcomeLockError — сервис блокировок недоступен.
	OutcomeLockError Outcome = "lock_error"

	// OutcomeEvaluateFailed — ошибка GenerateDelta.
	OutcomeEvaluateFailed Outcome = "evaluate_failed"

	// OutcomeCommitFailed — ошибка CommitDelta.
	OutcomeCommitFailed Outcome = "commit_failed"
)

// IsFailure возвращает true для исходов-ошибок.
func (o Outcome) IsFailure() bool {
	switch o {
	case OutcomeLockError, OutcomeEvaluateFailed, OutcomeCommitFailed:
		return true
	default:
		return false
	}
}

// PartitionResult — результат обработки партиции.
type PartitionResult struct {
	Partition string  `json:"partition"`
	Outcome   Outcome `json:"outcome"`
	Error     string  `json:"error,omitempty"`
}

// CycleResult — результат одного тика.
type CycleResult struct {
	Partitions []PartitionResult `json:"partitions"`
	Duration   time.Duration     `json:"duration"`
}

// Count возвращает количество партиций с указанным исходом.
func (r CycleResult) Count(o Outcome) int {
	n := 0
	for _, p := range r.Partitions {
		if p.Outcome == o {
			n++
		}
	}
	return n
}

// Failed возвращает количество партиций, обработанных с ошибкой.
func (r CycleResult) Failed() int {
	n := 0
	for _, p := range r.Partitions {
		if p.Outcome.IsFailure() {
			n++
		}
	}
	return n
}
