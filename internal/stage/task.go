package stage

import (
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// TaskName — имя задачи в графе стадии.
const TaskName = "dryRunTask"

// Config — настройки wait-задачи.
type Config struct {
	// BackoffPeriod — задержка проверки по умолчанию.
	BackoffPeriod time.Duration

	// Timeout — потолок общей длительности задачи (применяет хост).
	Timeout time.Duration
}

// TaskResult — результат одного вызова задачи.
type TaskResult struct {
	Status domain.TaskStatus
}

// Decision — статус и задержка следующей проверки по одному снимку времени.
type Decision struct {
	Status  domain.TaskStatus
	Backoff time.Duration
}

// WaitTask ждёт, пока с момента старта стадии пройдёт WaitTime.
type WaitTask struct {
	config Config
	clock  clock.Clock
}

// NewWaitTask создаёт WaitTask. nil clock — системные часы.
func NewWaitTask(cfg Config, clk clock.Clock) *WaitTask {
	if clk == nil {
		clk = clock.System{}
	}
	return &WaitTask{config: cfg, clock: clk}
}

// Execute возвращает RUNNING или SUCCEEDED.
func (t *WaitTask) Execute(stage StageExecution) TaskResult {
	return TaskResult{Status: t.statusAt(stage, t.clock.Now())}
}

// DynamicBackoffPeriod возвращает задержку до следующей проверки.
func (t *WaitTask) DynamicBackoffPeriod(stage StageExecution) time.Duration {
	return t.backoffAt(stage, t.clock.Now())
}

// Evaluate вычисляет статус и backoff по одному снимку времени.
func (t *WaitTask) Evaluate(stage StageExecution) Decision {
	now := t.clock.Now()
	return Decision{
		Status:  t.statusAt(stage, now),
		Backoff: t.backoffAt(stage, now),
	}
}

// BackoffPeriod возвращает задержку по умолчанию.
func (t *WaitTask) BackoffPeriod() time.Duration {
	return t.config.BackoffPeriod
}

// Timeout возвращает потолок длительности задачи.
func (t *WaitTask) Timeout() time.Duration {
	return t.config.Timeout
}

// deadline возвращает момент истечения ожидания.
func deadline(stage StageExecution) (time.Time, bool) {
	if !stage.Started() {
		return time.Time{}, false
	}
	return time.UnixMilli(*stage.StartTime).Add(stage.Context.WaitTime), true
}

func (t *WaitTask) statusAt(stage StageExecution, now time.Time) domain.TaskStatus {
	d, ok := deadline(stage)
	if ok && !now.Before(d) {
		return domain.TaskStatusSucceeded
	}
	return domain.TaskStatusRunning
}

func (t *WaitTask) backoffAt(stage StageExecution, now time.Time) time.Duration {
	if d, ok := deadline(stage); ok && d.After(now) {
		return d.Sub(now)
	}
	return t.config.BackoffPeriod
}
