package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// SleepFunc ждёт d или отмены ctx.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner — хост, исполняющий WaitTask до завершения или таймаута.
type Runner struct {
	task   *WaitTask
	clock  clock.Clock
	sleep  SleepFunc
	logger *slog.Logger
}

// NewRunner создаёт Runner. nil sleep — ожидание на таймере.
func NewRunner(task *WaitTask, clk clock.Clock, sleep SleepFunc, logger *slog.Logger) *Runner {
	if clk == nil {
		clk = clock.System{}
	}
	if sleep == nil {
		sleep = timerSleep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{task: task, clock: clk, sleep: sleep, logger: logger.With("task", TaskName)}
}

// Run исполняет задачу. Выставляет stage.StartTime, если он не задан.
//
// Возвращает SUCCEEDED, либо TERMINAL и ErrTimeout, если общая длительность
// превысила Timeout (Timeout <= 0 — без ограничения).
func (r *Runner) Run(ctx context.Context, stage *StageExecution) (domain.TaskStatus, error) {
	if !stage.Started() {
		start := r.clock.Now().UnixMilli()
		stage.StartTime = &start
	}
	startedAt := time.UnixMilli(*stage.StartTime)
	timeout := r.task.Timeout()

	for attempt := 1; ; attempt++ {
		decision := r.task.Evaluate(*stage)
		if decision.Status == domain.TaskStatusSucceeded {
			r.logger.Info("wait task succeeded", "attempts", attempt)
			return decision.Status, nil
		}

		backoff := decision.Backoff
		if timeout > 0 {
			elapsed := r.clock.Now().Sub(startedAt)
			if elapsed >= timeout {
				r.logger.Warn("wait task timed out", "elapsed", elapsed, "timeout", timeout)
				return domain.TaskStatusTerminal, fmt.Errorf("%w after %s", ErrTimeout, elapsed)
			}
			backoff = min(backoff, timeout-elapsed)
		}

		r.logger.Debug("wait task running", "attempt", attempt, "backoff", backoff)
		if err := r.sleep(ctx, backoff); err != nil {
			return domain.TaskStatusRunning, err
		}
	}
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
