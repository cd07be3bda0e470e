package stage

import (
	"testing"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// t1 — старт стадии, t2 — момент после истечения waitTime.
var (
	waitTime = 3 * time.Second
	t1       = time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	t2       = t1.Add(waitTime).Add(time.Second)
)

func newTask() (*WaitTask, *clock.Manual) {
	clk := clock.NewManual(t1)
	task := NewWaitTask(Config{BackoffPeriod: time.Second, Timeout: 2 * time.Second}, clk)
	return task, clk
}

func startedAt(t time.Time) StageExecution {
	ms := t.UnixMilli()
	return StageExecution{StartTime: &ms, Context: Context{WaitTime: waitTime}}
}

// --- Accessors ---

func TestWaitTask_BackoffPeriod(t *testing.T) {
	task, _ := newTask()
	if task.BackoffPeriod() != time.Second {
		t.Errorf("expected 1s, got %s", task.BackoffPeriod())
	}
}

func TestWaitTask_Timeout(t *testing.T) {
	task, _ := newTask()
	if task.Timeout() != 2*time.Second {
		t.Errorf("expected 2s, got %s", task.Timeout())
	}
}

// --- Execute ---

func TestWaitTask_Execute_NotStarted(t *testing.T) {
	task, _ := newTask()
	stage := StageExecution{Context: Context{WaitTime: waitTime}}

	if got := task.Execute(stage).Status; got != domain.TaskStatusRunning {
		t.Errorf("not started stage should be RUNNING, got %s", got)
	}
}

func TestWaitTask_Execute_WaitNotElapsed(t *testing.T) {
	task, _ := newTask()

	if got := task.Execute(startedAt(t1)).Status; got != domain.TaskStatusRunning {
		t.Errorf("expected RUNNING, got %s", got)
	}
}

func TestWaitTask_Execute_WaitElapsed(t *testing.T) {
	task, clk := newTask()
	clk.Set(t2)

	if got := task.Execute(startedAt(t1)).Status; got != domain.TaskStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", got)
	}
}

func TestWaitTask_Execute_ExactlyAtDeadline(t *testing.T) {
	task, clk := newTask()
	clk.Set(t1.Add(waitTime))

	if got := task.Execute(startedAt(t1)).Status; got != domain.TaskStatusSucceeded {
		t.Errorf("expected SUCCEEDED at deadline, got %s", got)
	}
}

func TestWaitTask_Execute_StartedFourSecondsAgo(t *testing.T) {
	task, clk := newTask()
	now := t1.Add(time.Hour)
	clk.Set(now)

	if got := task.Execute(startedAt(now.Add(-4 * time.Second))).Status; got != domain.TaskStatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", got)
	}
}

// --- DynamicBackoffPeriod ---

func TestWaitTask_DynamicBackoff_NotStarted(t *testing.T) {
	task, _ := newTask()
	stage := StageExecution{Context: Context{WaitTime: waitTime}}

	if got := task.DynamicBackoffPeriod(stage); got != time.Second {
		t.Errorf("expected default backoff 1s, got %s", got)
	}
}

func TestWaitTask_DynamicBackoff_RemainingWait(t *testing.T) {
	task, clk := newTask()

	if got := task.DynamicBackoffPeriod(startedAt(t1)); got != 3*time.Second {
		t.Errorf("expected 3s at start, got %s", got)
	}

	clk.Set(t1.Add(time.Second))
	if got := task.DynamicBackoffPeriod(startedAt(t1)); got != 2*time.Second {
		t.Errorf("expected 2s after 1s, got %s", got)
	}
}

func TestWaitTask_DynamicBackoff_Elapsed(t *testing.T) {
	task, clk := newTask()
	clk.Set(t2)

	if got := task.DynamicBackoffPeriod(startedAt(t1)); got != time.Second {
		t.Errorf("expected default backoff after wait elapsed, got %s", got)
	}
}

// --- Evaluate ---

func TestWaitTask_Evaluate_Consistent(t *testing.T) {
	task, clk := newTask()
	stage := startedAt(t1)

	// Проходим по времени с шагом 250ms и проверяем согласованность
	for i := 0; i <= 20; i++ {
		d := task.Evaluate(stage)
		if d.Status == domain.TaskStatusRunning && d.Backoff <= 0 {
			t.Fatalf("step %d: RUNNING must have positive backoff, got %s", i, d.Backoff)
		}
		if d.Status == domain.TaskStatusRunning && clk.Now().Add(d.Backoff).Before(t1.Add(waitTime)) {
			t.Fatalf("step %d: next check lands before deadline", i)
		}
		clk.Advance(250 * time.Millisecond)
	}
}
