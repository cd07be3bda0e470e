package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/lock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

// fakeDelta — дельта, содержащая имя партиции или пустая.
type fakeDelta struct {
	items []string
}

func (d fakeDelta) IsEmpty() bool { return len(d.items) == 0 }

// fakeMonitor — Monitor, который считает вызовы.
type fakeMonitor struct {
	partitions []string
	due        map[string]bool
	evalErr    map[string]error
	commitErr  error

	mu        sync.Mutex
	evaluated []string
	committed []string
}

func (m *fakeMonitor) Name() string         { return "fakeMonitor" }
func (m *fakeMonitor) Partitions() []string { return m.partitions }

func (m *fakeMonitor) GenerateDelta(_ context.Context, pc PollContext) (fakeDelta, error) {
	m.mu.Lock()
	m.evaluated = append(m.evaluated, pc.PartitionName)
	m.mu.Unlock()

	if err := m.evalErr[pc.PartitionName]; err != nil {
		return fakeDelta{}, err
	}
	if m.due[pc.PartitionName] {
		return fakeDelta{items: []string{pc.PartitionName}}, nil
	}
	return fakeDelta{}, nil
}

func (m *fakeMonitor) CommitDelta(_ context.Context, d fakeDelta, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = append(m.committed, d.items...)
	return nil
}

func (m *fakeMonitor) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

func (m *fakeMonitor) evaluatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.evaluated)
}

// errLocker всегда возвращает ошибку.
type errLocker struct{}

func (errLocker) TryLock(context.Context, string, time.Duration) (lock.Lock, bool, error) {
	return nil, false, lock.ErrLockUnavailable
}

func newPoller(m *fakeMonitor, locker lock.Locker, schedule Schedule) *Poller[fakeDelta] {
	metrics, _ := telemetry.NewTestMetrics()
	return New(Config[fakeDelta]{
		Monitor:    m,
		Locker:     locker,
		Schedule:   schedule,
		SendEvents: true,
		Metrics:    metrics,
		Logger:     telemetry.Discard(),
	})
}

func every(d time.Duration) Schedule {
	return ScheduleFunc(func(t time.Time) time.Time { return t.Add(d) })
}

// --- State Tests ---

func TestPoller_InitiallySuspended(t *testing.T) {
	p := newPoller(&fakeMonitor{}, nil, nil)
	if p.IsActive() {
		t.Error("poller should start suspended")
	}
}

func TestPoller_OnStatusChange(t *testing.T) {
	p := newPoller(&fakeMonitor{}, nil, nil)

	p.OnStatusChange(domain.StatusChange{Previous: domain.InstanceStatusUnknown, Current: domain.InstanceStatusUp})
	if !p.IsActive() {
		t.Error("UP should activate poller")
	}

	p.OnStatusChange(domain.StatusChange{Previous: domain.InstanceStatusUp, Current: domain.InstanceStatusOutOfService})
	if p.IsActive() {
		t.Error("OUT_OF_SERVICE should suspend poller")
	}
}

// --- Poll Tests ---

func TestPoller_Poll_CommitsDuePartitions(t *testing.T) {
	m := &fakeMonitor{
		partitions: []string{"a", "b", "c"},
		due:        map[string]bool{"a": true, "c": true},
	}
	p := newPoller(m, nil, nil)

	result := p.Poll(context.Background(), true)

	if len(result.Partitions) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Partitions))
	}
	if result.Count(OutcomeCommitted) != 2 || result.Count(OutcomeNotDue) != 1 {
		t.Errorf("unexpected outcomes: %+v", result.Partitions)
	}
	if m.committedCount() != 2 {
		t.Errorf("expected 2 commits, got %d", m.committedCount())
	}
	// Порядок перебора совпадает с порядком партиций
	for i, name := range []string{"a", "b", "c"} {
		if result.Partitions[i].Partition != name {
			t.Errorf("result %d: expected %s, got %s", i, name, result.Partitions[i].Partition)
		}
	}
}

func TestPoller_Poll_DryRun(t *testing.T) {
	m := &fakeMonitor{partitions: []string{"a"}, due: map[string]bool{"a": true}}
	p := newPoller(m, nil, nil)

	result := p.Poll(context.Background(), false)

	if result.Count(OutcomeDryRun) != 1 {
		t.Errorf("expected dry-run outcome, got %+v", result.Partitions)
	}
	if m.committedCount() != 0 {
		t.Error("dry run must not commit")
	}
}

func TestPoller_Poll_EvaluateErrorIsolated(t *testing.T) {
	m := &fakeMonitor{
		partitions: []string{"a", "b"},
		due:        map[string]bool{"b": true},
		evalErr:    map[string]error{"a": errors.New("store down")},
	}
	p := newPoller(m, nil, nil)

	result := p.Poll(context.Background(), true)

	if result.Partitions[0].Outcome != OutcomeEvaluateFailed {
		t.Errorf("expected evaluate_failed for a, got %s", result.Partitions[0].Outcome)
	}
	if result.Partitions[0].Error == "" {
		t.Error("error message should be recorded")
	}
	if result.Partitions[1].Outcome != OutcomeCommitted {
		t.Errorf("b should still be committed, got %s", result.Partitions[1].Outcome)
	}
}

func TestPoller_Poll_CommitError(t *testing.T) {
	m := &fakeMonitor{
		partitions: []string{"a", "b"},
		due:        map[string]bool{"a": true, "b": true},
		commitErr:  errors.New("emit failed"),
	}
	p := newPoller(m, nil, nil)

	result := p.Poll(context.Background(), true)
	if result.Count(OutcomeCommitFailed) != 2 {
		t.Errorf("expected both commits to fail independently, got %+v", result.Partitions)
	}
}

// --- Lock Tests ---

func TestPoller_PollSingle_LockedByOther(t *testing.T) {
	m := &fakeMonitor{partitions: []string{"a"}, due: map[string]bool{"a": true}}
	locker := lock.NewMemory()
	p := newPoller(m, locker, nil)

	// Другой экземпляр держит блокировку партиции
	held, ok, _ := locker.TryLock(context.Background(), "fakeMonitor.a", time.Minute)
	if !ok {
		t.Fatal("setup: lock should be acquired")
	}

	res := p.PollSingle(context.Background(), PollContext{PartitionName: "a"})
	if res.Outcome != OutcomeLocked {
		t.Errorf("expected locked outcome, got %s", res.Outcome)
	}
	if m.evaluatedCount() != 0 {
		t.Error("locked partition must not be evaluated")
	}

	_ = held.Release(context.Background())
	res = p.PollSingle(context.Background(), PollContext{PartitionName: "a"})
	if res.Outcome != OutcomeCommitted {
		t.Errorf("expected committed after release, got %s", res.Outcome)
	}
}

func TestPoller_PollSingle_ReleasesLock(t *testing.T) {
	m := &fakeMonitor{partitions: []string{"a"}, due: map[string]bool{"a": true}}
	locker := lock.NewMemory()
	p := newPoller(m, locker, nil)

	p.PollSingle(context.Background(), PollContext{PartitionName: "a"})

	if _, ok, _ := locker.TryLock(context.Background(), "fakeMonitor.a", time.Minute); !ok {
		t.Error("lock should be released after PollSingle")
	}
}

func TestPoller_PollSingle_LockError(t *testing.T) {
	m := &fakeMonitor{partitions: []string{"a"}, due: map[string]bool{"a": true}}
	p := newPoller(m, errLocker{}, nil)

	res := p.PollSingle(context.Background(), PollContext{PartitionName: "a"})
	if res.Outcome != OutcomeLockError {
		t.Errorf("expected lock_error, got %s", res.Outcome)
	}
	if m.committedCount() != 0 {
		t.Error("must not commit without lock")
	}
}

// --- Run Tests ---

func TestPoller_Run_TicksOnlyWhenActive(t *testing.T) {
	m := &fakeMonitor{partitions: []string{"a"}}
	p := newPoller(m, nil, every(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses := make(chan domain.StatusChange, 1)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, statuses) }()

	// Suspended — тики пропускаются
	time.Sleep(50 * time.Millisecond)
	if n := m.evaluatedCount(); n != 0 {
		t.Fatalf("suspended poller should not evaluate, got %d", n)
	}

	statuses <- domain.StatusChange{Previous: domain.InstanceStatusUnknown, Current: domain.InstanceStatusUp}
	waitFor(t, func() bool { return m.evaluatedCount() >= 2 })

	statuses <- domain.StatusChange{Previous: domain.InstanceStatusUp, Current: domain.InstanceStatusOutOfService}
	waitFor(t, func() bool { return !p.IsActive() })

	// Даём завершиться тику, начатому до перехода
	time.Sleep(20 * time.Millisecond)
	before := m.evaluatedCount()
	time.Sleep(50 * time.Millisecond)
	if after := m.evaluatedCount(); after != before {
		t.Errorf("no ticks expected after suspend: %d → %d", before, after)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestPoller_Run_CyclesDoNotOverlap(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	m := &slowMonitor{inFlight: &inFlight, maxInFlight: &maxInFlight}

	metrics, _ := telemetry.NewTestMetrics()
	p := New(Config[fakeDelta]{
		Monitor:  m,
		Schedule: every(time.Millisecond),
		Metrics:  metrics,
		Logger:   telemetry.Discard(),
	})
	p.OnStatusChange(domain.StatusChange{Current: domain.InstanceStatusUp})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx, nil)

	if maxInFlight.Load() > 1 {
		t.Errorf("cycles overlapped: max in flight %d", maxInFlight.Load())
	}
}

// slowMonitor — Monitor с медленной оценкой для проверки перекрытия тиков.
type slowMonitor struct {
	inFlight    *atomic.Int32
	maxInFlight *atomic.Int32
}

func (m *slowMonitor) Name() string         { return "slowMonitor" }
func (m *slowMonitor) Partitions() []string { return []string{"a"} }

func (m *slowMonitor) GenerateDelta(context.Context, PollContext) (fakeDelta, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return fakeDelta{}, nil
}

func (m *slowMonitor) CommitDelta(context.Context, fakeDelta, bool) error { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCycleResult_Failed(t *testing.T) {
	res := CycleResult{Partitions: []PartitionResult{
		{Partition: "a", Outcome: OutcomeCommitted},
		{Partition: "b", Outcome: OutcomeLocked},
		{Partition: "c", Outcome: OutcomeLockError},
		{Partition: "d", Outcome: OutcomeEvaluateFailed},
		{Partition: "e", Outcome: OutcomeCommitFailed},
		{Partition: "f", Outcome: OutcomeNotDue},
	}}

	if got := res.Failed(); got != 3 {
		t.Errorf("expected 3 failed partitions, got %d", got)
	}
	if OutcomeLocked.IsFailure() || OutcomeDryRun.IsFailure() {
		t.Error("lock contention and dry run are not failures")
	}
}
