package constraint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cache"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

var createdAt = time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

// recordingRepo запоминает сохранённые состояния.
type recordingRepo struct {
	states []State
	err    error
}

func (r *recordingRepo) StoreState(_ context.Context, s State) error {
	if r.err != nil {
		return r.err
	}
	r.states = append(r.states, s)
	return nil
}

func newEvaluator(repo Repository) (*Evaluator, *clock.Manual) {
	clk := clock.NewManual(createdAt)
	return New(Config{Repository: repo, Clock: clk, Logger: telemetry.Discard()}), clk
}

func newState() State {
	return NewState("testDeliveryConfig", "testEnvironment", "testArtifactReference", "testVersion", createdAt)
}

// --- Status Tests ---

func TestStatus(t *testing.T) {
	wait := 30 * time.Second
	cases := []struct {
		name       string
		constraint Constraint
		elapsed    time.Duration
		want       Status
	}{
		{"pending", Constraint{WaitTime: wait}, 5 * time.Second, StatusPending},
		{"pass at deadline", Constraint{WaitTime: wait}, wait, StatusPass},
		{"fail after wait", Constraint{WaitTime: wait, Fail: true}, time.Hour, StatusFail},
		{"alternate first interval", Constraint{WaitTime: wait, Alternate: true, AlternateInterval: time.Minute}, 35 * time.Second, StatusPass},
		{"alternate second interval", Constraint{WaitTime: wait, Alternate: true, AlternateInterval: time.Minute}, 95 * time.Second, StatusFail},
		{"alternate third interval", Constraint{WaitTime: wait, Alternate: true, AlternateInterval: time.Minute}, 155 * time.Second, StatusPass},
		{"alternate inverted", Constraint{WaitTime: wait, Fail: true, Alternate: true, AlternateInterval: time.Minute}, 95 * time.Second, StatusPass},
		{"alternate default interval", Constraint{WaitTime: wait, Alternate: true}, 65 * time.Second, StatusFail},
		{"alternate zero interval", Constraint{Alternate: true}, time.Minute, StatusPass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, clk := newEvaluator(nil)
			clk.Advance(tc.elapsed)
			if got := e.Status(tc.constraint, newState()); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// --- CanPromote Tests ---

func TestCanPromote_AlternatingScenario(t *testing.T) {
	repo := &recordingRepo{}
	e, clk := newEvaluator(repo)
	c := Constraint{WaitTime: 30 * time.Second, Alternate: true, AlternateInterval: 60 * time.Second}
	state := newState()

	// 12:00:05 — ожидание не истекло, обновляется только judgedAt
	clk.Set(createdAt.Add(5 * time.Second))
	ok, judged, err := e.CanPromote(context.Background(), c, state)
	if err != nil || ok {
		t.Fatalf("pending: ok=%v err=%v", ok, err)
	}
	if judged.Status != StatusPending || judged.Attributes != nil {
		t.Errorf("pending state should keep status without attributes: %+v", judged)
	}
	if !judged.JudgedAt.Equal(clk.Now()) || judged.JudgedBy != JudgedBy {
		t.Errorf("unexpected judged fields: %+v", judged)
	}

	// 12:00:35 — PASS
	clk.Set(createdAt.Add(35 * time.Second))
	ok, judged, _ = e.CanPromote(context.Background(), c, state)
	if !ok || judged.Status != StatusPass {
		t.Errorf("expected PASS, got ok=%v status=%s", ok, judged.Status)
	}
	if judged.Attributes == nil || *judged.Attributes != c {
		t.Errorf("status change should record attributes, got %+v", judged.Attributes)
	}

	// 12:01:35 — FAIL
	clk.Set(createdAt.Add(95 * time.Second))
	ok, judged, _ = e.CanPromote(context.Background(), c, judged)
	if ok || judged.Status != StatusFail {
		t.Errorf("expected FAIL, got ok=%v status=%s", ok, judged.Status)
	}

	if len(repo.states) != 3 {
		t.Errorf("every evaluation should be stored, got %d", len(repo.states))
	}
}

func TestCanPromote_StoreError(t *testing.T) {
	e, clk := newEvaluator(&recordingRepo{err: errors.New("connection refused")})
	clk.Advance(time.Minute)

	ok, state, err := e.CanPromote(context.Background(), Constraint{WaitTime: time.Second}, newState())
	if err == nil || ok {
		t.Errorf("expected error without promotion, got ok=%v err=%v", ok, err)
	}
	if state.Status != StatusPending {
		t.Errorf("failed store should return the input state, got %s", state.Status)
	}
}

// --- HashRepository Tests ---

func TestHashRepository_RoundTrip(t *testing.T) {
	r := NewHashRepository(cache.NewMemoryStore(), "igor")
	ctx := context.Background()
	state := newState()

	if _, found, err := r.GetState(ctx, "testDeliveryConfig", "testEnvironment", "testArtifactReference", "testVersion"); err != nil || found {
		t.Fatalf("expected no state, found=%v err=%v", found, err)
	}

	got, err := r.GetOrCreate(ctx, state)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("unexpected createdAt %s", got.CreatedAt)
	}

	// Повторный вызов не сдвигает CreatedAt
	later := state
	later.CreatedAt = createdAt.Add(time.Hour)
	got, _ = r.GetOrCreate(ctx, later)
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("existing state must be kept, got createdAt %s", got.CreatedAt)
	}
}

func TestHashRepository_Key(t *testing.T) {
	r := NewHashRepository(cache.NewMemoryStore(), "")
	if got := r.Key("dc", "env", "ref", "v1"); got != "igor:constraint:dc:env:ref:v1" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestHashRepository_CorruptState(t *testing.T) {
	store := cache.NewMemoryStore()
	r := NewHashRepository(store, "igor")
	ctx := context.Background()

	_ = store.HSet(ctx, r.Key("dc", "env", "ref", "v1"), StateField, "{")
	if _, _, err := r.GetState(ctx, "dc", "env", "ref", "v1"); !errors.Is(err, ErrCorruptState) {
		t.Errorf("expected ErrCorruptState, got %v", err)
	}
}
