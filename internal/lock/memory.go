package lock

import (
	"context"
	"sync"
	"time"
)

// Memory — Locker в пределах одного процесса.
//
// Блокировка истекает через ttl, даже если её не освободили.
type Memory struct {
	mu    sync.Mutex
	now   func() time.Time
	held  map[string]memoryEntry
	seqNo uint64
}

type memoryEntry struct {
	token     uint64
	expiresAt time.Time
}

// NewMemory создаёт пустой Memory.
func NewMemory() *Memory {
	return &Memory{now: time.Now, held: make(map[string]memoryEntry)}
}

// TryLock захватывает блокировку, если она свободна или истекла.
func (m *Memory) TryLock(ctx context.Context, name string, ttl time.Duration) (Lock, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.held[name]; ok && now.Before(e.expiresAt) {
		return nil, false, nil
	}

	m.seqNo++
	m.held[name] = memoryEntry{token: m.seqNo, expiresAt: now.Add(ttl)}
	return &memoryLock{owner: m, name: name, token: m.seqNo}, true, nil
}

type memoryLock struct {
	owner *Memory
	name  string
	token uint64
}

// Release освобождает блокировку, если она всё ещё принадлежит владельцу.
func (l *memoryLock) Release(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()

	e, ok := l.owner.held[l.name]
	if !ok || e.token != l.token {
		return ErrLockNotHeld
	}
	delete(l.owner.held, l.name)
	return nil
}
