// Package clock предоставляет источник текущего времени.
//
// Компоненты не обращаются к time.Now() напрямую, а получают Clock,
// чтобы тесты могли фиксировать время.
package clock

import (
	"sync"
	"time"
)

// Clock — источник текущего времени.
type Clock interface {
	Now() time.Time
}

// System — Clock на основе time.Now.
type System struct{}

// Now возвращает текущее время.
func (System) Now() time.Time {
	return time.Now()
}

// Manual — Clock с ручным управлением (для тестов и CLI).
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual создаёт Manual, показывающий t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// Now возвращает установленное время.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set устанавливает время.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance сдвигает время на d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
