package domain

// TaskStatus — статус выполнения wait-задачи.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ TERMINAL (таймаут, выставляет только хост)
type TaskStatus string

const (
	// TaskStatusRunning — ожидание ещё не истекло (или stage не стартовал).
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusSucceeded — ожидание истекло.
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"

	// TaskStatusTerminal — хост прервал задачу по таймауту.
	TaskStatusTerminal TaskStatus = "TERMINAL"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusTerminal:
		return true
	default:
		return false
	}
}

// InstanceStatus — статус экземпляра в discovery.
type InstanceStatus string

const (
	InstanceStatusUp           InstanceStatus = "UP"
	InstanceStatusOutOfService InstanceStatus = "OUT_OF_SERVICE"
	InstanceStatusUnknown      InstanceStatus = "UNKNOWN"
)

// String возвращает строковое представление InstanceStatus.
func (s InstanceStatus) String() string {
	return string(s)
}

// StatusChange — сообщение о смене статуса экземпляра (leadership/discovery).
type StatusChange struct {
	Previous InstanceStatus
	Current  InstanceStatus
}

// IsUp возвращает true, если экземпляр должен выполнять работу.
func (c StatusChange) IsUp() bool {
	return c.Current == InstanceStatusUp
}
