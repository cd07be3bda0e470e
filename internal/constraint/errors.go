package constraint

import "errors"

// Ошибки ограничения.
var (
	// ErrStateUnavailable — хранилище состояний недоступно.
	ErrStateUnavailable = errors.New("constraint state store unavailable")

	// ErrCorruptState — сохранённое состояние не разбирается.
	ErrCorruptState = errors.New("corrupt constraint state")
)
