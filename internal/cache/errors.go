package cache

import "errors"

// Ошибки хранилища.
var (
	// ErrStoreUnavailable — чтение или запись в хранилище не удались.
	ErrStoreUnavailable = errors.New("publication store unavailable")

	// ErrCorruptValue — в хранилище лежит не целое число.
	ErrCorruptValue = errors.New("corrupt timestamp value")
)
