package stage

import "errors"

// Ошибки wait-задачи.
var (
	// ErrTimeout — задача не завершилась за Timeout.
	ErrTimeout = errors.New("wait task timed out")

	// ErrInvalidContext — контекст стадии не содержит корректного waitTime.
	ErrInvalidContext = errors.New("invalid stage context")

	// ErrInvalidDuration — строка не является допустимой длительностью.
	ErrInvalidDuration = errors.New("invalid duration")
)
