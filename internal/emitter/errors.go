package emitter

import "errors"

// Ошибки отправки.
var (
	// ErrEmitFailed — событие не было доставлено.
	ErrEmitFailed = errors.New("artifact event emit failed")
)
