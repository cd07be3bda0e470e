package stage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// Context — параметры стадии, заданные пользователем pipeline.
type Context struct {
	// WaitTime — сколько ждать с момента старта стадии.
	WaitTime time.Duration `json:"waitTime"`
}

// StageExecution — исполнение стадии, которым владеет хост.
type StageExecution struct {
	// StartTime — время старта стадии (ms). nil — стадия ещё не стартовала.
	// Выставляется хостом один раз.
	StartTime *int64

	// Context — параметры стадии.
	Context Context
}

// Started возвращает true, если StartTime задан.
func (s *StageExecution) Started() bool {
	return s.StartTime != nil
}

// ParseContext разбирает контекст стадии из map.
//
// waitTime принимается как строка Go ("3s", "1m30s"), строка ISO-8601
// ("PT3S") или число секунд.
func ParseContext(raw map[string]any) (Context, error) {
	v, ok := raw["waitTime"]
	if !ok {
		return Context{}, fmt.Errorf("%w: waitTime is required", ErrInvalidContext)
	}

	var d time.Duration
	switch val := v.(type) {
	case string:
		parsed, err := ParseDuration(val)
		if err != nil {
			return Context{}, fmt.Errorf("%w: waitTime: %v", ErrInvalidContext, err)
		}
		d = parsed
	case float64:
		parsed, err := fromNanos(val * float64(time.Second))
		if err != nil {
			return Context{}, fmt.Errorf("%w: waitTime: %v", ErrInvalidContext, err)
		}
		d = parsed
	case int:
		parsed, err := fromNanos(float64(val) * float64(time.Second))
		if err != nil {
			return Context{}, fmt.Errorf("%w: waitTime: %v", ErrInvalidContext, err)
		}
		d = parsed
	case int64:
		parsed, err := fromNanos(float64(val) * float64(time.Second))
		if err != nil {
			return Context{}, fmt.Errorf("%w: waitTime: %v", ErrInvalidContext, err)
		}
		d = parsed
	case time.Duration:
		d = val
	default:
		return Context{}, fmt.Errorf("%w: waitTime has unsupported type %T", ErrInvalidContext, v)
	}

	if d < 0 {
		return Context{}, fmt.Errorf("%w: waitTime must not be negative", ErrInvalidContext)
	}
	return Context{WaitTime: d}, nil
}

// ParseDuration разбирает длительность в формате Go ("1m30s") или ISO-8601
// ("PT1M30S", "P1DT2H"). Годы и месяцы не принимаются: их длина не фиксирована.
func ParseDuration(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "P") {
		return time.ParseDuration(s)
	}

	// "P", "PT", "P1DT": обозначение без компонент.
	if s == "P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	iso, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
	}
	if iso.Years != 0 || iso.Months != 0 {
		return 0, fmt.Errorf("%w: %q: years and months are not supported", ErrInvalidDuration, s)
	}
	if iso.Negative {
		return 0, fmt.Errorf("%w: %q: negative duration", ErrInvalidDuration, s)
	}

	nanos := (iso.Weeks*7+iso.Days)*float64(24*time.Hour) +
		iso.Hours*float64(time.Hour) +
		iso.Minutes*float64(time.Minute) +
		iso.Seconds*float64(time.Second)

	d, err := fromNanos(nanos)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
	}
	return d, nil
}

// fromNanos переводит наносекунды в time.Duration с проверкой диапазона.
func fromNanos(nanos float64) (time.Duration, error) {
	if math.IsNaN(nanos) || math.Abs(nanos) >= math.MaxInt64 {
		return 0, fmt.Errorf("duration out of range")
	}
	return time.Duration(nanos), nil
}
