package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration — time.Duration, записываемая в YAML строкой ("30s").
type Duration time.Duration

// Std возвращает time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String возвращает строковое представление.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML разбирает строку длительности. Пустая строка — 0.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: line %d: duration must be a string", ErrInvalidConfig, node.Line)
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: line %d: invalid duration %q", ErrInvalidConfig, node.Line, raw)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML записывает длительность строкой.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
