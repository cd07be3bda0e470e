package domain

// DryRunDelta — партиция, признанная due в текущем тике.
type DryRunDelta struct {
	// ArtifactName — имя партиции.
	ArtifactName string

	// LastPublish — прочитанный при оценке timestamp последней публикации (ms).
	// 0 — партиция ещё не публиковалась.
	LastPublish int64
}

// PollingDelta — результат одного прохода оценки.
//
// Обычно содержит 0 или 1 элемент на партицию, но модель допускает несколько.
type PollingDelta struct {
	Items []DryRunDelta
}

// IsEmpty возвращает true, если публиковать нечего.
func (d PollingDelta) IsEmpty() bool {
	return len(d.Items) == 0
}
