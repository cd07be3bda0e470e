package domain

import (
	"fmt"
	"strconv"
)

// ArtifactType — тип артефакта, публикуемого dry-run планировщиком.
const ArtifactType = "osoriano/dry-run-artifact@v1"

// ArtifactEventName — имя события, которое получает Keel.
const ArtifactEventName = "spinnaker_artifacts_dryrun"

// Artifact — описание опубликованной версии артефакта.
//
// Имена JSON-полей являются частью контракта с потребителем.
type Artifact struct {
	// Type — всегда ArtifactType.
	Type string `json:"type"`

	// Name — имя партиции.
	Name string `json:"name"`

	// Version — время коммита в миллисекундах (строкой).
	// Монотонно растёт для одной партиции, поэтому версии сортируемы.
	Version string `json:"version"`

	// Reference — совпадает с Name.
	Reference string `json:"reference"`

	// CustomKind — всегда false.
	CustomKind bool `json:"customKind"`

	// Metadata — дополнительные атрибуты (createdAt).
	Metadata ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata — метаданные артефакта.
type ArtifactMetadata struct {
	// CreatedAt — время коммита в миллисекундах.
	CreatedAt int64 `json:"createdAt"`
}

// ArtifactPayload — полезная нагрузка события.
type ArtifactPayload struct {
	Artifacts []Artifact     `json:"artifacts"`
	Details   map[string]any `json:"details"`
}

// ArtifactEvent — событие публикации, отправляемое во внешний сервис.
type ArtifactEvent struct {
	Payload   ArtifactPayload `json:"payload"`
	EventName string          `json:"eventName"`
}

// NewArtifactEvent создаёт событие публикации одной версии артефакта.
// version и createdAt равны timestamp.
func NewArtifactEvent(partition string, timestamp int64) ArtifactEvent {
	artifact := Artifact{
		Type:       ArtifactType,
		Name:       partition,
		Version:    strconv.FormatInt(timestamp, 10),
		Reference:  partition,
		CustomKind: false,
		Metadata:   ArtifactMetadata{CreatedAt: timestamp},
	}

	return ArtifactEvent{
		Payload: ArtifactPayload{
			Artifacts: []Artifact{artifact},
			Details:   map[string]any{},
		},
		EventName: ArtifactEventName,
	}
}

// IdempotencyKey возвращает ключ дедупликации события: "{partition}_{timestamp}".
//
// Потребитель может отбрасывать повторы, возникающие при at-least-once доставке
// (crash между отправкой события и записью timestamp).
func IdempotencyKey(partition string, timestamp int64) string {
	return fmt.Sprintf("%s_%d", partition, timestamp)
}

// IdempotencyKey возвращает ключ дедупликации для первого артефакта события.
// Для пустого события возвращает пустую строку.
func (e ArtifactEvent) IdempotencyKey() string {
	if len(e.Payload.Artifacts) == 0 {
		return ""
	}
	a := e.Payload.Artifacts[0]
	return IdempotencyKey(a.Name, a.Metadata.CreatedAt)
}
