package emitter

import (
	"context"
	"fmt"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/mq"
)

// publisher — часть mq.Publisher, нужная MQEmitter.
type publisher interface {
	Publish(ctx context.Context, exchange mq.Exchange, routingKey mq.RoutingKey, messageID string, body any) error
}

// MQEmitter публикует события в RabbitMQ.
type MQEmitter struct {
	publisher publisher
}

// NewMQEmitter создаёт MQEmitter поверх mq.Publisher.
func NewMQEmitter(p *mq.Publisher) *MQEmitter {
	return &MQEmitter{publisher: p}
}

// Send публикует событие; MessageId — ключ идемпотентности.
func (e *MQEmitter) Send(ctx context.Context, event domain.ArtifactEvent) error {
	err := e.publisher.Publish(ctx, mq.ExchangeArtifacts, mq.RoutingKeyPublished, event.IdempotencyKey(), event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmitFailed, err)
	}
	return nil
}
