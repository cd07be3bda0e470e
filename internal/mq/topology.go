package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

const (
	ExchangeArtifacts       Exchange   = "dryrun.artifacts"
	QueueArtifactsPublished Queue      = "artifacts.published"
	RoutingKeyPublished     RoutingKey = "published"
)

// SetupTopology объявляет exchange, очередь и binding. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeArtifacts), // name
			"direct",                  // type
			true,                      // durable
			false,                     // auto-deleted
			false,                     // internal
			false,                     // no-wait
			nil,                       // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeArtifacts, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueArtifactsPublished), // name
			true,                            // durable
			false,                           // delete when unused
			false,                           // exclusive
			false,                           // no-wait
			nil,                             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueArtifactsPublished, err)
		}

		err = ch.QueueBind(
			string(QueueArtifactsPublished),
			string(RoutingKeyPublished),
			string(ExchangeArtifacts),
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueArtifactsPublished, ExchangeArtifacts, err)
		}
		return nil
	})
}
