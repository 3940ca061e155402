package messaging

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

var _ ports.ApplicationEventPublisher = (*RabbitMQBroker)(nil)

// applicationMessage maps an outbox row to an AMQP message. The event type is
// both the routing key and the message type.
func applicationMessage(evt domain.OutboxEvent, now time.Time) (string, amqp.Publishing) {
	return evt.EventType, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.EventType,
		Timestamp:    now.UTC(),
		Body:         evt.Payload,
	}
}

// PublishApplicationEvent sends an outbox row's JSON payload to the application exchange.
func (rmq *RabbitMQBroker) PublishApplicationEvent(ctx context.Context, evt domain.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	routingKey, msg := applicationMessage(evt, time.Now())
	_, err := rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(ctx, rmq.topology.Exchange, routingKey, false, false, msg)
	})
	if err != nil {
		rmq.logger.Error("publish application event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.EventType),
			zap.String("exchange", rmq.topology.Exchange),
			zap.Error(err),
		)
	}
	return err
}
