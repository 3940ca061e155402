// Package messaging publishes application workflow events to RabbitMQ.
package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/config"
)

// applicationRoutingPattern matches every application.* event type.
const applicationRoutingPattern = "application.#"

// Topology names the exchange events are published to and the durable queue bound to it.
// Routing keys are the outbox event types, so consumers can bind narrower queues
// (for example only application.decided) to the same exchange.
type Topology struct {
	Exchange string
	Queue    string
}

// topologyChannel is the part of *amqp.Channel used to declare the topology.
type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declare sets up a durable topic exchange and binds the queue to every application event.
// All calls are idempotent, so every relay instance runs them on start.
func (t Topology) declare(ch topologyChannel) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.Queue, err)
	}
	if err := ch.QueueBind(t.Queue, applicationRoutingPattern, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.Queue, err)
	}
	return nil
}

// RabbitMQBroker implements ports.ApplicationEventPublisher.
type RabbitMQBroker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	topology Topology
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

func NewRabbitMQBroker(amqpURL string, topology Topology, logger *zap.Logger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := topology.declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQBroker{
		conn:     conn,
		ch:       ch,
		topology: topology,
		cb:       config.NewCircuitBreaker(config.BreakerRabbitMQ, logger),
		logger:   logger,
	}, nil
}

func (rmq *RabbitMQBroker) Close() error {
	var chErr error
	if rmq.ch != nil {
		chErr = rmq.ch.Close()
	}
	if rmq.conn != nil {
		if err := rmq.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
