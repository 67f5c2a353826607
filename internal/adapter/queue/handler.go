package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery. Handlers must be idempotent: a nil
// return acks, an error nacks (requeue behavior is the Router's call),
// and a requeued message will be seen again.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
