package broker

import (
	"context"
	"time"

	"github.com/bagdasarian/campus-teams/internal/audit"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditPublisher реализует audit.Emitter поверх topic-обменника журнала аудита
type AuditPublisher struct {
	publisher *Publisher
}

func NewAuditPublisher(publisher *Publisher) *AuditPublisher {
	return &AuditPublisher{publisher: publisher}
}

func (a *AuditPublisher) Emit(ctx context.Context, event audit.Event) error {
	msg, err := audit.EncodeCelery(event)
	if err != nil {
		return err
	}

	return a.publisher.Publish(ctx, Message{
		Exchange:     AuditExchange,
		ExchangeKind: amqp.ExchangeTopic,
		RoutingKey:   event.EventType,
		Publishing: amqp.Publishing{
			ContentType:     "application/json",
			ContentEncoding: "utf-8",
			DeliveryMode:    amqp.Persistent,
			MessageId:       msg.TaskID,
			CorrelationId:   msg.TaskID,
			Timestamp:       time.Now().UTC(),
			Headers:         amqp.Table(msg.Headers),
			Body:            msg.Body,
		},
	})
}
