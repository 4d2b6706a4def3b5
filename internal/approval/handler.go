package approval

import (
	"context"
	"time"

	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Applier применяет тело сообщения к хранилищу
type Applier interface {
	Apply(ctx context.Context, body []byte) (Result, error)
}

// Handler связывает Reducer с доставками брокера и выбирает, что сделать с сообщением
type Handler struct {
	applier Applier
	timeout time.Duration
	log     *logger.Logger
}

func NewHandler(applier Applier, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{applier: applier, timeout: timeout, log: log}
}

// Handle не прерывает транзакцию при остановке консьюмера: контекст отвязан от родителя
// и ограничен только собственным таймаутом.
func (h *Handler) Handle(ctx context.Context, d amqp.Delivery) broker.Decision {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	log := h.log.With(
		"message_id", d.MessageId,
		"routing_key", d.RoutingKey,
		"retry", broker.RetryCount(d.Headers),
	)

	result, err := h.applier.Apply(ctx, d.Body)
	if err == nil {
		log.Info("request processed",
			"team_id", result.TeamID,
			"request_type", result.RequestType,
			"user_id", result.UserID,
			"outcome", result.Outcome,
			"team_status", result.TeamStatus,
			"message", result.Message,
		)
		return broker.Ack
	}

	if IsPermanent(err) {
		log.Error("request rejected permanently", "team_id", result.TeamID, "error", err)
		return broker.DeadLetter
	}

	log.Warn("request failed, will retry", "team_id", result.TeamID, "error", err)
	return broker.Retry
}
