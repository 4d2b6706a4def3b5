package broker

import (
	"fmt"
	"time"

	"github.com/bagdasarian/campus-teams/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// CommandsExchange принимает запросы на переходы от HTTP-слоя
	CommandsExchange = "teams_commands_exchange"
	// DecisionsExchange принимает решения approved / rejected, которые применяет консьюмер
	DecisionsExchange = "requests_events_exchange"
	// AuditExchange - topic-обменник журнала аудита
	AuditExchange = "events_exchange"
	// DeadLetterExchange собирает сообщения, которые не удалось обработать
	DeadLetterExchange = "teams_service.dlx"
	// RetryExchange принимает повторы, они ждут в <queue>.retry и по TTL возвращаются в DecisionsExchange
	RetryExchange = "teams_service.retry"
)

// RetryCountHeader - число повторных публикаций сообщения консьюмером
const RetryCountHeader = "x-retry-count"

// Route связывает тип запроса с ключами маршрутизации и очередью консьюмера
type Route struct {
	RequestType domain.RequestType
	CommandKey  string
	DecisionKey string
	Queue       string
}

var Routes = []Route{
	{
		RequestType: domain.RequestApproveTeam,
		CommandKey:  "team.creation.requested",
		DecisionKey: "team.creation.update",
		Queue:       "teams_service.queue.team_creation",
	},
	{
		RequestType: domain.RequestDeleteTeam,
		CommandKey:  "team.deletion.requested",
		DecisionKey: "team.remove.update",
		Queue:       "teams_service.queue.team_deletion",
	},
	{
		RequestType: domain.RequestAddTeamMember,
		CommandKey:  "member.add.requested",
		DecisionKey: "member.add.update",
		Queue:       "teams_service.queue.member_add",
	},
	{
		RequestType: domain.RequestRemoveTeamMember,
		CommandKey:  "member.removal.requested",
		DecisionKey: "member.remove.update",
		Queue:       "teams_service.queue.member_deletion",
	},
}

func RouteFor(requestType domain.RequestType) (Route, error) {
	for _, r := range Routes {
		if r.RequestType == requestType {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("no route for request type %q", requestType)
}

func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}

func RetryQueue(queue string) string {
	return queue + ".retry"
}

// DeclareRoute объявляет обменники, очередь маршрута, ее DLQ, очередь ожидания повтора и привязки.
// Все объявления идемпотентны и повторяются после каждого переподключения.
func DeclareRoute(ch Channel, route Route, retryBackoff time.Duration) error {
	for _, exchange := range []string{DecisionsExchange, DeadLetterExchange, RetryExchange} {
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
	}

	dlq := DeadLetterQueue(route.Queue)
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", dlq, err)
	}
	if err := ch.QueueBind(dlq, route.DecisionKey, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", dlq, err)
	}

	retry := RetryQueue(route.Queue)
	retryArgs := amqp.Table{
		"x-message-ttl":             retryBackoff.Milliseconds(),
		"x-dead-letter-exchange":    DecisionsExchange,
		"x-dead-letter-routing-key": route.DecisionKey,
	}
	if _, err := ch.QueueDeclare(retry, true, false, false, false, retryArgs); err != nil {
		return fmt.Errorf("declare queue %s: %w", retry, err)
	}
	if err := ch.QueueBind(retry, route.DecisionKey, RetryExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", retry, err)
	}

	args := amqp.Table{"x-dead-letter-exchange": DeadLetterExchange}
	if _, err := ch.QueueDeclare(route.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", route.Queue, err)
	}
	if err := ch.QueueBind(route.Queue, route.DecisionKey, DecisionsExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", route.Queue, err)
	}
	return nil
}

// RetryCount читает x-retry-count из заголовков доставки
func RetryCount(headers amqp.Table) int {
	switch v := headers[RetryCountHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
