package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublish оборачивает любую ошибку публикации
	ErrPublish = errors.New("publish failed")
	// ErrNacked - брокер не подтвердил сообщение
	ErrNacked = errors.New("message nacked by broker")
)

// Message - сообщение, готовое к отправке в обменник
type Message struct {
	Exchange     string
	ExchangeKind string
	RoutingKey   string
	Publishing   amqp.Publishing
}

// Publisher держит одно общее соединение и открывает канал на каждую публикацию
type Publisher struct {
	dial Dialer
	log  *logger.Logger

	mu   sync.Mutex
	conn Connection
}

func NewPublisher(cfg *config.Config, log *logger.Logger) *Publisher {
	dial := DialAMQP(cfg.RabbitMQ.AMQPURL(), cfg.App.ServiceName+".publisher", cfg.RabbitMQ.ConnectTimeout)
	return NewPublisherWithDialer(dial, log)
}

func NewPublisherWithDialer(dial Dialer, log *logger.Logger) *Publisher {
	return &Publisher{dial: dial, log: log}
}

// Publish объявляет обменник, публикует сообщение в режиме подтверждений и ждет ack брокера.
// Любая ошибка возвращается вызывающему, обернутая в ErrPublish.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	if err := p.publish(ctx, msg); err != nil {
		p.log.Error("failed to publish message",
			"exchange", msg.Exchange,
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		return fmt.Errorf("%w: %s/%s: %w", ErrPublish, msg.Exchange, msg.RoutingKey, err)
	}
	p.log.Debug("message published", "exchange", msg.Exchange, "routing_key", msg.RoutingKey)
	return nil
}

func (p *Publisher) publish(ctx context.Context, msg Message) error {
	conn, err := p.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		p.reset(conn)
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("enable confirms: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	if err := ch.ExchangeDeclare(msg.Exchange, msg.ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.PublishWithContext(ctx, msg.Exchange, msg.RoutingKey, false, false, msg.Publishing); err != nil {
		return err
	}

	select {
	case confirm, ok := <-confirms:
		if !ok {
			return amqp.ErrClosed
		}
		if !confirm.Ack {
			return ErrNacked
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) connection() (Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}

	conn, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// reset забывает соединение, чтобы следующая публикация открыла новое
func (p *Publisher) reset(conn Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == conn {
		_ = conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// PublishRequest отправляет запрос на переход в обменник команд
func (p *Publisher) PublishRequest(ctx context.Context, req domain.Request) error {
	route, err := RouteFor(req.RequestType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return p.publishJSON(ctx, CommandsExchange, amqp.ExchangeDirect, route.CommandKey, req, nil)
}

func (p *Publisher) publishJSON(ctx context.Context, exchange, kind, key string, payload any, headers amqp.Table) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %w", ErrPublish, err)
	}

	return p.Publish(ctx, Message{
		Exchange:     exchange,
		ExchangeKind: kind,
		RoutingKey:   key,
		Publishing: amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Headers:      headers,
			Body:         body,
		},
	})
}

// DecisionPublisher отправляет решения по запросам в очереди консьюмера
type DecisionPublisher struct {
	publisher *Publisher
}

func NewDecisionPublisher(publisher *Publisher) *DecisionPublisher {
	return &DecisionPublisher{publisher: publisher}
}

func (d *DecisionPublisher) PublishDecision(ctx context.Context, req domain.Request) error {
	route, err := RouteFor(req.RequestType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return d.publisher.publishJSON(ctx, DecisionsExchange, amqp.ExchangeDirect, route.DecisionKey, req, nil)
}
