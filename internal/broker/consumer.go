package broker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// Decision - что консьюмер делает с доставкой после обработки
type Decision int

const (
	// Ack подтверждает доставку
	Ack Decision = iota
	// Retry переиздает копию с увеличенным x-retry-count и подтверждает оригинал
	Retry
	// DeadLetter отклоняет доставку без возврата в очередь, брокер переносит ее в DLQ
	DeadLetter
)

func (d Decision) String() string {
	switch d {
	case Ack:
		return "ack"
	case Retry:
		return "retry"
	case DeadLetter:
		return "dead_letter"
	}
	return "unknown"
}

// DeliveryHandler обрабатывает одну доставку до конца и возвращает решение
type DeliveryHandler interface {
	Handle(ctx context.Context, delivery amqp.Delivery) Decision
}

type State string

const (
	StateStarting     State = "starting"
	StateRunning      State = "running"
	StateReconnecting State = "reconnecting"
	StateStopped      State = "stopped"
)

var (
	ErrConnectionLost   = errors.New("broker connection lost")
	ErrDeliveriesClosed = errors.New("delivery channel closed")
)

// Consumer держит подписку на очереди решений и переподключается при разрыве соединения
type Consumer struct {
	dial         Dialer
	handler      DeliveryHandler
	log          *logger.Logger
	routes       []Route
	prefetch     int
	maxRetries   int
	retryDelay   time.Duration
	retryBackoff time.Duration

	state atomic.Value
}

func NewConsumer(cfg *config.Config, handler DeliveryHandler, log *logger.Logger) *Consumer {
	dial := DialAMQP(cfg.RabbitMQ.AMQPURL(), cfg.App.ServiceName+".consumer", cfg.RabbitMQ.ConnectTimeout)
	return NewConsumerWithDialer(dial, cfg.Consumer, handler, log)
}

func NewConsumerWithDialer(dial Dialer, cfg config.ConsumerConfig, handler DeliveryHandler, log *logger.Logger) *Consumer {
	c := &Consumer{
		dial:         dial,
		handler:      handler,
		log:          log,
		routes:       Routes,
		prefetch:     cfg.Prefetch,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		retryBackoff: cfg.RetryBackoff,
	}
	c.state.Store(StateStarting)
	return c
}

func (c *Consumer) State() State {
	return c.state.Load().(State)
}

func (c *Consumer) setState(s State) {
	c.state.Store(s)
}

// Run подключается к брокеру и обрабатывает доставки, пока ctx не отменен.
// После любой ошибки сессии ждет retryDelay и подключается заново, без ограничения попыток.
// Отмена ctx - штатная остановка, Run возвращает nil.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.setState(StateStopped)

	b := backoff.WithContext(backoff.NewConstantBackOff(c.retryDelay), ctx)

	err := backoff.RetryNotify(func() error {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = ErrConnectionLost
		}
		return err
	}, b, func(err error, wait time.Duration) {
		c.setState(StateReconnecting)
		if errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrDeliveriesClosed) || errors.Is(err, amqp.ErrClosed) {
			c.log.Warn("broker connection lost, reconnecting", "error", err, "retry_in", wait)
			return
		}
		c.log.Error("consumer session failed, reconnecting", "error", err, "retry_in", wait)
	})

	if ctx.Err() != nil {
		c.log.Info("consumer stopped")
		return nil
	}
	return err
}

func (c *Consumer) session(parent context.Context) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	for _, route := range c.routes {
		route := route
		deliveries, ch, err := c.subscribe(conn, route)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}

		g.Go(func() error {
			defer ch.Close()
			return c.consume(gctx, ch, route, deliveries)
		})
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return ErrConnectionLost
			}
			return fmt.Errorf("%w: %s", ErrConnectionLost, amqpErr.Error())
		}
	})

	c.setState(StateRunning)
	c.log.Info("consumer connected", "queues", len(c.routes), "prefetch", c.prefetch)

	return g.Wait()
}

func (c *Consumer) subscribe(conn Connection, route Route) (<-chan amqp.Delivery, Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("set qos: %w", err)
	}

	if err := DeclareRoute(ch, route, c.retryBackoff); err != nil {
		ch.Close()
		return nil, nil, err
	}

	deliveries, err := ch.Consume(route.Queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("consume %s: %w", route.Queue, err)
	}
	return deliveries, ch, nil
}

// consume обрабатывает доставки очереди по одной: следующая читается только после ack текущей
func (c *Consumer) consume(ctx context.Context, ch Channel, route Route, deliveries <-chan amqp.Delivery) error {
	log := c.log.With("queue", route.Queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%s: %w", route.Queue, ErrDeliveriesClosed)
			}
			c.dispatch(ctx, ch, route, log, d)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, ch Channel, route Route, log *logger.Logger, d amqp.Delivery) {
	decision := c.handler.Handle(ctx, d)

	switch decision {
	case Ack:
		if err := d.Ack(false); err != nil {
			log.Error("failed to ack delivery", "delivery_tag", d.DeliveryTag, "error", err)
		}
	case Retry:
		c.retry(ctx, ch, route, log, d)
	default:
		if err := d.Nack(false, false); err != nil {
			log.Error("failed to reject delivery", "delivery_tag", d.DeliveryTag, "error", err)
			return
		}
		log.Warn("delivery dead-lettered", "message_id", d.MessageId, "routing_key", d.RoutingKey)
	}
}

// retry откладывает доставку в очередь ожидания маршрута, оригинал подтверждается после публикации копии
func (c *Consumer) retry(ctx context.Context, ch Channel, route Route, log *logger.Logger, d amqp.Delivery) {
	attempt := RetryCount(d.Headers) + 1
	if attempt > c.maxRetries {
		log.Error("retries exhausted, dead-lettering delivery",
			"message_id", d.MessageId,
			"routing_key", d.RoutingKey,
			"retries", attempt-1,
		)
		if err := d.Nack(false, false); err != nil {
			log.Error("failed to reject delivery", "delivery_tag", d.DeliveryTag, "error", err)
		}
		return
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[RetryCountHeader] = int32(attempt)

	msg := amqp.Publishing{
		Headers:         headers,
		ContentType:     d.ContentType,
		ContentEncoding: d.ContentEncoding,
		DeliveryMode:    amqp.Persistent,
		CorrelationId:   d.CorrelationId,
		MessageId:       d.MessageId,
		Timestamp:       d.Timestamp,
		Body:            d.Body,
	}

	if err := ch.PublishWithContext(context.WithoutCancel(ctx), RetryExchange, route.DecisionKey, false, false, msg); err != nil {
		log.Error("failed to republish delivery, requeueing", "message_id", d.MessageId, "error", err)
		if err := d.Nack(false, true); err != nil {
			log.Error("failed to requeue delivery", "delivery_tag", d.DeliveryTag, "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("failed to ack delivery", "delivery_tag", d.DeliveryTag, "error", err)
		return
	}
	log.Info("delivery scheduled for retry", "message_id", d.MessageId, "attempt", attempt, "delay", c.retryBackoff)
}
