package broker

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	Exchange   string
	RoutingKey string
	Msg        amqp.Publishing
}

type declaredQueue struct {
	Name string
	Args amqp.Table
}

type binding struct {
	Queue, Key, Exchange string
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  map[string]string
	queues     []declaredQueue
	bindings   []binding
	published  []published
	qos        int
	confirm    bool
	confirms   chan amqp.Confirmation
	nack       bool
	publishErr error
	deliveries chan amqp.Delivery
	closed     bool
	tag        uint64
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges:  map[string]string{},
		deliveries: make(chan amqp.Delivery, 16),
	}
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges[name] = kind
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues = append(c.queues, declaredQueue{Name: name, Args: args})
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = append(c.bindings, binding{Queue: name, Key: key, Exchange: exchange})
	return nil
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qos = prefetchCount
	return nil
}

func (c *fakeChannel) Confirm(noWait bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirm = true
	return nil
}

func (c *fakeChannel) NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirms = confirm
	return confirm
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{Exchange: exchange, RoutingKey: key, Msg: msg})
	if c.confirm && c.confirms != nil {
		c.tag++
		c.confirms <- amqp.Confirmation{DeliveryTag: c.tag, Ack: !c.nack}
	}
	return nil
}

func (c *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) Published() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.published...)
}

type fakeConnection struct {
	mu          sync.Mutex
	channels    []*fakeChannel
	notify      []chan *amqp.Error
	closed      bool
	channelErr  error
	newChannel  func() *fakeChannel
	channelOpen chan *fakeChannel
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{channelOpen: make(chan *fakeChannel, 16)}
}

func (c *fakeConnection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channelErr != nil {
		return nil, c.channelErr
	}
	ch := newFakeChannel()
	if c.newChannel != nil {
		ch = c.newChannel()
	}
	c.channels = append(c.channels, ch)
	c.channelOpen <- ch
	return ch, nil
}

func (c *fakeConnection) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *fakeConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// drop имитирует разрыв соединения со стороны брокера
func (c *fakeConnection) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, n := range c.notify {
		n <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED"}
	}
	c.notify = nil
}

// dialerOf выдает соединения по очереди, nil в списке означает ошибку подключения
func dialerOf(conns ...*fakeConnection) (Dialer, *int) {
	var mu sync.Mutex
	calls := 0
	return func() (Connection, error) {
		mu.Lock()
		defer mu.Unlock()
		i := calls
		calls++
		if i >= len(conns) {
			i = len(conns) - 1
		}
		if conns[i] == nil {
			return nil, errors.New("connection refused")
		}
		return conns[i], nil
	}, &calls
}

type ackRecord struct {
	Tag     uint64
	Ack     bool
	Requeue bool
}

type fakeAcknowledger struct {
	records chan ackRecord
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{records: make(chan ackRecord, 16)}
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.records <- ackRecord{Tag: tag, Ack: true}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.records <- ackRecord{Tag: tag, Requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type decisionFunc func(ctx context.Context, d amqp.Delivery) Decision

func (f decisionFunc) Handle(ctx context.Context, d amqp.Delivery) Decision {
	return f(ctx, d)
}
