// Package broker управляет соединением с RabbitMQ: топология, публикация и переподключаемый консьюмер.
package broker

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection - часть *amqp.Connection, которой пользуется пакет
type Connection interface {
	Channel() (Channel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

// Channel - часть *amqp.Channel, которой пользуется пакет
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Dialer открывает новое соединение с брокером
type Dialer func() (Connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// DialAMQP возвращает Dialer поверх amqp091-go с таймаутом установки TCP-соединения
func DialAMQP(url, connectionName string, timeout time.Duration) Dialer {
	return func() (Connection, error) {
		props := amqp.NewConnectionProperties()
		props.SetClientConnectionName(connectionName)

		conn, err := amqp.DialConfig(url, amqp.Config{
			Dial:       amqp.DefaultDial(timeout),
			Heartbeat:  10 * time.Second,
			Locale:     "en_US",
			Properties: props,
		})
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		return amqpConnection{conn}, nil
	}
}
