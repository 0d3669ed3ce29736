package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ProductEventsQueue is the durable queue product change events are sent to.
const ProductEventsQueue = "product_events"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	logger  *logrus.Logger
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
	// Queue defaults to ProductEventsQueue.
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c, err := newClient(ch, cfg.Queue, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func newClient(ch channel, queue string, logger *logrus.Logger) (*Client, error) {
	if queue == "" {
		queue = ProductEventsQueue
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if _, err := declare(ch, queue); err != nil {
		return nil, err
	}

	logger.WithField("queue", queue).Info("RabbitMQ client connected")
	return &Client{channel: ch, queue: queue, logger: logger}, nil
}

func declare(ch channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishJSON marshals payload and publishes it as a persistent message whose
// Type property is eventType.
func (c *Client) PublishJSON(ctx context.Context, eventType string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.WithField("event", eventType).Debug("Published product event")
	return nil
}

// ConsumeProductEvents starts a goroutine handing each delivery to handler.
// Deliveries are acked when handler succeeds and requeued when it fails.
func (c *Client) ConsumeProductEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	queue, err := declare(c.channel, c.queue)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.WithField("queue", queue.Name).Info("Waiting for product events")

	go func() {
		for msg := range msgs {
			c.dispatch(msg, handler)
		}
	}()
	return nil
}

func (c *Client) dispatch(msg amqp.Delivery, handler func(msg amqp.Delivery) error) {
	entry := c.logger.WithFields(logrus.Fields{
		"delivery_tag": msg.DeliveryTag,
		"event":        msg.Type,
	})

	if err := handler(msg); err != nil {
		entry.WithError(err).Warn("Error processing message")
		// Redelivered messages are dropped so a poison message cannot loop forever.
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			entry.WithError(nackErr).Error("Error nacking message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		entry.WithError(ackErr).Error("Error acking message")
	}
}

// LogProductEvent returns a handler that decodes each delivery's JSON body and
// logs it. Undecodable bodies are reported as errors.
func LogProductEvent(logger *logrus.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event map[string]interface{}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("invalid product event body: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"event":      msg.Type,
			"product_id": event["product_id"],
			"event_id":   event["id"],
		}).Info("Received product event")
		return nil
	}
}
