package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"gudang/internal/models"
	"gudang/pkg/logger"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue receives inventory change events unless configured otherwise.
const DefaultQueue = "inventory_changes"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the change queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}

// Close closes the channel and the connection.
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

// ChangeMessage is the JSON body of an inventory change event.
type ChangeMessage struct {
	Action       string    `json:"action"`
	Time         time.Time `json:"time"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	Price        string    `json:"price"`
	PreviousID   string    `json:"previous_id,omitempty"`
	PreviousName string    `json:"previous_name,omitempty"`
	Line         string    `json:"line"`
}

// NewChangeMessage converts a change-log entry into its event body.
func NewChangeMessage(entry models.ChangeLogEntry) ChangeMessage {
	return ChangeMessage{
		Action:       entry.Kind.String(),
		Time:         entry.Time,
		ID:           entry.ID,
		Name:         entry.Name,
		Quantity:     entry.Quantity,
		Price:        entry.Price.StringFixed(2),
		PreviousID:   entry.PreviousID,
		PreviousName: entry.PreviousName,
		Line:         entry.Line(),
	}
}

// PublishChange publishes one inventory change to the change queue.
func (c *Client) PublishChange(entry models.ChangeLogEntry) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(NewChangeMessage(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Type:         entry.Kind.String(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    entry.Time,
		})
	if err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	logger.Debug().Str("action", entry.Kind.String()).Str("id", entry.ID).Msg("Published inventory change")
	return nil
}

// ConsumeChanges delivers every change event to handler until the channel
// closes. Messages are acknowledged when handler returns nil and requeued
// otherwise. It blocks.
func (c *Client) ConsumeChanges(handler func(ChangeMessage) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel, c.queue)
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

	for msg := range msgs {
		var change ChangeMessage
		if err := json.Unmarshal(msg.Body, &change); err != nil {
			// Malformed bodies are dropped, never requeued.
			logger.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Msg("Dropping malformed change event")
			if nackErr := msg.Nack(false, false); nackErr != nil {
				logger.Error().Err(nackErr).Msg("Error nacking change event")
			}
			continue
		}
		if err := handler(change); err != nil {
			logger.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Msg("Error processing change event")
			if requeueErr := msg.Nack(false, true); requeueErr != nil {
				logger.Error().Err(requeueErr).Msg("Error nacking change event")
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error().Err(ackErr).Msg("Error acking change event")
		}
	}
	return nil
}
