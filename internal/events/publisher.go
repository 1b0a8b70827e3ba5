package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingDecided is emitted after a booking decision commits
type BookingDecided struct {
	EventID     string    `json:"event_id"`
	BookingID   uint      `json:"booking_id"`
	UserID      uint      `json:"user_id"`
	DriverID    uint      `json:"driver_id"`
	Status      string    `json:"status"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	VehicleID   uint      `json:"vehicle_id,omitempty"`
	DecidedAt   time.Time `json:"decided_at"`
}

// Publisher emits booking lifecycle events. Publishing is best effort:
// a failed publish never fails the request that triggered it.
type Publisher interface {
	BookingDecided(ctx context.Context, evt BookingDecided) error
	Close() error
}

// RabbitPublisher publishes to a durable topic exchange with routing
// keys of the form booking.<status>.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *RabbitPublisher) BookingDecided(ctx context.Context, evt BookingDecided) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		"booking."+evt.Status,
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   evt.EventID,
			Timestamp:   time.Now(),
			Body:        body,
		})
}

func (p *RabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		log.Printf("⚠️  Failed to close RabbitMQ channel: %v", err)
	}
	return p.conn.Close()
}

// NoopPublisher drops every event; used when RabbitMQ is not configured
type NoopPublisher struct{}

func (NoopPublisher) BookingDecided(context.Context, BookingDecided) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
