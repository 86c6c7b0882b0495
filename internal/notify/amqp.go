package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// AMQPScheduler publishes reminders to a durable RabbitMQ queue. Messages
// are persistent so scheduled reminders survive a broker restart.
type AMQPScheduler struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	log      zerolog.Logger
}

// NewAMQPScheduler connects to the broker and declares the exchange, queue,
// and binding reminders flow through.
func NewAMQPScheduler(url, exchange, queue string, log zerolog.Logger) (*AMQPScheduler, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	s := &AMQPScheduler{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		log:      log,
	}
	if err := s.declare(); err != nil {
		s.Close()
		return nil, fmt.Errorf("declaring exchange and queue: %w", err)
	}
	return s, nil
}

func (s *AMQPScheduler) declare() error {
	err := s.channel.ExchangeDeclare(
		s.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declaring exchange: %w", err)
	}

	_, err = s.channel.QueueDeclare(
		s.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	if err := s.channel.QueueBind(s.queue, s.queue, s.exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}
	return nil
}

// Schedule publishes the reminder payload.
func (s *AMQPScheduler) Schedule(ctx context.Context, r Reminder) error {
	body, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("marshaling reminder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(
		ctx,
		s.exchange, // exchange
		s.queue,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing reminder: %w", err)
	}

	s.log.Info().
		Str("template_id", r.TemplateID).
		Str("due_date", r.DueDate).
		Time("fire_at", r.FireAt).
		Str("queue", s.queue).
		Msg("reminder published")
	return nil
}

// Close releases the channel and connection.
func (s *AMQPScheduler) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
