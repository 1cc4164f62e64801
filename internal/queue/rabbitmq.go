package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/streadway/amqp"
)

const (
	// queue for recorded movements
	MovementQueue = "movements"
)

// handles RabbitMQ operations
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		MovementQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// publishes a recorded movement to the queue
func (r *RabbitMQ) PublishMovement(ctx context.Context, movement *models.AccountMovement) error {
	body, err := json.Marshal(movement)
	if err != nil {
		return fmt.Errorf("failed to marshal movement: %w", err)
	}

	// Publish a message
	err = r.channel.Publish(
		"",            // exchange
		MovementQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // make message persistent
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	return nil
}

// consumes recorded movements from the queue
func (r *RabbitMQ) ConsumeMovements(ctx context.Context) (<-chan models.AccountMovement, error) {
	msgs, err := r.channel.Consume(
		MovementQueue, // queue
		"",            // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	// Create a channel for movements
	mvChan := make(chan models.AccountMovement)

	// Process messages in a goroutine
	go func() {
		defer close(mvChan)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var mv models.AccountMovement
				if err := json.Unmarshal(msg.Body, &mv); err != nil {
					// Log error and continue
					fmt.Printf("failed to unmarshal movement: %v\n", err)
					msg.Reject(false) // Don't requeue
					continue
				}

				// Send to movement channel
				mvChan <- mv

				// Acknowledge message
				msg.Ack(false)
			}
		}
	}()

	return mvChan, nil
}
