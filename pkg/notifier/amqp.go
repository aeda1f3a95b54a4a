package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"church-library/pkg/circuitbreaker"
)

const (
	publishTimeout = 5 * time.Second
	retryDelay     = 30 * time.Second
	drainInterval  = 10 * time.Second
	maxAttempts    = 5
)

// Confirmation is the message published for every confirmed loan.
type Confirmation struct {
	MessageUid string    `json:"messageUid"`
	UserName   string    `json:"userName"`
	BookName   string    `json:"bookName"`
	ReturnDate string    `json:"returnDate"`
	SentAt     time.Time `json:"sentAt"`
}

// AMQPNotifier publishes borrow confirmations to a durable RabbitMQ queue.
// Publishing goes through a circuit breaker; messages that cannot be
// delivered are parked in a retry queue and re-published by a background
// drain.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	breaker *circuitbreaker.Breaker
	retries *RetryQueue
	done    chan struct{}
}

func NewAMQP(url, queueName string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	n := &AMQPNotifier{
		conn:    conn,
		channel: channel,
		queue:   queue,
		breaker: circuitbreaker.New(3, 30*time.Second),
		retries: NewRetryQueue(),
		done:    make(chan struct{}),
	}
	go n.drainRetries()

	log.Printf("Connected to RabbitMQ, queue %q declared", queue.Name)
	return n, nil
}

func (n *AMQPNotifier) SendBorrowConfirmation(userName, bookName, returnDateDisplay string) {
	c := Confirmation{
		MessageUid: uuid.New().String(),
		UserName:   userName,
		BookName:   bookName,
		ReturnDate: returnDateDisplay,
		SentAt:     time.Now(),
	}

	if err := n.breaker.Do(func() error { return n.publish(c) }); err != nil {
		log.Printf("Borrow confirmation %s not delivered, queued for retry: %v", c.MessageUid, err)
		n.retries.Enqueue(&PendingConfirmation{
			Confirmation: c,
			RetryAt:      time.Now().Add(retryDelay),
			MaxAttempts:  maxAttempts,
		})
	}
}

func (n *AMQPNotifier) publish(c Confirmation) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return n.channel.PublishWithContext(
		ctx,
		"",           // exchange
		n.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   c.MessageUid,
			Body:        body,
		},
	)
}

func (n *AMQPNotifier) drainRetries() {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.done:
			return
		case <-ticker.C:
			for {
				pending := n.retries.Dequeue(time.Now())
				if pending == nil {
					break
				}
				err := n.breaker.Do(func() error { return n.publish(pending.Confirmation) })
				if err == nil {
					continue
				}
				pending.Attempts++
				if pending.Attempts >= pending.MaxAttempts {
					log.Printf("Dropping borrow confirmation %s after %d attempts",
						pending.Confirmation.MessageUid, pending.Attempts)
				} else {
					pending.RetryAt = time.Now().Add(retryDelay)
					n.retries.Enqueue(pending)
				}
				// The broker is still unreachable, no point draining further
				// this round.
				break
			}
		}
	}
}

func (n *AMQPNotifier) Close() {
	close(n.done)
	if err := n.channel.Close(); err != nil {
		log.Printf("Error closing RabbitMQ channel: %v", err)
	}
	if err := n.conn.Close(); err != nil {
		log.Printf("Error closing RabbitMQ connection: %v", err)
	}
}
