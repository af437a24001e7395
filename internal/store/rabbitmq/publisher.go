package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetryDelay is how long a failed job parks on the retry queue before it
// dead-letters back to the main queue for another attempt.
const RetryDelay = 30 * time.Second

const attemptsHeader = "x-attempts"

// RetryQueue names the parking queue for failed deliveries of queue.
func RetryQueue(queue string) string { return queue + ".retry" }

// DeadLetterQueue names the terminal queue for deliveries that exhausted
// their retries (or were unparseable).
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareTopology declares the archive queues on ch. Both the publisher and
// the worker call this with identical arguments; a mismatch would make the
// later declaration fail.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(DeadLetterQueue(queue), true, false, false, false, nil); err != nil {
		return err
	}

	// failed jobs wait out RetryDelay here, then flow back to the main queue
	if _, err := ch.QueueDeclare(RetryQueue(queue), true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
		"x-message-ttl":             int32(RetryDelay / time.Millisecond),
	}); err != nil {
		return err
	}

	// rejected deliveries (requeue=false) dead-letter straight to the DLQ
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadLetterQueue(queue),
	}); err != nil {
		return err
	}
	return nil
}

// Attempts reads the delivery's retry counter. A fresh publish carries no
// header and counts as attempt 0.
func Attempts(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	switch v := d.Headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// RetryPublishing wraps a failed delivery's body for the retry queue with the
// attempt counter bumped to attempts.
func RetryPublishing(body []byte, attempts int) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{attemptsHeader: int32(attempts)},
		Body:         body,
		Timestamp:    time.Now(),
	}
}

// Publisher enqueues transcript-archive jobs.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

type ArchiveMessage struct {
	JobID string `json:"job_id"`
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) PublishArchive(ctx context.Context, jobID string) error {
	body, err := json.Marshal(ArchiveMessage{JobID: jobID})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
