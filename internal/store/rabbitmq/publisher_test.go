package rabbitmq

import (
	"bytes"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestQueueNames(t *testing.T) {
	if got := RetryQueue("transcript_archive"); got != "transcript_archive.retry" {
		t.Fatalf("retry queue = %q", got)
	}
	if got := DeadLetterQueue("transcript_archive"); got != "transcript_archive.dlq" {
		t.Fatalf("dlq = %q", got)
	}
}

func TestAttempts(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"fresh publish", nil, 0},
		{"no counter", amqp.Table{"other": "x"}, 0},
		{"int32 counter", amqp.Table{attemptsHeader: int32(2)}, 2},
		{"int64 counter", amqp.Table{attemptsHeader: int64(3)}, 3},
		{"wrong type", amqp.Table{attemptsHeader: "2"}, 0},
	}
	for _, tc := range cases {
		if got := Attempts(amqp.Delivery{Headers: tc.headers}); got != tc.want {
			t.Errorf("%s: attempts = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestRetryPublishing(t *testing.T) {
	body := []byte(`{"job_id":"01J0000000000000000000000"}`)
	pub := RetryPublishing(body, 2)

	if !bytes.Equal(pub.Body, body) {
		t.Fatalf("body changed: %s", pub.Body)
	}
	if pub.DeliveryMode != amqp.Persistent {
		t.Fatalf("retry publish must be persistent")
	}
	if got := Attempts(amqp.Delivery{Headers: pub.Headers}); got != 2 {
		t.Fatalf("counter = %d, want 2", got)
	}
}

// A redelivery that keeps failing must stop cycling through the retry queue
// once it has used up its attempts.
func TestRetryCounterAdvancesToGiveUp(t *testing.T) {
	const maxAttempts = 3

	d := amqp.Delivery{Body: []byte(`{"job_id":"j1"}`)}
	var attempt int
	for i := 0; i < maxAttempts; i++ {
		attempt = Attempts(d) + 1
		if attempt >= maxAttempts {
			break
		}
		d = amqp.Delivery{Body: d.Body, Headers: RetryPublishing(d.Body, attempt).Headers}
	}
	if attempt != maxAttempts {
		t.Fatalf("gave up at attempt %d, want %d", attempt, maxAttempts)
	}
}
