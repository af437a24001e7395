package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/config"
	"github.com/RehanAnsari17/Qloooooooo/internal/db"
	"github.com/RehanAnsari17/Qloooooooo/internal/store/rabbitmq"
)

// a job is attempted this many times in total before it lands on the DLQ
const maxAttempts = 3

type archiveMsg struct {
	JobID string `json:"job_id"`
}

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := chat.NewRepo(gdb)

	// no bot provider or recommender: the worker only snapshots sessions
	svc := chat.NewService(repo, nil, nil, nil, cfg.ChatContextWindowSize)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("archive worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m archiveMsg
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := svc.ArchiveSession(ctx, m.JobID); err != nil {
					attempt := rabbitmq.Attempts(d) + 1
					if attempt >= maxAttempts {
						log.Printf("worker=%d job=%s giving up after %d attempts cost=%s err=%v",
							workerID, m.JobID, attempt, time.Since(start), err)
						// dead-letters to the DLQ
						_ = d.Nack(false, false)
						continue
					}

					log.Printf("worker=%d job=%s attempt=%d failed, parking for retry cost=%s err=%v",
						workerID, m.JobID, attempt, time.Since(start), err)
					if perr := ch.PublishWithContext(ctx, "", rabbitmq.RetryQueue(cfg.RabbitQueue),
						false, false, rabbitmq.RetryPublishing(d.Body, attempt)); perr != nil {
						log.Printf("worker=%d job=%s retry publish failed err=%v", workerID, m.JobID, perr)
						_ = d.Nack(false, false)
						continue
					}
					_ = d.Ack(false)
					continue
				}
				if cost := time.Since(start); cost > 2*time.Second {
					log.Printf("worker=%d job=%s slow archive cost=%s", workerID, m.JobID, cost)
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}
