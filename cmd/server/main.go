package main

import (
	"context"
	"log"
	"time"

	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/config"
	"github.com/RehanAnsari17/Qloooooooo/internal/db"
	"github.com/RehanAnsari17/Qloooooooo/internal/feedback"
	"github.com/RehanAnsari17/Qloooooooo/internal/httpapi"
	"github.com/RehanAnsari17/Qloooooooo/internal/models"
	"github.com/RehanAnsari17/Qloooooooo/internal/store/rabbitmq"
	"github.com/RehanAnsari17/Qloooooooo/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&chat.Session{},
		&chat.Message{},
		&chat.ArchiveJob{},
		&chat.SessionArchive{},
		&feedback.Preference{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rds.Ping(ctx); err != nil {
		// logout denylist and details cache degrade gracefully without redis
		log.Printf("redis unavailable, running without cache/denylist: %v", err)
		rds = nil
	}
	cancel()

	// the archive publisher is best-effort: without rabbit the chat API runs,
	// transcripts just aren't shadowed
	var publisher chat.ArchivePublisher
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbitmq unavailable, transcript archiving disabled: %v", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	r := httpapi.NewRouter(gdb, cfg, rds, publisher)

	log.Printf("server listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
