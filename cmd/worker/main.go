package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrattend/internal/attendance"
	"qrattend/internal/config"
	"qrattend/internal/logger"
	"qrattend/internal/notify"
	"qrattend/internal/observability"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

// Worker consumes scan messages and dispatches parent notifications.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, "qrattend-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	svc := attendance.NewService(attendance.NewRepository(db.Client), redisClient.Client, cfg.RecentCacheTTL, log)
	messenger := notify.New(cfg.MessagingURL, cfg.MessagingSkip)

	loc, err := time.LoadLocation(cfg.ReportTimeZone)
	if err != nil {
		log.Warn().Str("zone", cfg.ReportTimeZone).Msg("unknown time zone, using UTC")
		loc = time.UTC
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("queue consume init failed")
	}

	log.Info().Msg("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != queue.TypeScan {
			continue
		}

		id := string(msg.Body)
		evt, err := svc.Event(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("event", id).Msg("fetch event failed")
			continue
		}
		if evt.MessageStatus == attendance.MessageSent {
			continue
		}

		if err := messenger.SendAttendanceMessage(ctx, evt, loc); err != nil {
			log.Error().Err(err).Str("event", id).Str("index", evt.IndexNumber).Msg("notification failed")
			observability.Notifications().WithLabelValues("failed").Inc()
			_ = svc.SetMessageStatus(ctx, id, attendance.MessageFailed)
			continue
		}

		observability.Notifications().WithLabelValues("sent").Inc()
		if err := svc.SetMessageStatus(ctx, id, attendance.MessageSent); err != nil {
			log.Error().Err(err).Str("event", id).Msg("status update failed")
		}
		log.Info().Str("event", id).Str("index", evt.IndexNumber).Msg("notification sent")

		time.Sleep(10 * time.Millisecond)
	}

	log.Info().Msg("worker stopped")
}
