package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/notifications"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("notifications worker exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadNotifications()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer conn.Close()

	consumer, err := notifications.NewConsumer(conn, cfg.Queue, cfg.PrefetchCount, logger)
	if err != nil {
		return fmt.Errorf("init consumer: %w", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifications worker started",
		"queue", cfg.Queue,
		"prefetch", cfg.PrefetchCount,
	)

	done := make(chan error, 1)
	go func() {
		done <- consumer.Listen(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("consumer: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining in-flight deliveries")
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	case <-time.After(cfg.ShutdownTimeout):
		logger.Warn("drain deadline reached, abandoning consumer")
	}

	logger.Info("notifications worker stopped")
	return nil
}
