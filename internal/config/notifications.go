package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"product-catalog/internal/catalog"
)

const defaultPrefetchCount = 8

// Notifications configures the catalog event consumer worker.
type Notifications struct {
	RabbitMQURL     string
	Queue           string
	PrefetchCount   int
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		Queue:           getEnv("EVENTS_QUEUE", catalog.EventsQueue),
		PrefetchCount:   defaultPrefetchCount,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	if raw := os.Getenv("PREFETCH_COUNT"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 1 {
			return Notifications{}, fmt.Errorf("PREFETCH_COUNT must be a positive integer")
		}
		cfg.PrefetchCount = count
	}

	return cfg, nil
}
