package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Shield the assertions from ambient .env-style environments.
	t.Setenv("QUEUE_DRIVER", "")
	t.Setenv("QUEUE_WAIT_TIME", "")
	t.Setenv("QUEUE_MAX_MESSAGES", "")

	cfg := Load()

	if cfg.QueueDriver != "redis" {
		t.Fatalf("expected default queue driver redis, got %q", cfg.QueueDriver)
	}
	if cfg.QueueWaitTime != 20*time.Second {
		t.Fatalf("expected 20s long-poll wait, got %v", cfg.QueueWaitTime)
	}
	if cfg.QueueMaxMessages != 10 {
		t.Fatalf("expected batch size 10, got %d", cfg.QueueMaxMessages)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QUEUE_DRIVER", "kafka")
	t.Setenv("QUEUE_MAX_MESSAGES", "25")
	t.Setenv("QUEUE_WAIT_TIME", "5s")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg := Load()

	if cfg.QueueDriver != "kafka" {
		t.Fatalf("expected kafka driver, got %q", cfg.QueueDriver)
	}
	if cfg.QueueMaxMessages != 25 {
		t.Fatalf("expected batch size 25, got %d", cfg.QueueMaxMessages)
	}
	if cfg.QueueWaitTime != 5*time.Second {
		t.Fatalf("expected 5s wait, got %v", cfg.QueueWaitTime)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Fatalf("expected broker list to split on commas, got %v", cfg.KafkaBrokers)
	}
}
