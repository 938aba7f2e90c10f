package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
server:
  port: "9090"
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
  lock_ttl: 3s
kafka:
  brokers: ["localhost:9092"]
  topic: progress-events
lives:
  max: 5
rewards:
  xp_multiplier: 2
streak:
  timezone: Asia/Kolkata
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Format != "json" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Topic != "progress-events" {
		t.Fatalf("unexpected kafka section: %+v", cfg.Kafka)
	}
	if got := TTLDuration(cfg.Redis.LockTTL, time.Second); got != 3*time.Second {
		t.Fatalf("lock ttl = %v", got)
	}

	rules := cfg.Rules()
	if rules.MaxLives != 5 || rules.XPMultiplier != 2 || rules.RefillCost != 120 {
		t.Fatalf("unexpected rules: %+v", rules)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Kolkata" {
		t.Fatalf("location = %s", loc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("invalid: %v", got)
	}
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	var cfg Config
	cfg.Streak.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Fatalf("expected unknown zone error")
	}
	cfg.Streak.Timezone = ""
	if loc, err := cfg.Location(); err != nil || loc != time.UTC {
		t.Fatalf("empty zone: %v %v", loc, err)
	}
}
