package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"quiz-progress-service/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log   LogConfig `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		LockTTL  string `yaml:"lock_ttl"`
		LockWait string `yaml:"lock_wait"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Lives struct {
		Max        int     `yaml:"max"`
		RefillCost float64 `yaml:"refill_cost"`
	} `yaml:"lives"`
	Rewards struct {
		XPMultiplier float64 `yaml:"xp_multiplier"`
	} `yaml:"rewards"`
	Streak struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"streak"`
}

// LogConfig selects the slog handler: level is debug|info|warn|error, format is json|text.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Rules overlays configured values on the default economy; zero values keep the defaults.
func (c Config) Rules() domain.Rules {
	rules := domain.DefaultRules()
	if c.Lives.Max > 0 {
		rules.MaxLives = c.Lives.Max
	}
	if c.Lives.RefillCost > 0 {
		rules.RefillCost = c.Lives.RefillCost
	}
	if c.Rewards.XPMultiplier > 0 {
		rules.XPMultiplier = c.Rewards.XPMultiplier
	}
	return rules
}

// Location returns the time zone streak days are computed in. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Streak.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Streak.Timezone)
	if err != nil {
		return nil, fmt.Errorf("streak timezone %q: %w", c.Streak.Timezone, err)
	}
	return loc, nil
}
