package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	Server   Server
	Registry Registry
	Snapshot Snapshot
	Session  Session
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Log      Log
	Catalog  Catalog
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"VEHICLEREG_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"VEHICLEREG_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"VEHICLEREG_REQUEST_TIMEOUT" envDefault:"30s"`
	// ServeRegistry mounts the reference registry API on the same server.
	ServeRegistry bool `env:"VEHICLEREG_SERVE_REGISTRY" envDefault:"true"`
}

// Registry configures the outbound registry client used by the wizard.
type Registry struct {
	BaseURL string        `env:"VEHICLEREG_REGISTRY_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"VEHICLEREG_REGISTRY_TIMEOUT" envDefault:"10s"`
	// BreakerThreshold consecutive failures open the client's circuit for
	// BreakerCooldown.
	BreakerThreshold int           `env:"VEHICLEREG_REGISTRY_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"VEHICLEREG_REGISTRY_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Snapshot selects where wizard drafts are persisted between page loads.
type Snapshot struct {
	Backend string        `env:"VEHICLEREG_SNAPSHOT_BACKEND" envDefault:"memory"`
	Dir     string        `env:"VEHICLEREG_SNAPSHOT_DIR" envDefault:"./data/drafts"`
	TTL     time.Duration `env:"VEHICLEREG_SNAPSHOT_TTL" envDefault:"24h"`
}

// Session bounds how long idle wizard sessions stay in memory. Their
// snapshots outlive eviction and are governed by Snapshot.TTL.
type Session struct {
	IdleTimeout   time.Duration `env:"VEHICLEREG_SESSION_IDLE_TIMEOUT" envDefault:"2h"`
	SweepInterval time.Duration `env:"VEHICLEREG_SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// RedisConfig configures the Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig configures the registry database. An empty DSN keeps the
// registry in memory.
type PostgresConfig struct {
	DSN          string        `env:"DATABASE_URL"`
	MaxOpenConns int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife  time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig configures the audit event sink. No brokers means audit events
// are only logged.
type KafkaConfig struct {
	Brokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic    string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"vehiclereg.audit"`
	ClientID string   `env:"KAFKA_CLIENT_ID" envDefault:"vehiclereg"`
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Catalog points at an optional JSON file seeding the vehicle catalog.
type Catalog struct {
	Path string `env:"VEHICLEREG_CATALOG_PATH"`
}

// Snapshot backends.
const (
	SnapshotMemory = "memory"
	SnapshotFile   = "file"
	SnapshotRedis  = "redis"
)

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds and validates a Config so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field configuration rules.
func (c Config) Validate() error {
	switch c.Snapshot.Backend {
	case SnapshotMemory, SnapshotFile:
	case SnapshotRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("snapshot backend %q requires REDIS_URL", c.Snapshot.Backend)
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("VEHICLEREG_REGISTRY_URL is required")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("VEHICLEREG_REGISTRY_TIMEOUT must be positive")
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session idle timeout and sweep interval must be positive")
	}
	return nil
}
