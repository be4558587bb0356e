package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr        string
	Environment string

	// SessionSigningKey is the HMAC key for session cookies.
	SessionSigningKey string
	SessionTTL        time.Duration
	RememberMeTTL     time.Duration
	TempSessionTTL    time.Duration

	// PostgresURL switches the stores from in-memory to Postgres when set.
	PostgresURL string
	// RedisURL switches the view cache from in-memory to Redis when set.
	RedisURL string
	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// ViewCacheTTL bounds staleness of the account→view read-through cache.
	ViewCacheTTL time.Duration
}

// IsProduction controls the Secure attribute on session cookies.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// RedisConfig holds connection tuning for the optional Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis derives a RedisConfig with defaults from the server config.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("SAHAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("SAHAY_ENV")
	if env == "" {
		env = "development"
	}

	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "sahay.audit"
	}

	return Server{
		Addr:              addr,
		Environment:       env,
		SessionSigningKey: signingKey,
		SessionTTL:        24 * time.Hour,
		RememberMeTTL:     30 * 24 * time.Hour,
		TempSessionTTL:    time.Hour,
		PostgresURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaBrokers:      brokers,
		AuditTopic:        topic,
		ViewCacheTTL:      5 * time.Second,
	}
}
