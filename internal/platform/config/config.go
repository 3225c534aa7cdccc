package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv keeps main lean.
type Server struct {
	Addr           string
	OwnerPrincipal string
	JWTSigningKey  string

	// Optional audit fan-out sinks; empty means disabled.
	RedisURL     string
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string

	// AuditBuffer > 0 switches the audit publisher to async mode.
	AuditBuffer int

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("VOUCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	owner := os.Getenv("VOUCH_OWNER_PRINCIPAL")
	if owner == "" {
		owner = "0xowner"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("VOUCH_KAFKA_TOPIC")
	if topic == "" {
		topic = "vouch.audit"
	}

	var brokers []string
	if raw := os.Getenv("VOUCH_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	buffer := 0
	if raw := os.Getenv("VOUCH_AUDIT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			buffer = n
		}
	}

	return Server{
		Addr:            addr,
		OwnerPrincipal:  owner,
		JWTSigningKey:   jwtSigningKey,
		RedisURL:        os.Getenv("VOUCH_REDIS_URL"),
		PostgresDSN:     os.Getenv("VOUCH_POSTGRES_DSN"),
		KafkaBrokers:    brokers,
		KafkaTopic:      topic,
		AuditBuffer:     buffer,
		ShutdownTimeout: 10 * time.Second,
	}
}
