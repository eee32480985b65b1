package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration for the document
// authentication gateway.
type Server struct {
	Addr        string
	Environment string

	DatabaseURL string

	KafkaBrokers string

	AuthorityBaseURL string
	AuthorityAPIKey  string
	AuthorityTimeout time.Duration

	ReconcilerInterval  time.Duration
	ReconcilerBatchSize int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("DOCAUTH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("DOCAUTH_ENV")
	if environment == "" {
		environment = "development"
	}

	authorityTimeout := 10 * time.Second
	if raw := os.Getenv("AUTHORITY_TIMEOUT"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			authorityTimeout = duration
		}
	}

	reconcilerInterval := 30 * time.Second
	if raw := os.Getenv("RECONCILER_INTERVAL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			reconcilerInterval = duration
		}
	}

	reconcilerBatchSize := 100
	if raw := os.Getenv("RECONCILER_BATCH_SIZE"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			reconcilerBatchSize = size
		}
	}

	return Server{
		Addr:                addr,
		Environment:         environment,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		KafkaBrokers:        os.Getenv("KAFKA_BROKERS"),
		AuthorityBaseURL:    os.Getenv("AUTHORITY_BASE_URL"),
		AuthorityAPIKey:     os.Getenv("AUTHORITY_API_KEY"),
		AuthorityTimeout:    authorityTimeout,
		ReconcilerInterval:  reconcilerInterval,
		ReconcilerBatchSize: reconcilerBatchSize,
	}
}
