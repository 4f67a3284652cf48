package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"book-catalog/internal/infrastructure/database"
)

// envReader parses typed env values and keeps every parse failure.
type envReader struct {
	errs []error
}

func (r *envReader) integer(key, def string) int {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

func (r *envReader) duration(key, def string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

// LoadDatabaseConfig reads the pgxpool settings used when STORE_DRIVER=postgres.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	var r envReader

	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              r.integer("DB_PORT", "5432"),
		Username:          getEnv("DB_USER", "catalog"),
		Password:          getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "catalog"),
		MaxConns:          int32(r.integer("DB_MAX_CONNECTIONS", "25")),
		MinConns:          int32(r.integer("DB_MIN_CONNECTIONS", "5")),
		MaxConnLifetime:   r.duration("DB_MAX_CONN_LIFETIME", "5m"),
		MaxConnIdleTime:   r.duration("DB_MAX_CONN_IDLE_TIME", "1m"),
		HealthCheckPeriod: r.duration("DB_HEALTH_CHECK_PERIOD", "1m"),
		MaxRetries:        r.integer("DB_MAX_RETRIES", "5"),
		RetryDelay:        r.duration("DB_RETRY_DELAY", "1s"),
		ConnectTimeout:    r.duration("DB_CONNECT_TIMEOUT", "10s"),
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
