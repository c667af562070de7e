package backend

import (
	"context"

	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CleanupFunc releases the resources of a backend.
type CleanupFunc func() error

// BackendResult holds the opened store, the optional change publisher and
// the function that closes both.
type BackendResult struct {
	Store *storage.Store
	// Publisher is nil when change notifications are disabled.
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	AMQPURL      string
	AMQPExchange string
}

// BackendType names the relational store to use.
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

func (bt BackendType) storage() storage.Backend {
	if bt == PostgresBackend {
		return storage.Postgres
	}
	return storage.SQLite
}
