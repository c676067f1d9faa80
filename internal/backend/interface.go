package backend

import (
	"context"

	"melodi/internal/events"
	"melodi/internal/storage"
)

// CleanupFunc releases the resources behind a Result.
type CleanupFunc func() error

// Result is a ready storage backend plus the event publisher to use with it.
type Result struct {
	Store     storage.Store
	Publisher events.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional event publishing
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
