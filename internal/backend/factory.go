package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"melodi/internal/amqp"
	"melodi/internal/events"
	"melodi/internal/storage"
	"melodi/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the configured store and, when a broker URL is set,
// an AMQP publisher. A broker that cannot be reached is logged and events
// are disabled; the store is still returned.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend, state will not survive a restart")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	var publisher events.Publisher = events.Nop{}
	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	return &Result{
		Store:     store,
		Publisher: publisher,
		Cleanup: func() error {
			var errs []error
			if client != nil {
				errs = append(errs, client.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}
