// Package repomanager opens the configured storage backend and hands out
// the account repository bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/totpkeeper/internal/logging"
	"github.com/dmitrijs2005/totpkeeper/internal/server/config"
	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	Accounts() accounts.Repository
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New opens the backend selected by cfg.StorageBackend, running schema
// migrations or index creation as the backend requires.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (RepositoryManager, error) {
	log := logger.With("module", "repomanager", "backend", cfg.StorageBackend)

	var (
		m   RepositoryManager
		err error
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		m, err = NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.BackendMongo:
		m, err = NewMongoRepositoryManager(ctx, cfg.MongoURL, cfg.MongoDatabase, DefaultMongoRetry)
	case config.BackendS3:
		m, err = NewS3RepositoryManager(ctx, S3Settings{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	case config.BackendMemory:
		log.Warn(ctx, "memory backend selected, accounts are lost on restart")
		m = NewMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "storage backend ready")
	return m, nil
}
