package repomanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/accounts"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")

type MongoRetry struct {
	Attempts int
	Interval time.Duration
	Timeout  time.Duration
}

var DefaultMongoRetry = MongoRetry{Attempts: 3, Interval: 2 * time.Second, Timeout: 10 * time.Second}

type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoRepositoryManager connects with retries, pings, and creates the
// unique username index.
func NewMongoRepositoryManager(ctx context.Context, url, database string, retry MongoRetry) (*MongoRepositoryManager, error) {
	client, err := connectMongo(ctx, url, retry)
	if err != nil {
		return nil, err
	}

	db := client.Database(database)
	if err := accounts.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoRepositoryManager{client: client, db: db}, nil
}

func connectMongo(ctx context.Context, url string, retry MongoRetry) (*mongo.Client, error) {
	var lastErr error
	for attempt := range max(retry.Attempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(retry.Interval):
			}
		}

		client, err := mongo.Connect(options.Client().
			ApplyURI(url).
			SetConnectTimeout(retry.Timeout).
			SetRetryWrites(true).
			SetRetryReads(true))
		if err != nil {
			lastErr = err
			continue
		}
		if err := client.Ping(ctx, nil); err != nil {
			lastErr = err
			_ = client.Disconnect(ctx)
			continue
		}
		return client, nil
	}
	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
