package repomanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectMongo_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectMongo(ctx, "mongodb://127.0.0.1:1", MongoRetry{
		Attempts: 3,
		Interval: time.Hour,
		Timeout:  50 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrFailedToConnectToMongo)
}

func TestConnectMongo_BadURL(t *testing.T) {
	_, err := connectMongo(context.Background(), "not-a-mongo-url", MongoRetry{Attempts: 1})
	assert.ErrorIs(t, err, ErrFailedToConnectToMongo)
}
