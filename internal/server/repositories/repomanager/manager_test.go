package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/logging"
	"github.com/dmitrijs2005/totpkeeper/internal/server/config"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, &config.Config{StorageBackend: config.BackendMemory}, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Ping(ctx))

	repo := m.Accounts()
	saved, err := repo.Save(ctx, &models.Account{Username: "alice", PasswordHash: "h", EncryptedSecret: []byte{1}})
	require.NoError(t, err)

	got, err := m.Accounts().FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username, "Accounts must hand out the same store")

	_, err = repo.Save(ctx, &models.Account{Username: "alice", PasswordHash: "h", EncryptedSecret: []byte{1}})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	assert.NoError(t, m.Close(ctx))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageBackend: "sqlite"}, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage backend "sqlite"`)
}
