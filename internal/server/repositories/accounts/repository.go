// Package accounts persists models.Account records. Every backend enforces
// username uniqueness itself, so concurrent creates of the same name leave
// exactly one record and the loser gets common.ErrorAlreadyExists.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
)

type Repository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// FindByUsername and FindByID return common.ErrorNotFound on a miss.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	// Save inserts when ID is empty, assigning ID and timestamps, and
	// otherwise overwrites the stored record with the same ID.
	Save(ctx context.Context, a *models.Account) (*models.Account, error)
}
