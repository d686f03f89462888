package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/dbx"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidTextRepr = "22P02"
	accountColumns    = "id, username, password_hash, encrypted_secret, created_at, updated_at"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE username = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Save(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.ID == "" {
		return r.insert(ctx, a)
	}
	return r.update(ctx, a)
}

func (r *PostgresRepository) insert(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (username, password_hash, encrypted_secret)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	out := a.Clone()
	err := r.db.QueryRowContext(ctx, query, a.Username, a.PasswordHash, a.EncryptedSecret).
		Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) update(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`UPDATE accounts SET username = $2, password_hash = $3, encrypted_secret = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`

	out := a.Clone()
	err := r.db.QueryRowContext(ctx, query, a.ID, a.Username, a.PasswordHash, a.EncryptedSecret).
		Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.EncryptedSecret, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return a, nil
}

// mapPgError folds driver errors into the common sentinels. A malformed
// UUID can never match a row, so it reads as not found.
func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
		case pgInvalidTextRepr:
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}
