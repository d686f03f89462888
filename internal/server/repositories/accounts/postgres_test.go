package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qExists  = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\)$`
	qByName  = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*encrypted_secret,\s*created_at,\s*updated_at\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1$`
	qByID    = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*encrypted_secret,\s*created_at,\s*updated_at\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`
	qInsert  = `(?s)^INSERT\s+INTO\s+accounts\s*\(username,\s*password_hash,\s*encrypted_secret\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`
	qUpdate  = `(?s)^UPDATE\s+accounts\s+SET\s+username\s*=\s*\$2,\s*password_hash\s*=\s*\$3,\s*encrypted_secret\s*=\s*\$4,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+created_at,\s*updated_at$`
	testUUID = "7b0c6f1e-2f5e-4d5b-9c57-3a1f5f0d9e11"
)

var accountCols = []string{"id", "username", "password_hash", "encrypted_secret", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestExistsByUsername(t *testing.T) {
	for _, want := range []bool{true, false} {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qExists).WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := repo.ExistsByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestExistsByUsername_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qExists).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.ExistsByUsername(context.Background(), "alice")
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(qByName).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(testUUID, "alice", "$2a$hash", []byte("ct"), now, now))

	got, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.Account{
		ID:              testUUID,
		Username:        "alice",
		PasswordHash:    "$2a$hash",
		EncryptedSecret: []byte("ct"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, got)
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qByName).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID_InvalidUUIDIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qByID).WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qByID).WithArgs(testUUID).WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByID(context.Background(), testUUID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error")
}

func TestSave_InsertAssignsID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery(qInsert).WithArgs("alice", "hash", []byte("ct")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testUUID, now, now))

	in := &models.Account{Username: "alice", PasswordHash: "hash", EncryptedSecret: []byte("ct")}
	got, err := repo.Save(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, testUUID, got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Empty(t, in.ID, "input must not be mutated")
}

func TestSave_InsertDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qInsert).WithArgs("alice", "hash", []byte("ct")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"})

	_, err := repo.Save(context.Background(), &models.Account{Username: "alice", PasswordHash: "hash", EncryptedSecret: []byte("ct")})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSave_Update(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(qUpdate).WithArgs(testUUID, "alice", "hash", []byte("ct2")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated))

	got, err := repo.Save(context.Background(), &models.Account{
		ID: testUUID, Username: "alice", PasswordHash: "hash", EncryptedSecret: []byte("ct2"),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ct2"), got.EncryptedSecret)
	assert.Equal(t, updated, got.UpdatedAt)
}

func TestSave_UpdateMissing(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qUpdate).WithArgs(testUUID, "alice", "hash", []byte("ct")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Save(context.Background(), &models.Account{
		ID: testUUID, Username: "alice", PasswordHash: "hash", EncryptedSecret: []byte("ct"),
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
