package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

var accountColumns = []string{"id", "username", "password_hash", "created_at", "updated_at", "doctor_id", "patient_id"}

func newAccount(username string) *model.Account {
	return &model.Account{Username: username, PasswordHash: "$2a$10$hash"}
}

func errNoRows() error { return sql.ErrNoRows }

func TestAccountCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(sqlmock.AnyArg(), "drsmith", "$2a$10$hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := newAccount("drsmith")
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO accounts`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_username_key"})

	err := repo.Create(context.Background(), newAccount("drsmith"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestAccountGetByUsernameResolvesProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	accountID := uuid.New()
	doctorID := uuid.New()
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM accounts a`).
		WithArgs("DrSmith").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(accountID.String(), "drsmith", "$2a$10$hash", created, nil, doctorID.String(), nil))

	account, err := repo.GetByUsername(context.Background(), "DrSmith")
	require.NoError(t, err)
	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, "drsmith", account.Username)
	assert.Equal(t, model.DoctorProfile(doctorID), account.Profile)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountGetRejectsDoubleProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM accounts a`).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(uuid.NewString(), "both", "hash", time.Now(), nil, uuid.NewString(), uuid.NewString()))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM accounts a`).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountUpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`UPDATE accounts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	account := newAccount("drsmith")
	account.ID = uuid.New()
	err := repo.Update(context.Background(), account)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountUsernameExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("drsmith").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UsernameExists(context.Background(), "drsmith")
	require.NoError(t, err)
	assert.True(t, exists)
}
