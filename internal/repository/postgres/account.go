package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const accountSelect = `
	SELECT a.id, a.username, a.password_hash, a.created_at, a.updated_at,
		   d.id AS doctor_id, p.id AS patient_id
	FROM accounts a
	LEFT JOIN doctors d ON d.account_id = a.id
	LEFT JOIN patients p ON p.account_id = a.id
`

type accountRow struct {
	model.Account
	DoctorID  uuid.NullUUID `db:"doctor_id"`
	PatientID uuid.NullUUID `db:"patient_id"`
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now().UTC()

	_, err := r.conn(ctx).ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", mapError(err))
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.getOne(ctx, accountSelect+`WHERE a.id = $1`, id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.getOne(ctx, accountSelect+`WHERE lower(a.username) = lower($1)`, username)
}

func (r *accountRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, r.conn(ctx), &row, query, arg); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", mapError(err))
	}

	profile, err := model.ResolveProfile(row.DoctorID, row.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid account %s: %w", row.ID, err)
	}

	account := row.Account
	account.Profile = profile
	return &account, nil
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(username) = lower($1))`

	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET username = $1, password_hash = $2, updated_at = $3
		WHERE id = $4
	`
	now := time.Now().UTC()
	account.UpdatedAt = &now

	result, err := r.conn(ctx).ExecContext(ctx, query,
		account.Username,
		account.PasswordHash,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", mapError(err))
	}

	rows, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", account.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	return rowsAffected(result)
}
