package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
)

const patientSelect = `
	SELECT p.id, p.account_id, a.username, p.first_name, p.last_name,
		   p.date_of_birth, p.email, p.phone_number, p.address,
		   p.created_by, p.created_at, p.updated_by, p.updated_at
	FROM patients p
	JOIN accounts a ON a.id = p.account_id
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, account_id, first_name, last_name, date_of_birth,
			email, phone_number, address, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}

	_, err := r.conn(ctx).ExecContext(ctx, query,
		patient.ID,
		patient.AccountID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Email,
		patient.PhoneNumber,
		patient.Address,
		patient.CreatedBy,
		patient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.conn(ctx), &patient, patientSelect+`WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	patients := []*model.Patient{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &patients, patientSelect+`ORDER BY p.created_at`); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) (int64, error) {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, date_of_birth = $3, email = $4,
			phone_number = $5, address = $6, updated_by = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Email,
		patient.PhoneNumber,
		patient.Address,
		patient.UpdatedBy,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update patient: %w", mapError(err))
	}
	return rowsAffected(result)
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete patient: %w", err)
	}
	return rowsAffected(result)
}

func (r *patientRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE lower(email) = lower($1))`

	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check patient email: %w", err)
	}
	return exists, nil
}
