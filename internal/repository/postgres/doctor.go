package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
)

const doctorSelect = `
	SELECT d.id, d.account_id, a.username, d.first_name, d.last_name,
		   d.specialization, d.years_of_experience, d.email,
		   d.created_by, d.created_at, d.updated_by, d.updated_at
	FROM doctors d
	JOIN accounts a ON a.id = d.account_id
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, account_id, first_name, last_name, specialization,
			years_of_experience, email, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}

	_, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.ID,
		doctor.AccountID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.YearsOfExperience,
		doctor.Email,
		doctor.CreatedBy,
		doctor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", mapError(err))
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.conn(ctx), &doctor, doctorSelect+`WHERE d.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", mapError(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &doctors, doctorSelect+`ORDER BY d.created_at`); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) (int64, error) {
	query := `
		UPDATE doctors
		SET first_name = $1, last_name = $2, specialization = $3,
			years_of_experience = $4, email = $5, updated_by = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.YearsOfExperience,
		doctor.Email,
		doctor.UpdatedBy,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update doctor: %w", mapError(err))
	}
	return rowsAffected(result)
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete doctor: %w", err)
	}
	return rowsAffected(result)
}

func (r *doctorRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM doctors WHERE lower(email) = lower($1))`

	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check doctor email: %w", err)
	}
	return exists, nil
}
