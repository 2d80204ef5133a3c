package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
)

const appointmentSummarySelect = `
	SELECT ap.id, ap.patient_id, ap.doctor_id, ap.appointment_date, ap.purpose, ap.status,
		   ap.created_by, ap.created_at, ap.updated_by, ap.updated_at,
		   concat_ws(' ', p.first_name, p.last_name) AS patient_name,
		   concat_ws(' ', d.first_name, d.last_name) AS doctor_name
	FROM appointments ap
	JOIN patients p ON p.id = ap.patient_id
	JOIN doctors d ON d.id = ap.doctor_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date, purpose,
			status, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	_, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.Purpose,
		appointment.Status,
		appointment.CreatedBy,
		appointment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

const appointmentSelect = `
	SELECT id, patient_id, doctor_id, appointment_date, purpose, status,
		   created_by, created_at, updated_by, updated_at
	FROM appointments
	WHERE id = $1
`

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.get(ctx, appointmentSelect, id)
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.get(ctx, appointmentSelect+`FOR UPDATE`, id)
}

func (r *appointmentRepository) get(ctx context.Context, query string, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, r.conn(ctx), &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetSummary(ctx context.Context, id uuid.UUID) (*model.AppointmentSummary, error) {
	var summary model.AppointmentSummary
	if err := sqlx.GetContext(ctx, r.conn(ctx), &summary, appointmentSummarySelect+`WHERE ap.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &summary, nil
}

func (r *appointmentRepository) ListSummaries(ctx context.Context) ([]*model.AppointmentSummary, error) {
	summaries := []*model.AppointmentSummary{}
	query := appointmentSummarySelect + `ORDER BY ap.appointment_date`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return summaries, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) (int64, error) {
	query := `
		UPDATE appointments
		SET appointment_date = $1, status = $2, updated_by = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.AppointmentDate,
		appointment.Status,
		appointment.UpdatedBy,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update appointment: %w", err)
	}
	return rowsAffected(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete appointment: %w", err)
	}
	return rowsAffected(result)
}

func (r *appointmentRepository) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete patient appointments: %w", err)
	}
	return rowsAffected(result)
}

func (r *appointmentRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete doctor appointments: %w", err)
	}
	return rowsAffected(result)
}
