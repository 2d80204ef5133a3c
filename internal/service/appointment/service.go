package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type Service struct {
	tx       repository.Transactor
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	now      func() time.Time
}

func NewService(tx repository.Transactor, repo repository.AppointmentRepository,
	patients repository.PatientRepository, doctors repository.DoctorRepository) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		now:      time.Now,
	}
}

// Create books an appointment. The status is always Scheduled regardless of
// what the caller asked for.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, actor string) (uuid.UUID, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, apperrors.NewNotFound("patient", err)
		}
		return uuid.Nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, apperrors.NewNotFound("doctor", err)
		}
		return uuid.Nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	apt := &model.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		Purpose:         req.Purpose,
		Status:          model.AppointmentStatusScheduled,
	}
	apt.ID = uuid.New()
	apt.StampCreated(actor, s.now().UTC())

	if err := s.repo.Create(ctx, apt); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("appointment_id", apt.ID.String()).
		Str("doctor_id", apt.DoctorID.String()).
		Time("appointment_date", apt.AppointmentDate).
		Msg("Appointment created")

	return apt.ID, nil
}

// Patch applies the supplied status and date and stamps the change. A blank
// status counts as not supplied. Any status may follow any other; leaving
// Completed or Cancelled is logged. The row stays locked between the read and
// the write so concurrent patches do not undo each other.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, req *model.PatchAppointmentRequest, actor string) (int64, error) {
	status := req.Status
	if status != nil && strings.TrimSpace(string(*status)) == "" {
		status = nil
	}
	if status != nil && !status.Valid() {
		return 0, apperrors.NewValidation(fmt.Sprintf("invalid status %q", *status), nil)
	}

	var affected int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		apt, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("appointment", err)
			}
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		if status != nil {
			if apt.Status.Terminal() && *status != apt.Status {
				zerolog.Ctx(ctx).Warn().
					Str("appointment_id", id.String()).
					Str("from", string(apt.Status)).
					Str("to", string(*status)).
					Str("actor", model.ActorOrSystem(actor)).
					Msg("Appointment status override")
			}
			apt.Status = *status
		}
		if req.AppointmentDate != nil {
			apt.AppointmentDate = *req.AppointmentDate
		}
		apt.StampUpdated(actor, s.now().UTC())

		affected, err = s.repo.Update(ctx, apt)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		if affected == 0 {
			return apperrors.NewNotFound("appointment", repository.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete appointment: %w", err)
	}
	if affected == 0 {
		return 0, apperrors.NewNotFound("appointment", repository.ErrNotFound)
	}

	zerolog.Ctx(ctx).Info().Str("appointment_id", id.String()).Msg("Appointment deleted")
	return affected, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentSummary, error) {
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return summary, nil
}

func (s *Service) List(ctx context.Context) ([]*model.AppointmentSummary, error) {
	summaries, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	if summaries == nil {
		summaries = []*model.AppointmentSummary{}
	}
	return summaries, nil
}
