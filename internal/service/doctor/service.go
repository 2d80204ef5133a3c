package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/account"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

var ErrEmailTaken = errors.New("email already exists")

// Service manages doctor profiles together with their accounts. Each write
// runs in a single transaction.
type Service struct {
	tx           repository.Transactor
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	accounts     *account.Service
	now          func() time.Time
}

func NewService(tx repository.Transactor, doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository, accounts *account.Service) *Service {
	return &Service{
		tx:           tx,
		doctors:      doctors,
		appointments: appointments,
		accounts:     accounts,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest, actor string) (*model.Doctor, error) {
	email := model.TrimOptional(req.Email)

	var doctor *model.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return err
		}

		acc, err := s.accounts.Provision(ctx, req.Username, req.Password, model.RoleDoctor, req.Roles)
		if err != nil {
			return err
		}

		doctor = &model.Doctor{
			AccountID:         acc.ID,
			Username:          acc.Username,
			FirstName:         req.FirstName,
			LastName:          model.TrimOptional(req.LastName),
			Specialization:    req.Specialization,
			YearsOfExperience: req.YearsOfExperience,
			Email:             email,
		}
		doctor.ID = uuid.New()
		doctor.StampCreated(actor, s.now().UTC())

		if err := s.doctors.Create(ctx, doctor); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrEmailTaken.Error(), err)
			}
			return fmt.Errorf("failed to create doctor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("doctor_id", doctor.ID.String()).
		Str("account_id", doctor.AccountID.String()).
		Msg("Doctor created")
	return doctor, nil
}

// Update replaces the profile, renames the account, re-hashes a non-blank
// password and reconciles roles.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest, actor string) (int64, error) {
	var affected int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		email := model.TrimOptional(req.Email)
		if !model.SameOptional(doctor.Email, email) {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return err
			}
		}

		if err := s.accounts.UpdateCredentials(ctx, doctor.AccountID, req.Username, req.Password, model.RoleDoctor, req.Roles); err != nil {
			return err
		}

		doctor.Username = req.Username
		doctor.FirstName = req.FirstName
		doctor.LastName = model.TrimOptional(req.LastName)
		doctor.Specialization = req.Specialization
		doctor.YearsOfExperience = req.YearsOfExperience
		doctor.Email = email
		doctor.StampUpdated(actor, s.now().UTC())

		affected, err = s.doctors.Update(ctx, doctor)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrEmailTaken.Error(), err)
			}
			return fmt.Errorf("failed to update doctor: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().Str("doctor_id", id.String()).Msg("Doctor updated")
	return affected, nil
}

// Delete removes the doctor's appointments, the profile, the account's role
// grants and finally the account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var cancelled int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		cancelled, err = s.appointments.DeleteByDoctor(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete doctor appointments: %w", err)
		}

		if _, err := s.doctors.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete doctor: %w", err)
		}

		return s.accounts.Remove(ctx, doctor.AccountID)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("doctor_id", id.String()).
		Int64("appointments_deleted", cancelled).
		Msg("Doctor deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	return doctors, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email *string) error {
	if email == nil {
		return nil
	}
	exists, err := s.doctors.EmailExists(ctx, *email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return apperrors.NewConflict(ErrEmailTaken.Error(), nil)
	}
	return nil
}
