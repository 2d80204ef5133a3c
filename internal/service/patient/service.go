package patient

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

type Service struct {
	tx           repository.Transactor
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	accounts     *account.Service
	now          func() time.Time
}

func NewService(tx repository.Transactor, patients repository.PatientRepository,
	appointments repository.AppointmentRepository, accounts *account.Service) *Service {
	return &Service{
		tx:           tx,
		patients:     patients,
		appointments: appointments,
		accounts:     accounts,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest, actor string) (*model.Patient, error) {
	email := model.TrimOptional(req.Email)

	var patient *model.Patient
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return err
		}

		acc, err := s.accounts.Provision(ctx, req.Username, req.Password, model.RolePatient, req.Roles)
		if err != nil {
			return err
		}

		patient = &model.Patient{
			AccountID:   acc.ID,
			Username:    acc.Username,
			FirstName:   req.FirstName,
			LastName:    model.TrimOptional(req.LastName),
			DateOfBirth: req.DateOfBirth,
			Email:       email,
			PhoneNumber: req.PhoneNumber,
			Address:     model.TrimOptional(req.Address),
		}
		patient.ID = uuid.New()
		patient.StampCreated(actor, s.now().UTC())

		if err := s.patients.Create(ctx, patient); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrEmailTaken.Error(), err)
			}
			return fmt.Errorf("failed to create patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("patient_id", patient.ID.String()).
		Str("account_id", patient.AccountID.String()).
		Msg("Patient created")
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actor string) (int64, error) {
	var affected int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		patient, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		email := model.TrimOptional(req.Email)
		if !model.SameOptional(patient.Email, email) {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return err
			}
		}

		if err := s.accounts.UpdateCredentials(ctx, patient.AccountID, req.Username, req.Password, model.RolePatient, req.Roles); err != nil {
			return err
		}

		patient.Username = req.Username
		patient.FirstName = req.FirstName
		patient.LastName = model.TrimOptional(req.LastName)
		patient.DateOfBirth = req.DateOfBirth
		patient.Email = email
		patient.PhoneNumber = req.PhoneNumber
		patient.Address = model.TrimOptional(req.Address)
		patient.StampUpdated(actor, s.now().UTC())

		affected, err = s.patients.Update(ctx, patient)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict(ErrEmailTaken.Error(), err)
			}
			return fmt.Errorf("failed to update patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().Str("patient_id", id.String()).Msg("Patient updated")
	return affected, nil
}

// Delete removes the patient's appointments, the profile, the account's
// role grants and finally the account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var cancelled int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		patient, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		cancelled, err = s.appointments.DeleteByPatient(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete patient appointments: %w", err)
		}

		if _, err := s.patients.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete patient: %w", err)
		}

		return s.accounts.Remove(ctx, patient.AccountID)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("patient_id", id.String()).
		Int64("appointments_deleted", cancelled).
		Msg("Patient deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	return patients, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email *string) error {
	if email == nil {
		return nil
	}
	exists, err := s.patients.EmailExists(ctx, *email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return apperrors.NewConflict(ErrEmailTaken.Error(), nil)
	}
	return nil
}
