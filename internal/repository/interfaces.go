package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Transactor runs fn inside one database transaction carried by ctx.
// Repository calls made with that ctx join the transaction. Nested calls
// reuse the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type RBACRepository interface {
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	ListAccountRoles(ctx context.Context, accountID uuid.UUID) ([]*model.Role, error)
	GrantRole(ctx context.Context, accountID, roleID uuid.UUID) error
	RevokeRole(ctx context.Context, accountID, roleID uuid.UUID) (int64, error)
	RevokeAllRoles(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// GetForUpdate is Get holding a row lock until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*model.AppointmentSummary, error)
	ListSummaries(ctx context.Context) ([]*model.AppointmentSummary, error)
	Update(ctx context.Context, appointment *model.Appointment) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}
