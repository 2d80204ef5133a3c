package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/repository"
)

type accountRepository struct {
	BaseRepository
}

type rbacRepository struct {
	BaseRepository
}

type doctorRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

func NewTransactor(db *sqlx.DB) repository.Transactor {
	return &BaseRepository{db: db}
}

func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &accountRepository{NewBaseRepository(db)}
}

func NewRBACRepository(db *sqlx.DB) repository.RBACRepository {
	return &rbacRepository{NewBaseRepository(db)}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}
