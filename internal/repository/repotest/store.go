// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests. Writes are copied in and reads
// copied out, transactions snapshot the whole store and foreign keys behave
// like the RESTRICT constraints of the postgres schema.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type txKey struct{}

// Store holds every table in memory.
type Store struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]model.Account
	roles        map[uuid.UUID]model.Role
	grants       map[uuid.UUID]map[uuid.UUID]bool
	doctors      map[uuid.UUID]model.Doctor
	patients     map[uuid.UUID]model.Patient
	appointments map[uuid.UUID]model.Appointment

	failures map[string]error
	calls    []string

	Commits   int
	Rollbacks int
}

// NewStore returns a store seeded with the built-in roles.
func NewStore() *Store {
	s := &Store{
		accounts:     map[uuid.UUID]model.Account{},
		roles:        map[uuid.UUID]model.Role{},
		grants:       map[uuid.UUID]map[uuid.UUID]bool{},
		doctors:      map[uuid.UUID]model.Doctor{},
		patients:     map[uuid.UUID]model.Patient{},
		appointments: map[uuid.UUID]model.Appointment{},
		failures:     map[string]error{},
	}
	for _, name := range []string{model.RoleAdmin, model.RoleDoctor, model.RolePatient} {
		s.AddRole(name)
	}
	return s
}

// AddRole inserts reference data.
func (s *Store) AddRole(name string) *model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	role := model.Role{Name: name}
	role.ID = uuid.New()
	s.roles[role.ID] = role
	return &role
}

// RemoveRole deletes reference data, for misconfiguration tests.
func (s *Store) RemoveRole(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, role := range s.roles {
		if strings.EqualFold(role.Name, name) {
			delete(s.roles, id)
		}
	}
}

// FailOn makes the named operation (e.g. "doctors.Create") return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Calls returns the write operations performed so far, in order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Counts reports the number of rows per table.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants := 0
	for _, g := range s.grants {
		grants += len(g)
	}
	return map[string]int{
		"accounts":      len(s.accounts),
		"account_roles": grants,
		"doctors":       len(s.doctors),
		"patients":      len(s.patients),
		"appointments":  len(s.appointments),
	}
}

// RoleNames lists the roles granted to an account, sorted.
func (s *Store) RoleNames(accountID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for roleID := range s.grants[accountID] {
		names = append(names, s.roles[roleID].Name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) begin(op string) error {
	s.calls = append(s.calls, op)
	return s.failures[op]
}

type snapshot struct {
	accounts     map[uuid.UUID]model.Account
	grants       map[uuid.UUID]map[uuid.UUID]bool
	doctors      map[uuid.UUID]model.Doctor
	patients     map[uuid.UUID]model.Patient
	appointments map[uuid.UUID]model.Appointment
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants := make(map[uuid.UUID]map[uuid.UUID]bool, len(s.grants))
	for k, v := range s.grants {
		grants[k] = copyMap(v)
	}
	return snapshot{
		accounts:     copyMap(s.accounts),
		grants:       grants,
		doctors:      copyMap(s.doctors),
		patients:     copyMap(s.patients),
		appointments: copyMap(s.appointments),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.grants = snap.grants
	s.doctors = snap.doctors
	s.patients = snap.patients
	s.appointments = snap.appointments
}

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}

func (s *Store) Transactor() repository.Transactor              { return s }
func (s *Store) Accounts() repository.AccountRepository         { return accountRepo{s} }
func (s *Store) RBAC() repository.RBACRepository                { return rbacRepo{s} }
func (s *Store) Doctors() repository.DoctorRepository           { return doctorRepo{s} }
func (s *Store) Patients() repository.PatientRepository         { return patientRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepo{s} }

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, repository.ErrNotFound)
}

func restrict(table string) error {
	return fmt.Errorf("violates foreign key constraint on %s", table)
}

func fullName(first string, last *string) string {
	if last == nil || *last == "" {
		return first
	}
	return first + " " + *last
}

func now() time.Time {
	return time.Now().UTC()
}

// SeedDoctor inserts an account and a doctor profile without roles.
func (s *Store) SeedDoctor(username, firstName, lastName string) *model.Doctor {
	ctx := context.Background()
	acc := &model.Account{Username: username, PasswordHash: "x"}
	if err := s.Accounts().Create(ctx, acc); err != nil {
		panic(err)
	}
	d := &model.Doctor{AccountID: acc.ID, FirstName: firstName, Specialization: "General"}
	if lastName != "" {
		d.LastName = &lastName
	}
	d.StampCreated("", now())
	if err := s.Doctors().Create(ctx, d); err != nil {
		panic(err)
	}
	d.Username = username
	return d
}

// SeedPatient inserts an account and a patient profile without roles.
func (s *Store) SeedPatient(username, firstName, lastName string) *model.Patient {
	ctx := context.Background()
	acc := &model.Account{Username: username, PasswordHash: "x"}
	if err := s.Accounts().Create(ctx, acc); err != nil {
		panic(err)
	}
	p := &model.Patient{
		AccountID:   acc.ID,
		FirstName:   firstName,
		DateOfBirth: model.NewDate(1990, time.May, 17),
		PhoneNumber: "5551234567",
	}
	if lastName != "" {
		p.LastName = &lastName
	}
	p.StampCreated("", now())
	if err := s.Patients().Create(ctx, p); err != nil {
		panic(err)
	}
	p.Username = username
	return p
}
