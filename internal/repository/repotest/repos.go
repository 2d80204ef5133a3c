package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type accountRepo struct{ s *Store }

func (r accountRepo) Create(_ context.Context, account *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("accounts.Create"); err != nil {
		return err
	}
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Username, account.Username) {
			return fmt.Errorf("accounts_username_key: %w", repository.ErrDuplicate)
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = now()
	stored := *account
	stored.Profile = model.ProfileRef{}
	r.s.accounts[account.ID] = stored
	return nil
}

func (r accountRepo) withProfile(a model.Account) (*model.Account, error) {
	var doctorID, patientID uuid.NullUUID
	for _, d := range r.s.doctors {
		if d.AccountID == a.ID {
			doctorID = uuid.NullUUID{UUID: d.ID, Valid: true}
		}
	}
	for _, p := range r.s.patients {
		if p.AccountID == a.ID {
			patientID = uuid.NullUUID{UUID: p.ID, Valid: true}
		}
	}
	profile, err := model.ResolveProfile(doctorID, patientID)
	if err != nil {
		return nil, err
	}
	a.Profile = profile
	return &a, nil
}

func (r accountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return r.withProfile(a)
}

func (r accountRepo) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Username, username) {
			return r.withProfile(a)
		}
	}
	return nil, notFound("account", username)
}

func (r accountRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r accountRepo) Update(_ context.Context, account *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("accounts.Update"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[account.ID]; !ok {
		return notFound("account", account.ID)
	}
	for id, a := range r.s.accounts {
		if id != account.ID && strings.EqualFold(a.Username, account.Username) {
			return fmt.Errorf("accounts_username_key: %w", repository.ErrDuplicate)
		}
	}
	t := now()
	account.UpdatedAt = &t
	stored := *account
	stored.Profile = model.ProfileRef{}
	r.s.accounts[account.ID] = stored
	return nil
}

func (r accountRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("accounts.Delete"); err != nil {
		return 0, err
	}
	if len(r.s.grants[id]) > 0 {
		return 0, restrict("account_roles")
	}
	for _, d := range r.s.doctors {
		if d.AccountID == id {
			return 0, restrict("doctors")
		}
	}
	for _, p := range r.s.patients {
		if p.AccountID == id {
			return 0, restrict("patients")
		}
	}
	if _, ok := r.s.accounts[id]; !ok {
		return 0, nil
	}
	delete(r.s.accounts, id)
	return 1, nil
}

type rbacRepo struct{ s *Store }

func (r rbacRepo) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if strings.EqualFold(role.Name, name) {
			out := role
			return &out, nil
		}
	}
	return nil, notFound("role", name)
}

func (r rbacRepo) ListRoles(context.Context) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Role{}
	for _, role := range r.s.roles {
		role := role
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r rbacRepo) ListAccountRoles(_ context.Context, accountID uuid.UUID) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Role{}
	for roleID := range r.s.grants[accountID] {
		role := r.s.roles[roleID]
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r rbacRepo) GrantRole(_ context.Context, accountID, roleID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("account_roles.Grant"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[accountID]; !ok {
		return restrict("accounts")
	}
	if r.s.grants[accountID] == nil {
		r.s.grants[accountID] = map[uuid.UUID]bool{}
	}
	r.s.grants[accountID][roleID] = true
	return nil
}

func (r rbacRepo) RevokeRole(_ context.Context, accountID, roleID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("account_roles.Revoke"); err != nil {
		return 0, err
	}
	if !r.s.grants[accountID][roleID] {
		return 0, nil
	}
	delete(r.s.grants[accountID], roleID)
	return 1, nil
}

func (r rbacRepo) RevokeAllRoles(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("account_roles.RevokeAll"); err != nil {
		return 0, err
	}
	n := int64(len(r.s.grants[accountID]))
	delete(r.s.grants, accountID)
	return n, nil
}

type doctorRepo struct{ s *Store }

func (r doctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("doctors.Create"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[doctor.AccountID]; !ok {
		return restrict("accounts")
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	r.s.doctors[doctor.ID] = *doctor
	return nil
}

func (r doctorRepo) get(id uuid.UUID) (*model.Doctor, bool) {
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, false
	}
	d.Username = r.s.accounts[d.AccountID].Username
	return &d, true
}

func (r doctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.get(id)
	if !ok {
		return nil, notFound("doctor", id)
	}
	return d, nil
}

func (r doctorRepo) List(context.Context) ([]*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Doctor{}
	for id := range r.s.doctors {
		d, _ := r.get(id)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r doctorRepo) Update(_ context.Context, doctor *model.Doctor) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("doctors.Update"); err != nil {
		return 0, err
	}
	existing, ok := r.s.doctors[doctor.ID]
	if !ok {
		return 0, nil
	}
	updated := *doctor
	updated.AccountID = existing.AccountID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	r.s.doctors[doctor.ID] = updated
	return 1, nil
}

func (r doctorRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("doctors.Delete"); err != nil {
		return 0, err
	}
	for _, a := range r.s.appointments {
		if a.DoctorID == id {
			return 0, restrict("appointments")
		}
	}
	if _, ok := r.s.doctors[id]; !ok {
		return 0, nil
	}
	delete(r.s.doctors, id)
	return 1, nil
}

func (r doctorRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.doctors {
		if d.Email != nil && strings.EqualFold(*d.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type patientRepo struct{ s *Store }

func (r patientRepo) Create(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("patients.Create"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[patient.AccountID]; !ok {
		return restrict("accounts")
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	r.s.patients[patient.ID] = *patient
	return nil
}

func (r patientRepo) get(id uuid.UUID) (*model.Patient, bool) {
	p, ok := r.s.patients[id]
	if !ok {
		return nil, false
	}
	p.Username = r.s.accounts[p.AccountID].Username
	return &p, true
}

func (r patientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.get(id)
	if !ok {
		return nil, notFound("patient", id)
	}
	return p, nil
}

func (r patientRepo) List(context.Context) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Patient{}
	for id := range r.s.patients {
		p, _ := r.get(id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r patientRepo) Update(_ context.Context, patient *model.Patient) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("patients.Update"); err != nil {
		return 0, err
	}
	existing, ok := r.s.patients[patient.ID]
	if !ok {
		return 0, nil
	}
	updated := *patient
	updated.AccountID = existing.AccountID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	r.s.patients[patient.ID] = updated
	return 1, nil
}

func (r patientRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("patients.Delete"); err != nil {
		return 0, err
	}
	for _, a := range r.s.appointments {
		if a.PatientID == id {
			return 0, restrict("appointments")
		}
	}
	if _, ok := r.s.patients[id]; !ok {
		return 0, nil
	}
	delete(r.s.patients, id)
	return 1, nil
}

func (r patientRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.Email != nil && strings.EqualFold(*p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("appointments.Create"); err != nil {
		return err
	}
	if _, ok := r.s.patients[appointment.PatientID]; !ok {
		return restrict("patients")
	}
	if _, ok := r.s.doctors[appointment.DoctorID]; !ok {
		return restrict("doctors")
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	r.s.appointments[appointment.ID] = *appointment
	return nil
}

func (r appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment", id)
	}
	return &a, nil
}

func (r appointmentRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	err := r.s.begin("appointments.GetForUpdate")
	r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r appointmentRepo) summary(a model.Appointment) *model.AppointmentSummary {
	p := r.s.patients[a.PatientID]
	d := r.s.doctors[a.DoctorID]
	return &model.AppointmentSummary{
		Appointment: a,
		PatientName: fullName(p.FirstName, p.LastName),
		DoctorName:  fullName(d.FirstName, d.LastName),
	}
}

func (r appointmentRepo) GetSummary(_ context.Context, id uuid.UUID) (*model.AppointmentSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment", id)
	}
	return r.summary(a), nil
}

func (r appointmentRepo) ListSummaries(context.Context) ([]*model.AppointmentSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.AppointmentSummary{}
	for _, a := range r.s.appointments {
		out = append(out, r.summary(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (r appointmentRepo) Update(_ context.Context, appointment *model.Appointment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("appointments.Update"); err != nil {
		return 0, err
	}
	existing, ok := r.s.appointments[appointment.ID]
	if !ok {
		return 0, nil
	}
	existing.AppointmentDate = appointment.AppointmentDate
	existing.Status = appointment.Status
	existing.UpdatedBy = appointment.UpdatedBy
	existing.UpdatedAt = appointment.UpdatedAt
	r.s.appointments[appointment.ID] = existing
	return 1, nil
}

func (r appointmentRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin("appointments.Delete"); err != nil {
		return 0, err
	}
	if _, ok := r.s.appointments[id]; !ok {
		return 0, nil
	}
	delete(r.s.appointments, id)
	return 1, nil
}

func (r appointmentRepo) deleteWhere(op string, match func(model.Appointment) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(op); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range r.s.appointments {
		if match(a) {
			delete(r.s.appointments, id)
			n++
		}
	}
	return n, nil
}

func (r appointmentRepo) DeleteByPatient(_ context.Context, patientID uuid.UUID) (int64, error) {
	return r.deleteWhere("appointments.DeleteByPatient", func(a model.Appointment) bool { return a.PatientID == patientID })
}

func (r appointmentRepo) DeleteByDoctor(_ context.Context, doctorID uuid.UUID) (int64, error) {
	return r.deleteWhere("appointments.DeleteByDoctor", func(a model.Appointment) bool { return a.DoctorID == doctorID })
}
