package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "Scheduled"
	AppointmentStatusRescheduled AppointmentStatus = "Re-Schedule"
	AppointmentStatusCompleted   AppointmentStatus = "Completed"
	AppointmentStatusCancelled   AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusRescheduled,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status normally ends the appointment.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Purpose         *string           `db:"purpose" json:"purpose,omitempty"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Audit
}

// AppointmentSummary is an appointment with the display names of both parties.
type AppointmentSummary struct {
	Appointment
	PatientName string `db:"patient_name" json:"patient_name"`
	DoctorName  string `db:"doctor_name" json:"doctor_name"`
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required,future"`
	Purpose         *string   `json:"purpose" binding:"omitempty,max=200"`
}

type PatchAppointmentRequest struct {
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof_or_blank=Scheduled Re-Schedule Completed Cancelled"`
	AppointmentDate *time.Time         `json:"appointment_date" binding:"omitempty,future"`
}
