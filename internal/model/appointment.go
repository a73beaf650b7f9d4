package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	ClinicID                uuid.UUID         `db:"clinic_id" json:"clinicId"`
	ClientID                uuid.UUID         `db:"client_id" json:"clientId"`
	ProfessionalID          uuid.UUID         `db:"professional_id" json:"professionalId"`
	Date                    time.Time         `db:"date" json:"date"`
	AppointmentPriceInCents int64             `db:"appointment_price_in_cents" json:"appointmentPriceInCents"`
	Status                  AppointmentStatus `db:"status" json:"status"`
}

// AppointmentDetails is an appointment joined with display names.
type AppointmentDetails struct {
	Appointment
	ClientName       string `db:"client_name" json:"clientName"`
	ProfessionalName string `db:"professional_name" json:"professionalName"`
}

// AppointmentRequest is the booking payload. PatientID is accepted as an
// alias of ClientID by the integration API.
type AppointmentRequest struct {
	ClinicID                *uuid.UUID `json:"clinicId"`
	ClientID                *uuid.UUID `json:"clientId"`
	PatientID               *uuid.UUID `json:"patientId"`
	ProfessionalID          uuid.UUID  `json:"professionalId" binding:"required"`
	Date                    string     `json:"date" binding:"required,isodate"`
	Time                    string     `json:"time" binding:"required,clock"`
	AppointmentPriceInCents *int64     `json:"appointmentPriceInCents" binding:"omitempty,gte=0"`
}

// Client resolves clientId or its patientId alias.
func (r *AppointmentRequest) Client() (uuid.UUID, bool) {
	if r.ClientID != nil && *r.ClientID != uuid.Nil {
		return *r.ClientID, true
	}
	if r.PatientID != nil && *r.PatientID != uuid.Nil {
		return *r.PatientID, true
	}
	return uuid.Nil, false
}

type AppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled completed cancelled"`
}

type AppointmentFilters struct {
	Page
	ProfessionalID string            `form:"professionalId" binding:"omitempty,uuid"`
	ClientID       string            `form:"clientId" binding:"omitempty,uuid"`
	Status         AppointmentStatus `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	From           string            `form:"from" binding:"omitempty,isodate"`
	To             string            `form:"to" binding:"omitempty,isodate"`
}
