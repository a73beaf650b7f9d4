package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types written to the outbox.
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentRescheduled   = "appointment.rescheduled"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentDeleted       = "appointment.deleted"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
}

// AppointmentEvent is the payload of every appointment.* event.
type AppointmentEvent struct {
	AppointmentID  uuid.UUID         `json:"appointmentId"`
	ClinicID       uuid.UUID         `json:"clinicId"`
	ClientID       uuid.UUID         `json:"clientId"`
	ProfessionalID uuid.UUID         `json:"professionalId"`
	Date           time.Time         `json:"date"`
	Status         AppointmentStatus `json:"status"`
}

func NewAppointmentEvent(a *Appointment) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID:  a.ID,
		ClinicID:       a.ClinicID,
		ClientID:       a.ClientID,
		ProfessionalID: a.ProfessionalID,
		Date:           a.Date,
		Status:         a.Status,
	}
}
