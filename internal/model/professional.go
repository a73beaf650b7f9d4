package model

import "github.com/google/uuid"

type Professional struct {
	Base
	ClinicID                uuid.UUID `db:"clinic_id" json:"clinicId"`
	Name                    string    `db:"name" json:"name"`
	Speciality              string    `db:"speciality" json:"speciality"`
	AvailableFromWeekDay    int       `db:"available_from_week_day" json:"availableFromWeekDay"`
	AvailableToWeekDay      int       `db:"available_to_week_day" json:"availableToWeekDay"`
	AvailableFromTime       string    `db:"available_from_time" json:"availableFromTime"`
	AvailableToTime         string    `db:"available_to_time" json:"availableToTime"`
	AppointmentPriceInCents int64     `db:"appointment_price_in_cents" json:"appointmentPriceInCents"`
}

// ProfessionalRequest is used for both create and update. Omitted window
// fields inherit the clinic's opening hours on create.
type ProfessionalRequest struct {
	Name                    string `json:"name" binding:"required,max=255"`
	Speciality              string `json:"speciality" binding:"omitempty,max=255"`
	AvailableFromWeekDay    *int   `json:"availableFromWeekDay" binding:"omitempty,gte=0,lte=6"`
	AvailableToWeekDay      *int   `json:"availableToWeekDay" binding:"omitempty,gte=0,lte=6"`
	AvailableFromTime       string `json:"availableFromTime" binding:"omitempty,clockseconds"`
	AvailableToTime         string `json:"availableToTime" binding:"omitempty,clockseconds"`
	AppointmentPriceInCents int64  `json:"appointmentPriceInCents" binding:"gte=0"`
}
