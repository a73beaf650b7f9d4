package model

import (
	"time"

	"github.com/lib/pq"
)

type Clinic struct {
	Base
	Name                 string         `db:"name" json:"name"`
	Email                string         `db:"email" json:"email"`
	Phone                string         `db:"phone" json:"phone"`
	Address              string         `db:"address" json:"address"`
	Timezone             string         `db:"timezone" json:"timezone"`
	AvailableFromWeekDay int            `db:"available_from_week_day" json:"availableFromWeekDay"`
	AvailableToWeekDay   int            `db:"available_to_week_day" json:"availableToWeekDay"`
	AvailableFromTime    string         `db:"available_from_time" json:"availableFromTime"`
	AvailableToTime      string         `db:"available_to_time" json:"availableToTime"`
	InsurancePlans       pq.StringArray `db:"insurance_plans" json:"insurancePlans"`
	PaymentMethods       pq.StringArray `db:"payment_methods" json:"paymentMethods"`
}

type CreateClinicRequest struct {
	Name                 string   `json:"name" binding:"required,max=255"`
	Email                string   `json:"email" binding:"omitempty,email"`
	Phone                string   `json:"phone" binding:"omitempty,max=32"`
	Address              string   `json:"address" binding:"omitempty,max=500"`
	Timezone             string   `json:"timezone" binding:"omitempty,timezone"`
	AvailableFromWeekDay *int     `json:"availableFromWeekDay" binding:"omitempty,gte=0,lte=6"`
	AvailableToWeekDay   *int     `json:"availableToWeekDay" binding:"omitempty,gte=0,lte=6"`
	AvailableFromTime    string   `json:"availableFromTime" binding:"omitempty,clockseconds"`
	AvailableToTime      string   `json:"availableToTime" binding:"omitempty,clockseconds"`
	InsurancePlans       []string `json:"insurancePlans" binding:"omitempty,dive,max=100"`
	PaymentMethods       []string `json:"paymentMethods" binding:"omitempty,dive,max=100"`
}

type UpdateClinicRequest = CreateClinicRequest

// Location loads the clinic timezone, or fallback when it is unset or unknown.
func (c *Clinic) Location(fallback *time.Location) *time.Location {
	if c.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
