package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Page represents limit/offset pagination parameters
type Page struct {
	Limit  int `json:"limit" form:"limit" binding:"omitempty,gte=1,lte=200"`
	Offset int `json:"offset" form:"offset" binding:"omitempty,gte=0"`
}

// Normalize applies the default page size.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
