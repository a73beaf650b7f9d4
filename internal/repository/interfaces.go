package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
)

var (
	// ErrNotFound is returned when no row matches, including rows that
	// exist under another clinic.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("record conflicts with an existing one")
)

// All repository interfaces in one file
type (
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
	}

	ProfessionalRepository interface {
		Create(ctx context.Context, professional *model.Professional) error
		GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Professional, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Professional, error)
		Update(ctx context.Context, professional *model.Professional) error
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
	}

	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Client, error)
		List(ctx context.Context, clinicID uuid.UUID, filters model.ClientFilters) ([]*model.Client, int, error)
		Update(ctx context.Context, client *model.Client) error
		UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ClientStatus) error
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
		// ExistsByContact reports whether another client of the clinic
		// already uses email or phone.
		ExistsByContact(ctx context.Context, clinicID uuid.UUID, email, phone string, excludeID *uuid.UUID) (bool, error)
	}

	AppointmentRepository interface {
		// Create and Update persist the caller's CreatedAt/UpdatedAt, falling
		// back to the current time when they are zero.
		Create(ctx context.Context, appointment *model.Appointment) error
		GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, clinicID uuid.UUID, filters model.AppointmentFilters, loc *time.Location) ([]*model.AppointmentDetails, int, error)
		// Update rewrites professional, date and price.
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.AppointmentStatus, at time.Time) error
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
		// BookedTimes returns the local HH:mm:ss of every non-cancelled
		// appointment of the professional on day in loc.
		BookedTimes(ctx context.Context, clinicID, professionalID uuid.UUID, day time.Time, loc *time.Location, excludeID *uuid.UUID) ([]string, error)
		PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending leases up to limit due events so concurrent
		// processors skip them until the lease expires.
		ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed schedules a retry at retryAt, or parks the event as
		// failed when retryAt is nil.
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
