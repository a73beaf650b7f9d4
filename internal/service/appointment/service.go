package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	"github.com/jwalitptl/scheduling-api/internal/service/event"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

// SlotResolver resolves a professional's day for already loaded entities.
type SlotResolver interface {
	SlotsFor(ctx context.Context, clinic *model.Clinic, professional *model.Professional, date string, excludeID *uuid.UUID) ([]model.Slot, error)
}

type CreateInput struct {
	ClinicID       uuid.UUID
	ClientID       uuid.UUID
	ProfessionalID uuid.UUID
	// Date is YYYY-MM-DD and Time is HH:mm, both in the clinic's timezone.
	Date string
	Time string
	// PriceInCents defaults to the professional's price.
	PriceInCents *int64
}

type UpdateInput struct {
	AppointmentID  uuid.UUID
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	Date           string
	Time           string
	PriceInCents   *int64
}

type Service struct {
	clinics       availability.ClinicLookup
	clients       repository.ClientRepository
	professionals repository.ProfessionalRepository
	repo          repository.AppointmentRepository
	slots         SlotResolver
	events        event.Emitter
	clock         clock.Clock
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(
	clinics availability.ClinicLookup,
	clients repository.ClientRepository,
	professionals repository.ProfessionalRepository,
	repo repository.AppointmentRepository,
	slots SlotResolver,
	events event.Emitter,
	clk clock.Clock,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		clinics:       clinics,
		clients:       clients,
		professionals: professionals,
		repo:          repo,
		slots:         slots,
		events:        events,
		clock:         clk,
		metrics:       m,
		logger:        log,
	}
}

// Create books an open slot. A slot taken between the availability
// check and the insert is reported as ErrSlotUnavailable.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Appointment, error) {
	apt, err := s.create(ctx, in)
	s.observe("create", err)
	return apt, err
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.Appointment, error) {
	clinic, err := s.clinics.GetClinic(ctx, in.ClinicID)
	if err != nil {
		return nil, err
	}

	if _, err := s.clients.GetByID(ctx, clinic.ID, in.ClientID); err != nil {
		return nil, notFound(err, model.ErrClientNotFound, "client")
	}

	professional, err := s.professionals.GetByID(ctx, clinic.ID, in.ProfessionalID)
	if err != nil {
		return nil, notFound(err, model.ErrProfessionalNotFound, "professional")
	}

	at, err := s.reserve(ctx, clinic, professional, in.Date, in.Time, nil)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ClinicID:                clinic.ID,
		ClientID:                in.ClientID,
		ProfessionalID:          professional.ID,
		Date:                    at,
		AppointmentPriceInCents: price(in.PriceInCents, professional),
		Status:                  model.AppointmentStatusScheduled,
	}
	apt.CreatedAt = s.clock.Now()
	apt.UpdatedAt = apt.CreatedAt
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, writeError(err, "create")
	}

	s.emit(ctx, model.EventAppointmentCreated, apt)
	return apt, nil
}

// Update moves a scheduled appointment to another slot, professional or
// price. The appointment's own slot counts as free.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*model.Appointment, error) {
	apt, err := s.update(ctx, in)
	s.observe("update", err)
	return apt, err
}

func (s *Service) update(ctx context.Context, in UpdateInput) (*model.Appointment, error) {
	clinic, err := s.clinics.GetClinic(ctx, in.ClinicID)
	if err != nil {
		return nil, err
	}

	apt, err := s.repo.GetByID(ctx, clinic.ID, in.AppointmentID)
	if err != nil {
		return nil, notFound(err, model.ErrAppointmentNotFound, "appointment")
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", model.ErrInvalidTransition, apt.Status)
	}

	professional, err := s.professionals.GetByID(ctx, clinic.ID, in.ProfessionalID)
	if err != nil {
		return nil, notFound(err, model.ErrProfessionalNotFound, "professional")
	}

	at, err := s.reserve(ctx, clinic, professional, in.Date, in.Time, &apt.ID)
	if err != nil {
		return nil, err
	}

	apt.ProfessionalID = professional.ID
	apt.Date = at
	apt.AppointmentPriceInCents = price(in.PriceInCents, professional)
	apt.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, writeError(err, "update")
	}

	s.emit(ctx, model.EventAppointmentRescheduled, apt)
	return apt, nil
}

// UpdateStatus moves an appointment through its lifecycle. Completing a
// cancelled appointment is rejected; reactivating one re-claims its slot.
func (s *Service) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, model.NewInputError("status", "must be one of scheduled completed cancelled")
	}

	apt, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, notFound(err, model.ErrAppointmentNotFound, "appointment")
	}
	if apt.Status == status {
		return apt, nil
	}
	if apt.Status == model.AppointmentStatusCancelled && status == model.AppointmentStatusCompleted {
		return nil, fmt.Errorf("%w: cannot complete a cancelled appointment", model.ErrInvalidTransition)
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, clinicID, id, status, now); err != nil {
		err = writeError(err, "update status")
		s.observe("status", err)
		return nil, err
	}
	s.observe("status", nil)

	apt.Status = status
	apt.UpdatedAt = now
	s.emit(ctx, model.EventAppointmentStatusChanged, apt)
	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	return s.UpdateStatus(ctx, clinicID, id, model.AppointmentStatusCancelled)
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, notFound(err, model.ErrAppointmentNotFound, "appointment")
	}
	return apt, nil
}

// List filters by calendar dates interpreted in the clinic's timezone.
func (s *Service) List(ctx context.Context, clinicID uuid.UUID, filters model.AppointmentFilters) ([]*model.AppointmentDetails, int, error) {
	clinic, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, 0, err
	}

	items, total, err := s.repo.List(ctx, clinic.ID, filters, s.clinics.Location(clinic))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return items, total, nil
}

// Delete removes a cancelled appointment.
func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	apt, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return notFound(err, model.ErrAppointmentNotFound, "appointment")
	}
	if apt.Status != model.AppointmentStatusCancelled {
		return fmt.Errorf("%w: only cancelled appointments can be deleted", model.ErrInvalidTransition)
	}

	if err := s.repo.Delete(ctx, clinicID, id); err != nil {
		return notFound(err, model.ErrAppointmentNotFound, "appointment")
	}

	s.emit(ctx, model.EventAppointmentDeleted, apt)
	return nil
}

// PurgeCancelled deletes cancelled appointments untouched for longer
// than retention.
func (s *Service) PurgeCancelled(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-retention)
	n, err := s.repo.PurgeCancelledBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cancelled appointments: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AppointmentsPurged.Add(float64(n))
	}
	return n, nil
}

// reserve checks the requested slot and returns its instant in the
// clinic's timezone.
func (s *Service) reserve(ctx context.Context, clinic *model.Clinic, professional *model.Professional, date, clockTime string, excludeID *uuid.UUID) (time.Time, error) {
	loc := s.clinics.Location(clinic)
	if _, err := availability.ParseDate(date, loc); err != nil {
		return time.Time{}, model.NewInputError("date", "must be a date in YYYY-MM-DD format")
	}
	if !availability.ValidClock(clockTime) {
		return time.Time{}, model.NewInputError("time", "must be a time in HH:mm format")
	}
	at, err := availability.Compose(date, clockTime, loc)
	if err != nil {
		return time.Time{}, model.NewInputError("time", "must be a time in HH:mm format")
	}
	// Wall-clock times skipped by a daylight-saving jump cannot be booked.
	if at.In(loc).Format("15:04") != clockTime {
		return time.Time{}, model.ErrSlotUnavailable
	}

	slots, err := s.slots.SlotsFor(ctx, clinic, professional, date, excludeID)
	if err != nil {
		return time.Time{}, err
	}
	for _, slot := range slots {
		if slot.Label == clockTime {
			if !slot.Available {
				return time.Time{}, model.ErrSlotUnavailable
			}
			return at, nil
		}
	}
	return time.Time{}, model.ErrSlotUnavailable
}

func (s *Service) emit(ctx context.Context, eventType string, apt *model.Appointment) {
	if err := s.events.Emit(ctx, eventType, model.NewAppointmentEvent(apt)); err != nil {
		s.logger.Error(err, "Failed to emit appointment event",
			"event_type", eventType,
			"appointment_id", apt.ID.String())
	}
}

func (s *Service) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrSlotUnavailable):
		result = "conflict"
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidTransition):
		result = "rejected"
	case errors.Is(err, model.ErrClinicNotFound), errors.Is(err, model.ErrClientNotFound),
		errors.Is(err, model.ErrProfessionalNotFound), errors.Is(err, model.ErrAppointmentNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	s.metrics.BookingAttempts.WithLabelValues(operation, result).Inc()
}

func price(requested *int64, professional *model.Professional) int64 {
	if requested != nil {
		return *requested
	}
	return professional.AppointmentPriceInCents
}

func notFound(err, sentinel error, entity string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

func writeError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return model.ErrSlotUnavailable
	case errors.Is(err, repository.ErrNotFound):
		return model.ErrAppointmentNotFound
	}
	return fmt.Errorf("failed to %s appointment: %w", op, err)
}
