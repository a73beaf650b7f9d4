package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

// ClinicLookup resolves a clinic, usually through a cache.
type ClinicLookup interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	Location(clinic *model.Clinic) *time.Location
}

// Query asks for one professional's slots on one calendar day.
type Query struct {
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	// Date is YYYY-MM-DD in the clinic's timezone.
	Date                 string
	ExcludeAppointmentID *uuid.UUID
}

type Service struct {
	clinics       ClinicLookup
	professionals repository.ProfessionalRepository
	appointments  repository.AppointmentRepository
	clock         clock.Clock
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(
	clinics ClinicLookup,
	professionals repository.ProfessionalRepository,
	appointments repository.AppointmentRepository,
	clk clock.Clock,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		clinics:       clinics,
		professionals: professionals,
		appointments:  appointments,
		clock:         clk,
		metrics:       m,
		logger:        log,
	}
}

// Resolve lists every grid slot of the professional's day with its
// availability. Outside the working weekdays the list is empty.
func (s *Service) Resolve(ctx context.Context, q Query) ([]model.Slot, error) {
	clinic, err := s.clinics.GetClinic(ctx, q.ClinicID)
	if err != nil {
		s.observe("not_found")
		return nil, err
	}

	professional, err := s.professionals.GetByID(ctx, q.ClinicID, q.ProfessionalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.observe("not_found")
			return nil, model.ErrProfessionalNotFound
		}
		s.observe("error")
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}

	slots, err := s.SlotsFor(ctx, clinic, professional, q.Date, q.ExcludeAppointmentID)
	if err != nil {
		s.observe("error")
		return nil, err
	}
	s.observe("ok")
	return slots, nil
}

// SlotsFor resolves slots for already loaded entities. The professional
// must belong to the clinic.
func (s *Service) SlotsFor(ctx context.Context, clinic *model.Clinic, professional *model.Professional, date string, excludeID *uuid.UUID) ([]model.Slot, error) {
	if professional.ClinicID != clinic.ID {
		return nil, model.ErrProfessionalNotFound
	}

	loc := s.clinics.Location(clinic)
	day, err := ParseDate(date, loc)
	if err != nil {
		return nil, model.NewInputError("date", "must be a date in YYYY-MM-DD format")
	}

	slots := []model.Slot{}
	if !IsWorkingDay(day, professional.AvailableFromWeekDay, professional.AvailableToWeekDay) {
		return slots, nil
	}

	values := GenerateSlots(professional.AvailableFromTime, professional.AvailableToTime)
	if len(values) == 0 {
		return slots, nil
	}

	booked, err := s.appointments.BookedTimes(ctx, clinic.ID, professional.ID, day, loc, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read booked times: %w", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	for _, v := range values {
		if !Exists(date, Label(v), loc) {
			continue
		}
		_, isTaken := taken[v]
		slots = append(slots, model.Slot{Value: v, Label: Label(v), Available: !isTaken})
	}
	return slots, nil
}

// AvailableTimes is the advisory form of Resolve: failures are logged and
// reported as no slots.
func (s *Service) AvailableTimes(ctx context.Context, q Query) []model.Slot {
	slots, err := s.Resolve(ctx, q)
	if err != nil {
		s.logger.Warn("Availability lookup failed",
			"clinic_id", q.ClinicID.String(),
			"professional_id", q.ProfessionalID.String(),
			"date", q.Date,
			"error", err.Error())
		return []model.Slot{}
	}
	return slots
}

// Today returns the current calendar date and instant in loc.
func (s *Service) Today(loc *time.Location) (string, time.Time) {
	now := s.clock.Now().In(loc)
	return now.Format(dateLayout), now
}

// DropElapsed removes slots that already started when date is today in loc.
func DropElapsed(slots []model.Slot, date string, now time.Time, loc *time.Location) []model.Slot {
	local := now.In(loc)
	if date != local.Format(dateLayout) {
		return slots
	}

	current := local.Format(clockSecondsLayout)
	kept := make([]model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Value > current {
			kept = append(kept, slot)
		}
	}
	return kept
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityLookups.WithLabelValues(result).Inc()
	}
}
