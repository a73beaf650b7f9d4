package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
)

const (
	defaultFromWeekDay = 1
	defaultToWeekDay   = 5
	defaultFromTime    = "08:00:00"
	defaultToTime      = "18:00:00"
)

type Service struct {
	repo        repository.ClinicRepository
	cache       *cache.Cache
	defaultZone *time.Location
}

func NewService(repo repository.ClinicRepository, defaultZone *time.Location, ttl time.Duration) *Service {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &Service{
		repo:        repo,
		cache:       cache.New(ttl, 2*ttl),
		defaultZone: defaultZone,
	}
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		AvailableFromWeekDay: defaultFromWeekDay,
		AvailableToWeekDay:   defaultToWeekDay,
		AvailableFromTime:    defaultFromTime,
		AvailableToTime:      defaultToTime,
		Timezone:             s.defaultZone.String(),
	}
	apply(clinic, req)

	if err := validateClinic(clinic); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	s.cache.SetDefault(clinic.ID.String(), clinic)
	return clinic, nil
}

// GetClinic is served from cache when possible.
func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Clinic), nil
	}

	clinic, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	s.cache.SetDefault(id.String(), clinic)
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	current, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	apply(&updated, req)
	if err := validateClinic(&updated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cache.Delete(id.String())
			return nil, model.ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}

	s.cache.Delete(id.String())
	return &updated, nil
}

// Location returns the clinic's timezone or the configured default.
func (s *Service) Location(clinic *model.Clinic) *time.Location {
	return clinic.Location(s.defaultZone)
}

func apply(clinic *model.Clinic, req *model.CreateClinicRequest) {
	clinic.Name = req.Name
	clinic.Email = req.Email
	clinic.Phone = req.Phone
	clinic.Address = req.Address
	if req.Timezone != "" {
		clinic.Timezone = req.Timezone
	}
	if req.AvailableFromWeekDay != nil {
		clinic.AvailableFromWeekDay = *req.AvailableFromWeekDay
	}
	if req.AvailableToWeekDay != nil {
		clinic.AvailableToWeekDay = *req.AvailableToWeekDay
	}
	if req.AvailableFromTime != "" {
		clinic.AvailableFromTime = req.AvailableFromTime
	}
	if req.AvailableToTime != "" {
		clinic.AvailableToTime = req.AvailableToTime
	}
	if req.InsurancePlans != nil {
		clinic.InsurancePlans = req.InsurancePlans
	}
	if req.PaymentMethods != nil {
		clinic.PaymentMethods = req.PaymentMethods
	}
	if clinic.InsurancePlans == nil {
		clinic.InsurancePlans = []string{}
	}
	if clinic.PaymentMethods == nil {
		clinic.PaymentMethods = []string{}
	}
}

func validateClinic(clinic *model.Clinic) error {
	fields := availability.ValidateWindow(
		clinic.AvailableFromWeekDay, clinic.AvailableToWeekDay,
		clinic.AvailableFromTime, clinic.AvailableToTime,
	)
	if fields == nil {
		fields = map[string]string{}
	}
	if clinic.Name == "" {
		fields["name"] = "is required"
	}
	if _, err := time.LoadLocation(clinic.Timezone); err != nil {
		fields["timezone"] = "must be an IANA timezone"
	}
	if len(fields) > 0 {
		return &model.InputError{Fields: fields}
	}
	return nil
}
