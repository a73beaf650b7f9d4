package professional

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
)

type Service struct {
	clinics availability.ClinicLookup
	repo    repository.ProfessionalRepository
}

func NewService(clinics availability.ClinicLookup, repo repository.ProfessionalRepository) *Service {
	return &Service{clinics: clinics, repo: repo}
}

// CreateProfessional inherits any omitted working window field from the
// clinic's opening hours.
func (s *Service) CreateProfessional(ctx context.Context, clinicID uuid.UUID, req *model.ProfessionalRequest) (*model.Professional, error) {
	clinic, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	p := &model.Professional{
		ClinicID:             clinic.ID,
		AvailableFromWeekDay: clinic.AvailableFromWeekDay,
		AvailableToWeekDay:   clinic.AvailableToWeekDay,
		AvailableFromTime:    clinic.AvailableFromTime,
		AvailableToTime:      clinic.AvailableToTime,
	}
	apply(p, req)
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}
	return p, nil
}

func (s *Service) GetProfessional(ctx context.Context, clinicID, id uuid.UUID) (*model.Professional, error) {
	p, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return p, nil
}

func (s *Service) ListProfessionals(ctx context.Context, clinicID uuid.UUID) ([]*model.Professional, error) {
	professionals, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}

// UpdateProfessional keeps the stored window for omitted fields.
func (s *Service) UpdateProfessional(ctx context.Context, clinicID, id uuid.UUID, req *model.ProfessionalRequest) (*model.Professional, error) {
	current, err := s.GetProfessional(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	apply(current, req)
	if err := validate(current); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to update professional: %w", err)
	}
	return current, nil
}

// DeleteProfessional also removes the professional's appointments.
func (s *Service) DeleteProfessional(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, clinicID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrProfessionalNotFound
		}
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	return nil
}

// Single returns the clinic's only professional. It fails with
// ErrProfessionalNotFound when there is none and ErrInvalidInput when
// there are several.
func (s *Service) Single(ctx context.Context, clinicID uuid.UUID) (*model.Professional, error) {
	professionals, err := s.ListProfessionals(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	switch len(professionals) {
	case 0:
		return nil, model.ErrProfessionalNotFound
	case 1:
		return professionals[0], nil
	}
	return nil, model.NewInputError("professionalId", "is required when the clinic has more than one professional")
}

func apply(p *model.Professional, req *model.ProfessionalRequest) {
	p.Name = req.Name
	p.Speciality = req.Speciality
	p.AppointmentPriceInCents = req.AppointmentPriceInCents
	if req.AvailableFromWeekDay != nil {
		p.AvailableFromWeekDay = *req.AvailableFromWeekDay
	}
	if req.AvailableToWeekDay != nil {
		p.AvailableToWeekDay = *req.AvailableToWeekDay
	}
	if req.AvailableFromTime != "" {
		p.AvailableFromTime = req.AvailableFromTime
	}
	if req.AvailableToTime != "" {
		p.AvailableToTime = req.AvailableToTime
	}
}

func validate(p *model.Professional) error {
	fields := availability.ValidateWindow(
		p.AvailableFromWeekDay, p.AvailableToWeekDay,
		p.AvailableFromTime, p.AvailableToTime,
	)
	if fields == nil {
		fields = map[string]string{}
	}
	if p.Name == "" {
		fields["name"] = "is required"
	}
	if p.AppointmentPriceInCents < 0 {
		fields["appointmentPriceInCents"] = "must be zero or more"
	}
	if len(fields) > 0 {
		return &model.InputError{Fields: fields}
	}
	return nil
}
