package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

type Service struct {
	repo repository.ClientRepository
}

func NewService(repo repository.ClientRepository) *Service {
	return &Service{repo: repo}
}

// CreateClient registers an active client. Email and phone are unique
// within the clinic.
func (s *Service) CreateClient(ctx context.Context, clinicID uuid.UUID, req *model.ClientRequest) (*model.Client, error) {
	c := &model.Client{ClinicID: clinicID, Status: model.ClientStatusActive}
	apply(c, req)

	if err := s.ensureUniqueContact(ctx, c, nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapWriteError(err, model.ErrClinicNotFound, "create")
	}
	return c, nil
}

func (s *Service) GetClient(ctx context.Context, clinicID, id uuid.UUID) (*model.Client, error) {
	c, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

func (s *Service) ListClients(ctx context.Context, clinicID uuid.UUID, filters model.ClientFilters) ([]*model.Client, int, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	filters.Phone = strings.TrimSpace(filters.Phone)
	clients, total, err := s.repo.List(ctx, clinicID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// FindByPhone returns every client of the clinic with that exact phone.
func (s *Service) FindByPhone(ctx context.Context, clinicID uuid.UUID, phone string) ([]*model.Client, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, model.NewInputError("phone", "is required")
	}
	clients, _, err := s.ListClients(ctx, clinicID, model.ClientFilters{Phone: phone})
	return clients, err
}

func (s *Service) UpdateClient(ctx context.Context, clinicID, id uuid.UUID, req *model.ClientRequest) (*model.Client, error) {
	current, err := s.GetClient(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	apply(current, req)
	if err := s.ensureUniqueContact(ctx, current, &current.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, mapWriteError(err, model.ErrClientNotFound, "update")
	}
	return current, nil
}

func (s *Service) SetStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ClientStatus) (*model.Client, error) {
	if status != model.ClientStatusActive && status != model.ClientStatusInactive {
		return nil, model.NewInputError("status", "must be one of active inactive")
	}

	if err := s.repo.UpdateStatus(ctx, clinicID, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client status: %w", err)
	}
	return s.GetClient(ctx, clinicID, id)
}

// DeleteClient also removes the client's appointments.
func (s *Service) DeleteClient(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, clinicID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *Service) ensureUniqueContact(ctx context.Context, c *model.Client, excludeID *uuid.UUID) error {
	exists, err := s.repo.ExistsByContact(ctx, c.ClinicID, c.Email, c.Phone, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check client contact: %w", err)
	}
	if exists {
		return model.ErrClientConflict
	}
	return nil
}

func apply(c *model.Client, req *model.ClientRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Phone = strings.TrimSpace(req.Phone)
	c.Sex = req.Sex
}

func mapWriteError(err, notFound error, op string) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return model.ErrClientConflict
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	}
	return fmt.Errorf("failed to %s client: %w", op, err)
}
