// Package repotest provides in-memory repositories that follow the
// PostgreSQL schema's scoping and uniqueness rules.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

// Store backs every repository with maps guarded by one mutex.
type Store struct {
	mu            sync.Mutex
	clinics       map[uuid.UUID]model.Clinic
	professionals map[uuid.UUID]model.Professional
	clients       map[uuid.UUID]model.Client
	appointments  map[uuid.UUID]model.Appointment
	outbox        []model.OutboxEvent

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		clinics:       map[uuid.UUID]model.Clinic{},
		professionals: map[uuid.UUID]model.Professional{},
		clients:       map[uuid.UUID]model.Client{},
		appointments:  map[uuid.UUID]model.Appointment{},
	}
}

func (s *Store) Clinics() repository.ClinicRepository             { return clinicRepo{s} }
func (s *Store) Professionals() repository.ProfessionalRepository { return professionalRepo{s} }
func (s *Store) Clients() repository.ClientRepository             { return clientRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository   { return appointmentRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository              { return outboxRepo{s} }

// Events returns a copy of the outbox rows.
func (s *Store) Events() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEvent(nil), s.outbox...)
}

// Appointment returns a stored appointment regardless of clinic.
func (s *Store) Appointment(id uuid.UUID) (model.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	return a, ok
}

func stamp(b *model.Base) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}

type clinicRepo struct{ s *Store }

func (r clinicRepo) Create(_ context.Context, c *model.Clinic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	stamp(&c.Base)
	r.s.clinics[c.ID] = *c
	return nil
}

func (r clinicRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r clinicRepo) Update(_ context.Context, c *model.Clinic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.clinics[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.s.clinics[c.ID] = *c
	return nil
}

type professionalRepo struct{ s *Store }

func (r professionalRepo) Create(_ context.Context, p *model.Professional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.clinics[p.ClinicID]; !ok {
		return repository.ErrNotFound
	}
	stamp(&p.Base)
	r.s.professionals[p.ID] = *p
	return nil
}

func (r professionalRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*model.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.professionals[id]
	if !ok || p.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r professionalRepo) List(_ context.Context, clinicID uuid.UUID) ([]*model.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []*model.Professional{}
	for _, p := range r.s.professionals {
		if p.ClinicID == clinicID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r professionalRepo) Update(_ context.Context, p *model.Professional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cur, ok := r.s.professionals[p.ID]
	if !ok || cur.ClinicID != p.ClinicID {
		return repository.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now()
	r.s.professionals[p.ID] = *p
	return nil
}

func (r professionalRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	p, ok := r.s.professionals[id]
	if !ok || p.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	delete(r.s.professionals, id)
	for aid, a := range r.s.appointments {
		if a.ProfessionalID == id {
			delete(r.s.appointments, aid)
		}
	}
	return nil
}

type clientRepo struct{ s *Store }

func (r clientRepo) contactTaken(c *model.Client) bool {
	for _, other := range r.s.clients {
		if other.ID == c.ID || other.ClinicID != c.ClinicID {
			continue
		}
		if other.Email == c.Email || other.Phone == c.Phone {
			return true
		}
	}
	return false
}

func (r clientRepo) Create(_ context.Context, c *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.clinics[c.ClinicID]; !ok {
		return repository.ErrNotFound
	}
	if r.contactTaken(c) {
		return fmt.Errorf("%w: clients_clinic_contact", repository.ErrConflict)
	}
	if c.Status == "" {
		c.Status = model.ClientStatusActive
	}
	stamp(&c.Base)
	r.s.clients[c.ID] = *c
	return nil
}

func (r clientRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.clients[id]
	if !ok || c.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r clientRepo) List(_ context.Context, clinicID uuid.UUID, f model.ClientFilters) ([]*model.Client, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := []*model.Client{}
	for _, c := range r.s.clients {
		if c.ClinicID != clinicID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email+" "+c.Phone), search) {
			continue
		}
		if f.Phone != "" && c.Phone != f.Phone {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		c := c
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	page := f.Page.Normalize()
	total := len(matched)
	if page.Offset >= total {
		return []*model.Client{}, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return matched[page.Offset:end], total, nil
}

func (r clientRepo) Update(_ context.Context, c *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cur, ok := r.s.clients[c.ID]
	if !ok || cur.ClinicID != c.ClinicID {
		return repository.ErrNotFound
	}
	if r.contactTaken(c) {
		return fmt.Errorf("%w: clients_clinic_contact", repository.ErrConflict)
	}
	c.Status = cur.Status
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now()
	r.s.clients[c.ID] = *c
	return nil
}

func (r clientRepo) UpdateStatus(_ context.Context, clinicID, id uuid.UUID, status model.ClientStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	c, ok := r.s.clients[id]
	if !ok || c.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	r.s.clients[id] = c
	return nil
}

func (r clientRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	c, ok := r.s.clients[id]
	if !ok || c.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	delete(r.s.clients, id)
	for aid, a := range r.s.appointments {
		if a.ClientID == id {
			delete(r.s.appointments, aid)
		}
	}
	return nil
}

func (r clientRepo) ExistsByContact(_ context.Context, clinicID uuid.UUID, email, phone string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	candidate := &model.Client{ClinicID: clinicID, Email: email, Phone: phone}
	if excludeID != nil {
		candidate.ID = *excludeID
	}
	return r.contactTaken(candidate), nil
}
