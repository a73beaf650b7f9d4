package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

type appointmentRepo struct{ s *Store }

// slotTaken mirrors the partial unique index on (professional_id, date)
// for rows that are not cancelled.
func (r appointmentRepo) slotTaken(a *model.Appointment) bool {
	if a.Status == model.AppointmentStatusCancelled {
		return false
	}
	for _, other := range r.s.appointments {
		if other.ID == a.ID || other.Status == model.AppointmentStatusCancelled {
			continue
		}
		if other.ProfessionalID == a.ProfessionalID && other.Date.Equal(a.Date) {
			return true
		}
	}
	return false
}

func (r appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	if r.slotTaken(a) {
		return fmt.Errorf("%w: appointments_professional_slot_key", repository.ErrConflict)
	}
	stamp(&a.Base)
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r appointmentRepo) List(_ context.Context, clinicID uuid.UUID, f model.AppointmentFilters, loc *time.Location) ([]*model.AppointmentDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var from, to time.Time
	if f.From != "" {
		from, _ = time.ParseInLocation("2006-01-02", f.From, loc)
	}
	if f.To != "" {
		to, _ = time.ParseInLocation("2006-01-02", f.To, loc)
		to = to.AddDate(0, 0, 1)
	}

	matched := []*model.AppointmentDetails{}
	for _, a := range r.s.appointments {
		if a.ClinicID != clinicID {
			continue
		}
		if f.ProfessionalID != "" && a.ProfessionalID.String() != f.ProfessionalID {
			continue
		}
		if f.ClientID != "" && a.ClientID.String() != f.ClientID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if !from.IsZero() && a.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !a.Date.Before(to) {
			continue
		}
		matched = append(matched, &model.AppointmentDetails{
			Appointment:      a,
			ClientName:       r.s.clients[a.ClientID].Name,
			ProfessionalName: r.s.professionals[a.ProfessionalID].Name,
		})
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })

	page := f.Page.Normalize()
	total := len(matched)
	if page.Offset >= total {
		return []*model.AppointmentDetails{}, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return matched[page.Offset:end], total, nil
}

func (r appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cur, ok := r.s.appointments[a.ID]
	if !ok || cur.ClinicID != a.ClinicID {
		return repository.ErrNotFound
	}
	next := cur
	next.ProfessionalID = a.ProfessionalID
	next.Date = a.Date
	next.AppointmentPriceInCents = a.AppointmentPriceInCents
	if r.slotTaken(&next) {
		return fmt.Errorf("%w: appointments_professional_slot_key", repository.ErrConflict)
	}
	next.UpdatedAt = a.UpdatedAt
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}
	r.s.appointments[a.ID] = next
	*a = next
	return nil
}

func (r appointmentRepo) UpdateStatus(_ context.Context, clinicID, id uuid.UUID, status model.AppointmentStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	a, ok := r.s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	a.Status = status
	if r.slotTaken(&a) {
		return fmt.Errorf("%w: appointments_professional_slot_key", repository.ErrConflict)
	}
	a.UpdatedAt = at
	r.s.appointments[id] = a
	return nil
}

func (r appointmentRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	a, ok := r.s.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

func (r appointmentRepo) BookedTimes(_ context.Context, clinicID, professionalID uuid.UUID, day time.Time, loc *time.Location, excludeID *uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var dates []time.Time
	for _, a := range r.s.appointments {
		if a.ClinicID != clinicID || a.ProfessionalID != professionalID {
			continue
		}
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.Date.Before(start) || !a.Date.Before(end) {
			continue
		}
		dates = append(dates, a.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	booked := make([]string, 0, len(dates))
	for _, d := range dates {
		booked = append(booked, d.In(loc).Format("15:04:05"))
	}
	return booked, nil
}

func (r appointmentRepo) PurgeCancelledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for id, a := range r.s.appointments {
		if a.Status == model.AppointmentStatusCancelled && a.UpdatedAt.Before(cutoff) {
			delete(r.s.appointments, id)
			n++
		}
	}
	return n, nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = model.OutboxStatusPending
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.outbox = append(r.s.outbox, *e)
	return nil
}

func (r outboxRepo) ClaimPending(_ context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	now := time.Now()
	out := []*model.OutboxEvent{}
	for i := range r.s.outbox {
		e := &r.s.outbox[i]
		if len(out) == limit {
			break
		}
		if e.Status != model.OutboxStatusPending || (e.RetryAt != nil && e.RetryAt.After(now)) {
			continue
		}
		leaseEnd := now.Add(lease)
		e.RetryAt = &leaseEnd
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r outboxRepo) find(id uuid.UUID) *model.OutboxEvent {
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			return &r.s.outbox[i]
		}
	}
	return nil
}

func (r outboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	e.ErrorMessage = nil
	return nil
}

func (r outboxRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string, retryAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return repository.ErrNotFound
	}
	e.RetryCount++
	e.ErrorMessage = &msg
	e.RetryAt = retryAt
	if retryAt == nil {
		e.Status = model.OutboxStatusFailed
	}
	return nil
}

func (r outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var n int64
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return n, nil
}
