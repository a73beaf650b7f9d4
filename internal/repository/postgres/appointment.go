package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

const appointmentColumns = `id, clinic_id, client_id, professional_id, date,
	appointment_price_in_cents, status, created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = model.AppointmentStatusScheduled
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ClinicID,
		a.ClientID,
		a.ProfessionalID,
		a.Date,
		a.AppointmentPriceInCents,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND clinic_id = $2`

	var a model.Appointment
	if err := r.db.GetContext(ctx, &a, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &a, nil
}

func (r *appointmentRepository) List(ctx context.Context, clinicID uuid.UUID, filters model.AppointmentFilters, loc *time.Location) ([]*model.AppointmentDetails, int, error) {
	where := ` WHERE a.clinic_id = $1`
	args := []interface{}{clinicID}
	argCount := 2

	if filters.ProfessionalID != "" {
		where += fmt.Sprintf(" AND a.professional_id = $%d", argCount)
		args = append(args, filters.ProfessionalID)
		argCount++
	}
	if filters.ClientID != "" {
		where += fmt.Sprintf(" AND a.client_id = $%d", argCount)
		args = append(args, filters.ClientID)
		argCount++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.From != "" {
		from, err := time.ParseInLocation("2006-01-02", filters.From, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid from date: %w", err)
		}
		where += fmt.Sprintf(" AND a.date >= $%d", argCount)
		args = append(args, from)
		argCount++
	}
	if filters.To != "" {
		to, err := time.ParseInLocation("2006-01-02", filters.To, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid to date: %w", err)
		}
		where += fmt.Sprintf(" AND a.date < $%d", argCount)
		args = append(args, to.AddDate(0, 0, 1))
		argCount++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments a`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	page := filters.Page.Normalize()
	query := `
		SELECT a.id, a.clinic_id, a.client_id, a.professional_id, a.date,
			   a.appointment_price_in_cents, a.status, a.created_at, a.updated_at,
			   c.name AS client_name, p.name AS professional_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		JOIN professionals p ON p.id = a.professional_id` + where +
		fmt.Sprintf(" ORDER BY a.date ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, page.Limit, page.Offset)

	appointments := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET professional_id = $1, date = $2, appointment_price_in_cents = $3, updated_at = $4
		WHERE id = $5 AND clinic_id = $6
	`
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, query,
		a.ProfessionalID,
		a.Date,
		a.AppointmentPriceInCents,
		a.UpdatedAt,
		a.ID,
		a.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", mapError(err))
	}
	return expectOne(result)
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.AppointmentStatus, at time.Time) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND clinic_id = $4`

	result, err := r.db.ExecContext(ctx, query, status, at, id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", mapError(err))
	}
	return expectOne(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectOne(result)
}

func (r *appointmentRepository) BookedTimes(ctx context.Context, clinicID, professionalID uuid.UUID, day time.Time, loc *time.Location, excludeID *uuid.UUID) ([]string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT date FROM appointments
		WHERE clinic_id = $1
		AND professional_id = $2
		AND status <> 'cancelled'
		AND date >= $3 AND date < $4
		AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY date ASC
	`
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, clinicID, professionalID, start, end, excludeID); err != nil {
		return nil, fmt.Errorf("failed to get booked times: %w", err)
	}

	booked := make([]string, 0, len(dates))
	for _, d := range dates {
		booked = append(booked, d.In(loc).Format("15:04:05"))
	}
	return booked, nil
}

func (r *appointmentRepository) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE status = 'cancelled' AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cancelled appointments: %w", err)
	}
	return result.RowsAffected()
}
