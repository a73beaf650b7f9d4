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

const professionalColumns = `id, clinic_id, name, speciality,
	available_from_week_day, available_to_week_day,
	available_from_time, available_to_time,
	appointment_price_in_cents, created_at, updated_at`

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{NewBaseRepository(db)}
}

func (r *professionalRepository) Create(ctx context.Context, p *model.Professional) error {
	query := `
		INSERT INTO professionals (` + professionalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ClinicID,
		p.Name,
		p.Speciality,
		p.AvailableFromWeekDay,
		p.AvailableToWeekDay,
		p.AvailableFromTime,
		p.AvailableToTime,
		p.AppointmentPriceInCents,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", mapError(err))
	}
	return nil
}

func (r *professionalRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals WHERE id = $1 AND clinic_id = $2`

	var p model.Professional
	if err := r.db.GetContext(ctx, &p, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", mapError(err))
	}
	return &p, nil
}

func (r *professionalRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals WHERE clinic_id = $1 ORDER BY name ASC`

	professionals := []*model.Professional{}
	if err := r.db.SelectContext(ctx, &professionals, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}

func (r *professionalRepository) Update(ctx context.Context, p *model.Professional) error {
	query := `
		UPDATE professionals
		SET name = $1, speciality = $2,
			available_from_week_day = $3, available_to_week_day = $4,
			available_from_time = $5, available_to_time = $6,
			appointment_price_in_cents = $7, updated_at = $8
		WHERE id = $9 AND clinic_id = $10
	`
	p.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Speciality,
		p.AvailableFromWeekDay,
		p.AvailableToWeekDay,
		p.AvailableFromTime,
		p.AvailableToTime,
		p.AppointmentPriceInCents,
		p.UpdatedAt,
		p.ID,
		p.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update professional: %w", mapError(err))
	}
	return expectOne(result)
}

func (r *professionalRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM professionals WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	return expectOne(result)
}
