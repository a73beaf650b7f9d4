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

const clinicColumns = `id, name, email, phone, address, timezone,
	available_from_week_day, available_to_week_day,
	available_from_time, available_to_time,
	insurance_plans, payment_methods, created_at, updated_at`

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{NewBaseRepository(db)}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (` + clinicColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if clinic.ID == uuid.Nil {
		clinic.ID = uuid.New()
	}
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.Email,
		clinic.Phone,
		clinic.Address,
		clinic.Timezone,
		clinic.AvailableFromWeekDay,
		clinic.AvailableToWeekDay,
		clinic.AvailableFromTime,
		clinic.AvailableToTime,
		clinic.InsurancePlans,
		clinic.PaymentMethods,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", mapError(err))
	}
	return nil
}

func (r *clinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", mapError(err))
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, email = $2, phone = $3, address = $4, timezone = $5,
			available_from_week_day = $6, available_to_week_day = $7,
			available_from_time = $8, available_to_time = $9,
			insurance_plans = $10, payment_methods = $11, updated_at = $12
		WHERE id = $13
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.Email,
		clinic.Phone,
		clinic.Address,
		clinic.Timezone,
		clinic.AvailableFromWeekDay,
		clinic.AvailableToWeekDay,
		clinic.AvailableFromTime,
		clinic.AvailableToTime,
		clinic.InsurancePlans,
		clinic.PaymentMethods,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", mapError(err))
	}
	return expectOne(result)
}
