package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

const clientColumns = `id, clinic_id, name, email, phone, sex, status, created_at, updated_at`

type clientRepository struct {
	BaseRepository
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{NewBaseRepository(db)}
}

func (r *clientRepository) Create(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.ClientStatusActive
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ClinicID, c.Name, c.Email, c.Phone, c.Sex, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", mapError(err))
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND clinic_id = $2`

	var c model.Client
	if err := r.db.GetContext(ctx, &c, query, id, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get client: %w", mapError(err))
	}
	return &c, nil
}

func (r *clientRepository) List(ctx context.Context, clinicID uuid.UUID, filters model.ClientFilters) ([]*model.Client, int, error) {
	where := ` WHERE clinic_id = $1`
	args := []interface{}{clinicID}
	argCount := 2

	if s := strings.TrimSpace(filters.Search); s != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+s+"%")
		argCount++
	}
	if filters.Phone != "" {
		where += fmt.Sprintf(" AND phone = $%d", argCount)
		args = append(args, filters.Phone)
		argCount++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clients`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	page := filters.Page.Normalize()
	query := `SELECT ` + clientColumns + ` FROM clients` + where +
		fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, page.Limit, page.Offset)

	clients := []*model.Client{}
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepository) Update(ctx context.Context, c *model.Client) error {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, sex = $4, updated_at = $5
		WHERE id = $6 AND clinic_id = $7
	`
	c.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.Sex, c.UpdatedAt, c.ID, c.ClinicID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", mapError(err))
	}
	return expectOne(result)
}

func (r *clientRepository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ClientStatus) error {
	query := `UPDATE clients SET status = $1, updated_at = $2 WHERE id = $3 AND clinic_id = $4`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
	}
	return expectOne(result)
}

func (r *clientRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND clinic_id = $2`, id, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return expectOne(result)
}

func (r *clientRepository) ExistsByContact(ctx context.Context, clinicID uuid.UUID, email, phone string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM clients
			WHERE clinic_id = $1
			AND (email = $2 OR phone = $3)
			AND ($4::uuid IS NULL OR id <> $4)
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, clinicID, email, phone, excludeID); err != nil {
		return false, fmt.Errorf("failed to check client contact: %w", err)
	}
	return exists, nil
}
