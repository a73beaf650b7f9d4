package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
)

type mockClinicRepo struct {
	clinics map[uuid.UUID]*model.Clinic
	gets    int
}

func newMockClinicRepo() *mockClinicRepo {
	return &mockClinicRepo{clinics: map[uuid.UUID]*model.Clinic{}}
}

func (m *mockClinicRepo) Create(_ context.Context, c *model.Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func (m *mockClinicRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	m.gets++
	c, ok := m.clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClinicRepo) Update(_ context.Context, c *model.Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.clinics[c.ID] = &cp
	return nil
}

func TestCreateClinicDefaults(t *testing.T) {
	repo := newMockClinicRepo()
	svc := NewService(repo, time.UTC, time.Minute)

	c, err := svc.CreateClinic(context.Background(), &model.CreateClinicRequest{Name: "Clínica Sol"})
	require.NoError(t, err)

	assert.Equal(t, "UTC", c.Timezone)
	assert.Equal(t, 1, c.AvailableFromWeekDay)
	assert.Equal(t, 5, c.AvailableToWeekDay)
	assert.Equal(t, "08:00:00", c.AvailableFromTime)
	assert.NotNil(t, c.InsurancePlans)
}

func TestCreateClinicValidation(t *testing.T) {
	svc := NewService(newMockClinicRepo(), time.UTC, time.Minute)
	from, to := 5, 1

	_, err := svc.CreateClinic(context.Background(), &model.CreateClinicRequest{
		Name:                 "Clínica Sol",
		Timezone:             "Mars/Olympus",
		AvailableFromWeekDay: &from,
		AvailableToWeekDay:   &to,
		AvailableFromTime:    "18:00:00",
		AvailableToTime:      "08:00:00",
	})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	var inputErr *model.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Fields, "timezone")
	assert.Contains(t, inputErr.Fields, "availableToWeekDay")
	assert.Contains(t, inputErr.Fields, "availableToTime")
}

func TestGetClinicCachesAndInvalidates(t *testing.T) {
	repo := newMockClinicRepo()
	svc := NewService(repo, time.UTC, time.Minute)
	id := uuid.New()
	repo.clinics[id] = &model.Clinic{Base: model.Base{ID: id}, Name: "A", Timezone: "UTC",
		AvailableFromWeekDay: 1, AvailableToWeekDay: 5, AvailableFromTime: "08:00:00", AvailableToTime: "18:00:00"}

	_, err := svc.GetClinic(context.Background(), id)
	require.NoError(t, err)
	_, err = svc.GetClinic(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	updated, err := svc.UpdateClinic(context.Background(), id, &model.UpdateClinicRequest{Name: "B", Timezone: "America/Sao_Paulo"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)

	got, err := svc.GetClinic(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "America/Sao_Paulo", svc.Location(got).String())
}

func TestGetClinicNotFound(t *testing.T) {
	svc := NewService(newMockClinicRepo(), time.UTC, time.Minute)

	_, err := svc.GetClinic(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrClinicNotFound)
}
