package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/internal/repository/repotest"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

const monday = "2024-06-03"

type clinicLookup struct {
	repo repository.ClinicRepository
}

func (l clinicLookup) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, err := l.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.ErrClinicNotFound
	}
	return c, err
}

func (l clinicLookup) Location(c *model.Clinic) *time.Location {
	return c.Location(time.UTC)
}

type fixture struct {
	store        *repotest.Store
	svc          *Service
	clinic       *model.Clinic
	professional *model.Professional
	client       *model.Client
	loc          *time.Location
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repotest.NewStore()

	clinic := &model.Clinic{Name: "Clínica Sol", Timezone: "America/Sao_Paulo"}
	require.NoError(t, store.Clinics().Create(ctx, clinic))

	professional := &model.Professional{
		ClinicID:             clinic.ID,
		Name:                 "Dra. Ana",
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromTime:    "09:00:00",
		AvailableToTime:      "17:00:00",
	}
	require.NoError(t, store.Professionals().Create(ctx, professional))

	client := &model.Client{ClinicID: clinic.ID, Name: "João", Email: "joao@example.com", Phone: "11999990000", Sex: model.SexMale}
	require.NoError(t, store.Clients().Create(ctx, client))

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	svc := NewService(
		clinicLookup{repo: store.Clinics()},
		store.Professionals(),
		store.Appointments(),
		clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		metrics.NewNop(),
		logger.Nop(),
	)
	return &fixture{store: store, svc: svc, clinic: clinic, professional: professional, client: client, loc: loc}
}

func (f *fixture) book(t *testing.T, date, clock string) *model.Appointment {
	t.Helper()
	at, err := Compose(date, clock, f.loc)
	require.NoError(t, err)
	a := &model.Appointment{
		ClinicID:       f.clinic.ID,
		ClientID:       f.client.ID,
		ProfessionalID: f.professional.ID,
		Date:           at,
	}
	require.NoError(t, f.store.Appointments().Create(context.Background(), a))
	return a
}

func (f *fixture) query(date string) Query {
	return Query{ClinicID: f.clinic.ID, ProfessionalID: f.professional.ID, Date: date}
}

func TestResolveNonWorkingDay(t *testing.T) {
	f := setup(t)

	slots, err := f.svc.Resolve(context.Background(), f.query("2024-06-08"))
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestResolveOpenDay(t *testing.T) {
	f := setup(t)

	slots, err := f.svc.Resolve(context.Background(), f.query(monday))
	require.NoError(t, err)
	require.Len(t, slots, 16)

	assert.Equal(t, model.Slot{Value: "09:00:00", Label: "09:00", Available: true}, slots[0])
	assert.Equal(t, "16:30:00", slots[15].Value)
	for _, s := range slots {
		assert.True(t, s.Available, s.Value)
	}
}

func TestResolveMarksBookedSlot(t *testing.T) {
	f := setup(t)
	f.book(t, monday, "10:00")

	slots, err := f.svc.Resolve(context.Background(), f.query(monday))
	require.NoError(t, err)
	require.Len(t, slots, 16)

	for _, s := range slots {
		assert.Equal(t, s.Value != "10:00:00", s.Available, s.Value)
	}
}

func TestResolveIgnoresCancelledAndOtherDays(t *testing.T) {
	f := setup(t)
	cancelled := f.book(t, monday, "11:00")
	require.NoError(t, f.store.Appointments().UpdateStatus(context.Background(), f.clinic.ID, cancelled.ID, model.AppointmentStatusCancelled, time.Now()))
	f.book(t, "2024-06-04", "09:00")

	slots, err := f.svc.Resolve(context.Background(), f.query(monday))
	require.NoError(t, err)
	for _, s := range slots {
		assert.True(t, s.Available, s.Value)
	}
}

func TestResolveIsRepeatable(t *testing.T) {
	f := setup(t)
	f.book(t, monday, "14:30")

	first, err := f.svc.Resolve(context.Background(), f.query(monday))
	require.NoError(t, err)
	second, err := f.svc.Resolve(context.Background(), f.query(monday))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveExcludesAppointment(t *testing.T) {
	f := setup(t)
	a := f.book(t, monday, "10:00")

	q := f.query(monday)
	q.ExcludeAppointmentID = &a.ID
	slots, err := f.svc.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, slots[2].Available)
	assert.Equal(t, "10:00:00", slots[2].Value)
}

func TestResolveTenantIsolation(t *testing.T) {
	f := setup(t)
	other := &model.Clinic{Name: "Outra", Timezone: "UTC"}
	require.NoError(t, f.store.Clinics().Create(context.Background(), other))

	_, err := f.svc.Resolve(context.Background(), Query{
		ClinicID:       other.ID,
		ProfessionalID: f.professional.ID,
		Date:           monday,
	})
	assert.ErrorIs(t, err, model.ErrProfessionalNotFound)

	_, err = f.svc.SlotsFor(context.Background(), other, f.professional, monday, nil)
	assert.ErrorIs(t, err, model.ErrProfessionalNotFound)
}

func TestResolveErrors(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Resolve(context.Background(), Query{ClinicID: uuid.New(), ProfessionalID: f.professional.ID, Date: monday})
	assert.ErrorIs(t, err, model.ErrClinicNotFound)

	_, err = f.svc.Resolve(context.Background(), f.query("03-06-2024"))
	require.ErrorIs(t, err, model.ErrInvalidInput)
	var inputErr *model.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Fields, "date")
}

func TestAvailableTimesSwallowsErrors(t *testing.T) {
	f := setup(t)

	slots := f.svc.AvailableTimes(context.Background(), Query{ClinicID: f.clinic.ID, ProfessionalID: uuid.New(), Date: monday})
	assert.NotNil(t, slots)
	assert.Empty(t, slots)

	f.store.Err = errors.New("connection reset")
	slots = f.svc.AvailableTimes(context.Background(), f.query(monday))
	assert.Equal(t, []model.Slot{}, slots)
}

func TestDropElapsed(t *testing.T) {
	slots := []model.Slot{
		{Value: "09:00:00"}, {Value: "09:30:00"}, {Value: "10:00:00"}, {Value: "10:30:00"},
	}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	// 13:00 UTC is 10:00 in São Paulo.
	now := time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC)

	kept := DropElapsed(slots, monday, now, loc)
	require.Len(t, kept, 1)
	assert.Equal(t, "10:30:00", kept[0].Value)

	assert.Len(t, DropElapsed(slots, "2024-06-04", now, loc), 4)
	assert.Len(t, DropElapsed(slots, monday, now, time.UTC), 0)
}

func TestToday(t *testing.T) {
	f := setup(t)
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	date, now := f.svc.Today(loc)
	assert.Equal(t, "2024-06-01", date)
	assert.Equal(t, 21, now.Hour())
}

func TestResolveSkipsMissingDaylightSavingTimes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	clinic := &model.Clinic{Name: "Midtown", Timezone: "America/New_York"}
	require.NoError(t, f.store.Clinics().Create(ctx, clinic))
	professional := &model.Professional{
		ClinicID:             clinic.ID,
		Name:                 "Dr. Night",
		AvailableFromWeekDay: 0,
		AvailableToWeekDay:   6,
		AvailableFromTime:    "01:00:00",
		AvailableToTime:      "04:00:00",
	}
	require.NoError(t, f.store.Professionals().Create(ctx, professional))

	slots, err := f.svc.Resolve(ctx, Query{ClinicID: clinic.ID, ProfessionalID: professional.ID, Date: "2024-03-10"})
	require.NoError(t, err)

	var values []string
	for _, s := range slots {
		values = append(values, s.Value)
	}
	assert.Equal(t, []string{"01:00:00", "01:30:00", "03:00:00", "03:30:00"}, values)

	slots, err = f.svc.Resolve(ctx, Query{ClinicID: clinic.ID, ProfessionalID: professional.ID, Date: "2024-03-11"})
	require.NoError(t, err)
	assert.Len(t, slots, 6)
}
