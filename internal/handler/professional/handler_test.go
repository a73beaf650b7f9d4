package professional

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/handler/handlertest"
	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/service/appointment"
)

func setup(t *testing.T, session ...uuid.UUID) (*gin.Engine, *handlertest.Env) {
	env := handlertest.New(t)
	h := NewHandler(env.Professionals, env.Availability, env.Clinics)

	r := gin.New()
	clinic := r.Group("/clinics/:clinicId", handlertest.WithSession(session...))
	h.RegisterRoutes(clinic)
	h.RegisterAvailability(clinic)
	return r, env
}

func TestCreateProfessional(t *testing.T) {
	r, env := setup(t)
	path := "/clinics/" + env.Clinic.ID.String() + "/professionals"

	w := handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":                    "Dr. Beto",
		"appointmentPriceInCents": 18000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data model.Professional `json:"data"`
	}
	handlertest.Decode(t, w, &body)
	assert.Equal(t, env.Clinic.AvailableFromTime, body.Data.AvailableFromTime)
	assert.Equal(t, env.Clinic.ID, body.Data.ClinicID)

	w = handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":                 "Dr. Beto",
		"availableFromWeekDay": 5,
		"availableToWeekDay":   1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "availableToWeekDay")

	w = handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":                    "Dr. Beto",
		"appointmentPriceInCents": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfessionalTenantIsolation(t *testing.T) {
	r, env := setup(t)
	path := "/clinics/" + uuid.NewString() + "/professionals/" + env.Professional.ID.String()

	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodDelete, path, nil).Code)

	own := "/clinics/" + env.Clinic.ID.String() + "/professionals/" + env.Professional.ID.String()
	assert.Equal(t, http.StatusOK, handlertest.Do(r, http.MethodGet, own, nil).Code)
	assert.Equal(t, http.StatusNoContent, handlertest.Do(r, http.MethodDelete, own, nil).Code)
}

func availableTimesPath(env *handlertest.Env, query string) string {
	return "/clinics/" + env.Clinic.ID.String() + "/professionals/" + env.Professional.ID.String() + "/available-times" + query
}

func TestAvailableTimes(t *testing.T) {
	env := handlertest.New(t)
	h := NewHandler(env.Professionals, env.Availability, env.Clinics)
	r := gin.New()
	h.RegisterAvailability(r.Group("/clinics/:clinicId", handlertest.WithSession(env.Clinic.ID)))

	_, err := env.Appointments.Create(context.Background(), appointment.CreateInput{
		ClinicID:       env.Clinic.ID,
		ClientID:       env.Client.ID,
		ProfessionalID: env.Professional.ID,
		Date:           handlertest.Monday,
		Time:           "10:00",
	})
	require.NoError(t, err)

	w := handlertest.Do(r, http.MethodGet, availableTimesPath(env, "?date="+handlertest.Monday), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots []model.Slot
	handlertest.Decode(t, w, &slots)
	require.Len(t, slots, 16)
	assert.Equal(t, "10:00", slots[2].Label)
	assert.False(t, slots[2].Available)

	// 13:15 UTC is 10:15 in São Paulo: only slots from 10:30 remain.
	env.Clock.Set(time.Date(2024, 6, 3, 13, 15, 0, 0, time.UTC))
	w = handlertest.Do(r, http.MethodGet, availableTimesPath(env, "?date="+handlertest.Monday), nil)
	handlertest.Decode(t, w, &slots)
	require.Len(t, slots, 13)
	assert.Equal(t, "10:30:00", slots[0].Value)
}

func TestAvailableTimesNeverFails(t *testing.T) {
	env := handlertest.New(t)
	h := NewHandler(env.Professionals, env.Availability, env.Clinics)

	authorized := gin.New()
	h.RegisterAvailability(authorized.Group("/clinics/:clinicId", handlertest.WithSession(env.Clinic.ID)))
	anonymous := gin.New()
	h.RegisterAvailability(anonymous.Group("/clinics/:clinicId"))

	cases := []struct {
		name string
		r    *gin.Engine
		path string
	}{
		{"no session", anonymous, availableTimesPath(env, "?date="+handlertest.Monday)},
		{"missing date", authorized, availableTimesPath(env, "")},
		{"bad date", authorized, availableTimesPath(env, "?date=tomorrow")},
		{"weekend", authorized, availableTimesPath(env, "?date=2024-06-08")},
		{"bad professional", authorized, "/clinics/" + env.Clinic.ID.String() + "/professionals/x/available-times?date=" + handlertest.Monday},
		{"other clinic", authorized, "/clinics/" + uuid.NewString() + "/professionals/" + env.Professional.ID.String() + "/available-times?date=" + handlertest.Monday},
	}
	for _, tc := range cases {
		w := handlertest.Do(tc.r, http.MethodGet, tc.path, nil)
		assert.Equal(t, http.StatusOK, w.Code, tc.name)
		assert.JSONEq(t, `[]`, w.Body.String(), tc.name)
	}
}
