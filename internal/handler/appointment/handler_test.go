package appointment

import (
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/handler/handlertest"
	"github.com/jwalitptl/scheduling-api/internal/model"
)

func setup(t *testing.T) (*gin.Engine, *handlertest.Env, string) {
	env := handlertest.New(t)
	r := gin.New()
	NewHandler(env.Appointments).RegisterRoutes(r.Group("/clinics/:clinicId"))
	return r, env, "/clinics/" + env.Clinic.ID.String() + "/appointments"
}

func booking(env *handlertest.Env, clock string) map[string]interface{} {
	return map[string]interface{}{
		"clientId":       env.Client.ID,
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           clock,
	}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    model.Appointment `json:"data"`
}

func TestCreateAppointment(t *testing.T) {
	r, env, path := setup(t)

	w := handlertest.Do(r, http.MethodPost, path, booking(env, "10:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body envelope
	handlertest.Decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, model.AppointmentStatusScheduled, body.Data.Status)
	assert.Equal(t, int64(25000), body.Data.AppointmentPriceInCents)
	assert.Equal(t, "2024-06-03T13:00:00Z", body.Data.Date.UTC().Format("2006-01-02T15:04:05Z"))

	w = handlertest.Do(r, http.MethodPost, path, booking(env, "10:00"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"time slot unavailable"}`, w.Body.String())
}

func TestCreateAppointmentConcurrent(t *testing.T) {
	r, env, path := setup(t)

	const n = 6
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = handlertest.Do(r, http.MethodPost, path, booking(env, "14:30")).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)
}

func TestCreateAppointmentRequestErrors(t *testing.T) {
	r, env, path := setup(t)

	mismatch := booking(env, "10:00")
	mismatch["clinicId"] = uuid.New()
	w := handlertest.Do(r, http.MethodPost, path, mismatch)
	assert.Equal(t, http.StatusForbidden, w.Code)

	alias := booking(env, "10:30")
	delete(alias, "clientId")
	alias["patientId"] = env.Client.ID
	w = handlertest.Do(r, http.MethodPost, path, alias)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	anonymous := booking(env, "11:00")
	delete(anonymous, "clientId")
	w = handlertest.Do(r, http.MethodPost, path, anonymous)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "clientId")

	cases := map[string]map[string]interface{}{
		"weekend":      {"date": "2024-06-08"},
		"off grid":     {"time": "10:15"},
		"after hours":  {"time": "17:00"},
		"bad time":     {"time": "25:00"},
		"bad date":     {"date": "03/06/2024"},
		"unknown prof": {"professionalId": uuid.New()},
	}
	want := map[string]int{
		"weekend":      http.StatusConflict,
		"off grid":     http.StatusConflict,
		"after hours":  http.StatusConflict,
		"bad time":     http.StatusBadRequest,
		"bad date":     http.StatusBadRequest,
		"unknown prof": http.StatusNotFound,
	}
	for name, override := range cases {
		body := booking(env, "12:00")
		for k, v := range override {
			body[k] = v
		}
		w := handlertest.Do(r, http.MethodPost, path, body)
		assert.Equal(t, want[name], w.Code, name)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	r, env, path := setup(t)

	w := handlertest.Do(r, http.MethodPost, path, booking(env, "09:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created envelope
	handlertest.Decode(t, w, &created)
	one := path + "/" + created.Data.ID.String()

	w = handlertest.Do(r, http.MethodPut, one, booking(env, "09:30"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = handlertest.Do(r, http.MethodDelete, one, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = handlertest.Do(r, http.MethodPatch, one+"/status", map[string]string{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodPatch, one+"/status", map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(r, http.MethodPatch, one+"/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = handlertest.Do(r, http.MethodPost, path, booking(env, "09:30"))
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusNoContent, handlertest.Do(r, http.MethodDelete, one, nil).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodGet, one, nil).Code)
}

func TestListAppointments(t *testing.T) {
	r, env, path := setup(t)

	for _, clock := range []string{"09:00", "11:00"} {
		require.Equal(t, http.StatusCreated, handlertest.Do(r, http.MethodPost, path, booking(env, clock)).Code)
	}

	w := handlertest.Do(r, http.MethodGet, path+"?from="+handlertest.Monday+"&to="+handlertest.Monday, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			Items []model.AppointmentDetails `json:"items"`
		} `json:"data"`
	}
	handlertest.Decode(t, w, &list)
	assert.Len(t, list.Data.Items, 2)

	w = handlertest.Do(r, http.MethodGet, path+"?professionalId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	other := "/clinics/" + uuid.NewString() + "/appointments"
	w = handlertest.Do(r, http.MethodGet, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
