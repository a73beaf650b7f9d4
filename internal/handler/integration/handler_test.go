package integration

import (
	"context"
	"net/http"
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
	h := NewHandler(env.Clinics, env.Availability, env.Professionals, env.Clients, env.Appointments)
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r, env, "/integrations/clinics/" + env.Clinic.ID.String()
}

func TestAvailabilityAutoSelectsProfessional(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodGet, base+"/availability?date="+handlertest.Monday, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var slots []model.Slot
	handlertest.Decode(t, w, &slots)
	assert.Len(t, slots, 16)
	assert.Equal(t, model.Slot{Value: "09:00:00", Label: "09:00", Available: true}, slots[0])

	w = handlertest.Do(r, http.MethodGet, base+"/availability?date=2024-06-08", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = handlertest.Do(r, http.MethodGet, base+"/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodGet, base+"/availability?date="+handlertest.Monday+"&professionalId="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = handlertest.Do(r, http.MethodGet, "/integrations/clinics/"+uuid.NewString()+"/availability?date="+handlertest.Monday, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	second := &model.ProfessionalRequest{Name: "Dr. Caio", AppointmentPriceInCents: 10000}
	_, err := env.Professionals.CreateProfessional(context.Background(), env.Clinic.ID, second)
	require.NoError(t, err)

	w = handlertest.Do(r, http.MethodGet, base+"/availability?date="+handlertest.Monday, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "professionalId")

	w = handlertest.Do(r, http.MethodGet, base+"/availability?date="+handlertest.Monday+"&professionalId="+env.Professional.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAvailabilityWithoutProfessionals(t *testing.T) {
	r, env, base := setup(t)
	require.NoError(t, env.Professionals.DeleteProfessional(context.Background(), env.Clinic.ID, env.Professional.ID))

	w := handlertest.Do(r, http.MethodGet, base+"/availability?date="+handlertest.Monday, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProfessionals(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodGet, base+"/professionals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var professionals []model.Professional
	handlertest.Decode(t, w, &professionals)
	require.Len(t, professionals, 1)
	assert.Equal(t, env.Professional.ID, professionals[0].ID)

	w = handlertest.Do(r, http.MethodGet, "/integrations/clinics/"+uuid.NewString()+"/professionals", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClients(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodGet, base+"/clients?phone="+env.Client.Phone, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []model.Client
	handlertest.Decode(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, env.Client.ID, found[0].ID)

	w = handlertest.Do(r, http.MethodGet, base+"/clients?phone=000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = handlertest.Do(r, http.MethodGet, base+"/clients", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodPost, base+"/clients", map[string]string{
		"name": "Carla", "email": "carla@example.com", "phone": "11977776666", "sex": "female",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Client
	handlertest.Decode(t, w, &created)
	assert.Equal(t, "Carla", created.Name)

	w = handlertest.Do(r, http.MethodPost, base+"/clients", map[string]string{
		"name": "Carla", "email": "carla@example.com", "phone": "11977775555", "sex": "female",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAppointmentFlow(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodPost, base+"/appointments", map[string]interface{}{
		"patientId":      env.Client.ID,
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           "15:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var apt model.Appointment
	handlertest.Decode(t, w, &apt)
	assert.Equal(t, env.Client.ID, apt.ClientID)

	one := base + "/appointments/" + apt.ID.String()
	w = handlertest.Do(r, http.MethodPut, one, map[string]interface{}{
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           "15:30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = handlertest.Do(r, http.MethodGet, base+"/appointments?clientId="+env.Client.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.AppointmentDetails
	handlertest.Decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "João", list[0].ClientName)
	assert.Equal(t, "Dra. Ana", list[0].ProfessionalName)

	w = handlertest.Do(r, http.MethodPost, one+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	stored, ok := env.Store.Appointment(apt.ID)
	require.True(t, ok)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)

	w = handlertest.Do(r, http.MethodPost, base+"/appointments/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = handlertest.Do(r, http.MethodGet, base+"/appointments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointmentClinicMismatch(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodPost, base+"/appointments", map[string]interface{}{
		"clinicId":       uuid.New(),
		"clientId":       env.Client.ID,
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           "15:00",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateAppointmentUnpaddedTime(t *testing.T) {
	r, env, base := setup(t)

	w := handlertest.Do(r, http.MethodPost, base+"/appointments", map[string]interface{}{
		"clientId":       env.Client.ID,
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           "9:30",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	handlertest.Decode(t, w, &body)
	assert.Equal(t, "must be a time in HH:mm format", body.Fields["time"])

	w = handlertest.Do(r, http.MethodPost, base+"/appointments", map[string]interface{}{
		"clientId":       env.Client.ID,
		"professionalId": env.Professional.ID,
		"date":           handlertest.Monday,
		"time":           "09:30",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
