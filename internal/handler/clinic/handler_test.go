package clinic

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/scheduling-api/internal/handler/handlertest"
	"github.com/jwalitptl/scheduling-api/internal/model"
)

func setup(t *testing.T) (*gin.Engine, *handlertest.Env) {
	env := handlertest.New(t)
	h := NewHandler(env.Clinics)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterCreate(api)
	h.RegisterRoutes(api.Group("/clinics/:clinicId"))
	return r, env
}

func TestCreateClinic(t *testing.T) {
	r, _ := setup(t)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/clinics", map[string]interface{}{
		"name":     "Clínica Lua",
		"timezone": "Europe/Lisbon",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    model.Clinic `json:"data"`
	}
	handlertest.Decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "Europe/Lisbon", body.Data.Timezone)
	assert.Equal(t, "08:00:00", body.Data.AvailableFromTime)
}

func TestCreateClinicValidation(t *testing.T) {
	r, _ := setup(t)

	w := handlertest.Do(r, http.MethodPost, "/api/v1/clinics", map[string]interface{}{
		"availableFromTime": "8am",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	handlertest.Decode(t, w, &body)
	assert.Equal(t, "is required", body.Fields["name"])
	assert.Equal(t, "must be a time in HH:mm:ss format", body.Fields["availableFromTime"])
}

func TestGetAndUpdateClinic(t *testing.T) {
	r, env := setup(t)
	path := "/api/v1/clinics/" + env.Clinic.ID.String()

	w := handlertest.Do(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(r, http.MethodPut, path, map[string]interface{}{
		"name":           "Clínica Sol Nascente",
		"paymentMethods": []string{"pix", "card"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Clínica Sol Nascente")
	assert.Contains(t, w.Body.String(), "America/Sao_Paulo")

	w = handlertest.Do(r, http.MethodGet, "/api/v1/clinics/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"clinic not found"}`, w.Body.String())
}
