package client

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/handler/handlertest"
	"github.com/jwalitptl/scheduling-api/internal/model"
)

func setup(t *testing.T) (*gin.Engine, *handlertest.Env, string) {
	env := handlertest.New(t)
	r := gin.New()
	NewHandler(env.Clients).RegisterRoutes(r.Group("/clinics/:clinicId"))
	return r, env, "/clinics/" + env.Clinic.ID.String() + "/clients"
}

func TestCreateClient(t *testing.T) {
	r, env, path := setup(t)

	w := handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":  "Maria",
		"email": " Maria@Example.com ",
		"phone": "11988887777",
		"sex":   "female",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data model.Client `json:"data"`
	}
	handlertest.Decode(t, w, &body)
	assert.Equal(t, "maria@example.com", body.Data.Email)
	assert.Equal(t, model.ClientStatusActive, body.Data.Status)
	assert.Equal(t, env.Clinic.ID, body.Data.ClinicID)
}

func TestCreateClientConflict(t *testing.T) {
	r, env, path := setup(t)

	w := handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":  "Outro João",
		"email": "other@example.com",
		"phone": env.Client.Phone,
		"sex":   "male",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"client with this email or phone already exists"}`, w.Body.String())
}

func TestCreateClientValidation(t *testing.T) {
	r, _, path := setup(t)

	w := handlertest.Do(r, http.MethodPost, path, map[string]interface{}{
		"name":  "Maria",
		"email": "not-an-email",
		"phone": "123",
		"sex":   "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	handlertest.Decode(t, w, &body)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "phone")
	assert.Contains(t, body.Fields, "sex")

	w = handlertest.Do(r, http.MethodPost, path, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndStatusClients(t *testing.T) {
	r, env, path := setup(t)

	w := handlertest.Do(r, http.MethodGet, path+"?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data struct {
			Items      []model.Client `json:"items"`
			Pagination struct {
				Limit int `json:"limit"`
				Total int `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}
	handlertest.Decode(t, w, &list)
	require.Len(t, list.Data.Items, 1)
	assert.Equal(t, 10, list.Data.Pagination.Limit)
	assert.Equal(t, 1, list.Data.Pagination.Total)

	w = handlertest.Do(r, http.MethodGet, path+"?limit=0&status=gone", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodPatch, path+"/"+env.Client.ID.String()+"/status", map[string]string{"status": "inactive"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"inactive"`)

	w = handlertest.Do(r, http.MethodGet, path+"/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteClient(t *testing.T) {
	r, env, path := setup(t)
	one := path + "/" + env.Client.ID.String()

	assert.Equal(t, http.StatusNoContent, handlertest.Do(r, http.MethodDelete, one, nil).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(r, http.MethodGet, one, nil).Code)
}
