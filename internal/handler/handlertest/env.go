// Package handlertest wires real services over in-memory repositories
// for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository/repotest"
	"github.com/jwalitptl/scheduling-api/internal/service/appointment"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	"github.com/jwalitptl/scheduling-api/internal/service/client"
	"github.com/jwalitptl/scheduling-api/internal/service/clinic"
	"github.com/jwalitptl/scheduling-api/internal/service/event"
	"github.com/jwalitptl/scheduling-api/internal/service/professional"
	"github.com/jwalitptl/scheduling-api/pkg/auth"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	"github.com/jwalitptl/scheduling-api/pkg/validator"
)

// Monday is a working day of the seeded professional.
const Monday = "2024-06-03"

type Env struct {
	Store         *repotest.Store
	Clock         *clock.Fixed
	Clinics       *clinic.Service
	Professionals *professional.Service
	Clients       *client.Service
	Availability  *availability.Service
	Appointments  *appointment.Service

	Clinic       *model.Clinic
	Professional *model.Professional
	Client       *model.Client
}

// New seeds one clinic in America/Sao_Paulo with one professional
// working Monday to Friday 09:00-17:00 and one client. The clock is set
// before the seeded week.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterWithGin())

	store := repotest.NewStore()
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.NewNop()
	log := logger.Nop()

	clinics := clinic.NewService(store.Clinics(), time.UTC, time.Minute)
	avail := availability.NewService(clinics, store.Professionals(), store.Appointments(), clk, m, log)
	env := &Env{
		Store:         store,
		Clock:         clk,
		Clinics:       clinics,
		Professionals: professional.NewService(clinics, store.Professionals()),
		Clients:       client.NewService(store.Clients()),
		Availability:  avail,
		Appointments: appointment.NewService(clinics, store.Clients(), store.Professionals(), store.Appointments(),
			avail, event.NewEventService(store.Outbox(), log), clk, m, log),
	}

	ctx := context.Background()
	var err error
	env.Clinic, err = clinics.CreateClinic(ctx, &model.CreateClinicRequest{Name: "Clínica Sol", Timezone: "America/Sao_Paulo"})
	require.NoError(t, err)

	from, to := 1, 5
	env.Professional, err = env.Professionals.CreateProfessional(ctx, env.Clinic.ID, &model.ProfessionalRequest{
		Name:                    "Dra. Ana",
		AvailableFromWeekDay:    &from,
		AvailableToWeekDay:      &to,
		AvailableFromTime:       "09:00:00",
		AvailableToTime:         "17:00:00",
		AppointmentPriceInCents: 25000,
	})
	require.NoError(t, err)

	env.Client, err = env.Clients.CreateClient(ctx, env.Clinic.ID, &model.ClientRequest{
		Name: "João", Email: "joao@example.com", Phone: "11999990000", Sex: model.SexMale,
	})
	require.NoError(t, err)
	return env
}

// WithSession authorizes every request for the given clinics.
func WithSession(clinics ...uuid.UUID) gin.HandlerFunc {
	ids := make([]string, 0, len(clinics))
	for _, id := range clinics {
		ids = append(ids, id.String())
	}
	claims := &auth.SessionClaims{Clinics: ids}
	return func(c *gin.Context) {
		c.Set(middleware.ContextSession, claims)
		c.Next()
	}
}

// Do sends body as JSON when it is not nil.
func Do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a response body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
