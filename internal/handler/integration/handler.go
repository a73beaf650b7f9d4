// Package integration serves the automation API used by external
// booking assistants. Responses are bare JSON objects and arrays.
package integration

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/scheduling-api/internal/handler/appointment"
	"github.com/jwalitptl/scheduling-api/internal/model"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

type Availability interface {
	Resolve(ctx context.Context, q availability.Query) ([]model.Slot, error)
}

type Professionals interface {
	ListProfessionals(ctx context.Context, clinicID uuid.UUID) ([]*model.Professional, error)
	Single(ctx context.Context, clinicID uuid.UUID) (*model.Professional, error)
}

type Clients interface {
	CreateClient(ctx context.Context, clinicID uuid.UUID, req *model.ClientRequest) (*model.Client, error)
	FindByPhone(ctx context.Context, clinicID uuid.UUID, phone string) ([]*model.Client, error)
}

type Appointments interface {
	Create(ctx context.Context, in appointmentService.CreateInput) (*model.Appointment, error)
	Update(ctx context.Context, in appointmentService.UpdateInput) (*model.Appointment, error)
	Cancel(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.AppointmentFilters) ([]*model.AppointmentDetails, int, error)
}

// Clinics confirms the clinic exists before listing its data.
type Clinics interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
}

type Handler struct {
	clinics       Clinics
	availability  Availability
	professionals Professionals
	clients       Clients
	appointments  Appointments
}

func NewHandler(clinics Clinics, avail Availability, professionals Professionals, clients Clients, appointments Appointments) *Handler {
	return &Handler{
		clinics:       clinics,
		availability:  avail,
		professionals: professionals,
		clients:       clients,
		appointments:  appointments,
	}
}

// RegisterRoutes mounts the API on a group already guarded by the
// service token.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinic := r.Group("/integrations/clinics/:clinicId")
	{
		clinic.GET("/availability", h.Availability)
		clinic.GET("/professionals", h.ListProfessionals)
		clinic.GET("/clients", h.FindClients)
		clinic.POST("/clients", h.CreateClient)
		clinic.GET("/appointments", h.ListAppointments)
		clinic.POST("/appointments", h.CreateAppointment)
		clinic.PUT("/appointments/:id", h.UpdateAppointment)
		clinic.POST("/appointments/:id/cancel", h.CancelAppointment)
	}
}

type availabilityQuery struct {
	Date           string `form:"date" binding:"required,isodate"`
	ProfessionalID string `form:"professionalId" binding:"omitempty,uuid"`
}

// Availability picks the clinic's only professional when none is given.
func (h *Handler) Availability(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}

	var query availabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}
	if _, err := h.clinics.GetClinic(c.Request.Context(), clinicID); err != nil {
		handler.RespondWithError(c, err)
		return
	}

	var professionalID uuid.UUID
	if query.ProfessionalID != "" {
		professionalID = uuid.MustParse(query.ProfessionalID)
	} else {
		professional, err := h.professionals.Single(c.Request.Context(), clinicID)
		if err != nil {
			handler.RespondWithError(c, err)
			return
		}
		professionalID = professional.ID
	}

	slots, err := h.availability.Resolve(c.Request.Context(), availability.Query{
		ClinicID:       clinicID,
		ProfessionalID: professionalID,
		Date:           query.Date,
	})
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) ListProfessionals(c *gin.Context) {
	clinicID, ok := h.clinic(c)
	if !ok {
		return
	}

	professionals, err := h.professionals.ListProfessionals(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, professionals)
}

func (h *Handler) FindClients(c *gin.Context) {
	clinicID, ok := h.clinic(c)
	if !ok {
		return
	}

	clients, err := h.clients.FindByPhone(c.Request.Context(), clinicID, c.Query("phone"))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) CreateClient(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}

	var req model.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

type appointmentsQuery struct {
	ClientID string `form:"clientId" binding:"required,uuid"`
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}

	var query appointmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	appointments, _, err := h.appointments.List(c.Request.Context(), clinicID, model.AppointmentFilters{
		Page:     model.Page{Limit: 200},
		ClientID: query.ClientID,
	})
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}
	req, ok := appointmentHandler.BindRequest(c, clinicID)
	if !ok {
		return
	}
	in, ok := appointmentHandler.CreateInput(c, clinicID, req)
	if !ok {
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), in)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	req, ok := appointmentHandler.BindRequest(c, clinicID)
	if !ok {
		return
	}

	if _, err := h.appointments.Update(c.Request.Context(), appointmentHandler.UpdateInput(clinicID, id, req)); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.RespondWithStatus(c)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.appointments.Cancel(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	handler.RespondWithStatus(c)
}

// clinic parses the path clinic and checks that it exists, so listings
// of an unknown clinic answer 404 rather than an empty array.
func (h *Handler) clinic(c *gin.Context) (uuid.UUID, bool) {
	clinicID, ok := handler.PathID(c, "clinicId")
	if !ok {
		return uuid.Nil, false
	}
	if _, err := h.clinics.GetClinic(c.Request.Context(), clinicID); err != nil {
		handler.RespondWithError(c, err)
		return uuid.Nil, false
	}
	return clinicID, true
}
