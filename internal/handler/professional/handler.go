package professional

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

type Service interface {
	CreateProfessional(ctx context.Context, clinicID uuid.UUID, req *model.ProfessionalRequest) (*model.Professional, error)
	GetProfessional(ctx context.Context, clinicID, id uuid.UUID) (*model.Professional, error)
	ListProfessionals(ctx context.Context, clinicID uuid.UUID) ([]*model.Professional, error)
	UpdateProfessional(ctx context.Context, clinicID, id uuid.UUID, req *model.ProfessionalRequest) (*model.Professional, error)
	DeleteProfessional(ctx context.Context, clinicID, id uuid.UUID) error
}

type Availability interface {
	AvailableTimes(ctx context.Context, q availability.Query) []model.Slot
	Today(loc *time.Location) (string, time.Time)
}

type Handler struct {
	service      Service
	availability Availability
	clinics      availability.ClinicLookup
}

func NewHandler(service Service, avail Availability, clinics availability.ClinicLookup) *Handler {
	return &Handler{service: service, availability: avail, clinics: clinics}
}

func (h *Handler) RegisterRoutes(clinic *gin.RouterGroup) {
	professionals := clinic.Group("/professionals")
	{
		professionals.GET("", h.ListProfessionals)
		professionals.POST("", h.CreateProfessional)
		professionals.GET("/:id", h.GetProfessional)
		professionals.PUT("/:id", h.UpdateProfessional)
		professionals.DELETE("/:id", h.DeleteProfessional)
	}
}

// RegisterAvailability mounts the advisory available-times route. It
// expects optional session authentication and never fails.
func (h *Handler) RegisterAvailability(clinic *gin.RouterGroup) {
	clinic.GET("/professionals/:id/available-times", h.AvailableTimes)
}

func (h *Handler) CreateProfessional(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	var req model.ProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	professional, err := h.service.CreateProfessional(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, professional)
}

func (h *Handler) GetProfessional(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	professional, err := h.service.GetProfessional(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, professional)
}

func (h *Handler) ListProfessionals(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	professionals, err := h.service.ListProfessionals(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, professionals)
}

func (h *Handler) UpdateProfessional(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.ProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	professional, err := h.service.UpdateProfessional(c.Request.Context(), clinicID, id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, professional)
}

func (h *Handler) DeleteProfessional(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProfessional(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableTimes answers 200 with a slot array in every case. Slots that
// already started today are left out.
func (h *Handler) AvailableTimes(c *gin.Context) {
	empty := []model.Slot{}

	clinicID, err := uuid.Parse(c.Param("clinicId"))
	if err != nil {
		c.JSON(http.StatusOK, empty)
		return
	}
	professionalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, empty)
		return
	}
	claims, ok := middleware.Session(c)
	if !ok || !claims.HasClinic(clinicID) {
		c.JSON(http.StatusOK, empty)
		return
	}

	q := availability.Query{
		ClinicID:       clinicID,
		ProfessionalID: professionalID,
		Date:           c.Query("date"),
	}
	if exclude, err := uuid.Parse(c.Query("exclude")); err == nil {
		q.ExcludeAppointmentID = &exclude
	}

	slots := h.availability.AvailableTimes(c.Request.Context(), q)
	if len(slots) == 0 {
		c.JSON(http.StatusOK, empty)
		return
	}

	clinic, err := h.clinics.GetClinic(c.Request.Context(), clinicID)
	if err != nil {
		c.JSON(http.StatusOK, empty)
		return
	}
	loc := h.clinics.Location(clinic)
	_, now := h.availability.Today(loc)
	c.JSON(http.StatusOK, availability.DropElapsed(slots, q.Date, now, loc))
}
