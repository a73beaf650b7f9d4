package clinic

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

type Service interface {
	CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterCreate mounts POST /clinics on an authenticated group.
func (h *Handler) RegisterCreate(r *gin.RouterGroup) {
	r.POST("/clinics", h.CreateClinic)
}

// RegisterRoutes mounts the clinic's own routes on a clinic-scoped group.
func (h *Handler) RegisterRoutes(clinic *gin.RouterGroup) {
	clinic.GET("", h.GetClinic)
	clinic.PUT("", h.UpdateClinic)
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, clinic)
}

func (h *Handler) GetClinic(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}
