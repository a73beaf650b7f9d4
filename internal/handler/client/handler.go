package client

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

type Service interface {
	CreateClient(ctx context.Context, clinicID uuid.UUID, req *model.ClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, clinicID, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, clinicID uuid.UUID, filters model.ClientFilters) ([]*model.Client, int, error)
	UpdateClient(ctx context.Context, clinicID, id uuid.UUID, req *model.ClientRequest) (*model.Client, error)
	SetStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ClientStatus) (*model.Client, error)
	DeleteClient(ctx context.Context, clinicID, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(clinic *gin.RouterGroup) {
	clients := clinic.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
		clients.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) CreateClient(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	var req model.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	client, err := h.service.CreateClient(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, client)
}

func (h *Handler) GetClient(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	client, err := h.service.GetClient(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, client)
}

func (h *Handler) ListClients(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	var filters model.ClientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	clients, total, err := h.service.ListClients(c.Request.Context(), clinicID, filters)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	page := filters.Page.Normalize()
	httputil.RespondWithPagination(c, clients, page.Limit, page.Offset, total)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	client, err := h.service.UpdateClient(c.Request.Context(), clinicID, id, &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, client)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	var req model.ClientStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	client, err := h.service.SetStatus(c.Request.Context(), clinicID, id, req.Status)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
