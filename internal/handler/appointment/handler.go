package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, in appointmentService.CreateInput) (*model.Appointment, error)
	Update(ctx context.Context, in appointmentService.UpdateInput) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.AppointmentFilters) ([]*model.AppointmentDetails, int, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(clinic *gin.RouterGroup) {
	appointments := clinic.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}
}

// BindRequest binds an appointment payload and checks that a clinicId in
// the body matches the path.
func BindRequest(c *gin.Context, clinicID uuid.UUID) (*model.AppointmentRequest, bool) {
	var req model.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return nil, false
	}
	if req.ClinicID != nil && *req.ClinicID != clinicID {
		httputil.RespondWithError(c, apperrors.Forbidden("clinicId does not match the requested clinic"))
		return nil, false
	}
	return &req, true
}

// CreateInput builds the booking input; the client may be given as
// clientId or patientId.
func CreateInput(c *gin.Context, clinicID uuid.UUID, req *model.AppointmentRequest) (appointmentService.CreateInput, bool) {
	clientID, ok := req.Client()
	if !ok {
		httputil.RespondWithError(c, apperrors.Validation(map[string]string{"clientId": "is required"}))
		return appointmentService.CreateInput{}, false
	}
	return appointmentService.CreateInput{
		ClinicID:       clinicID,
		ClientID:       clientID,
		ProfessionalID: req.ProfessionalID,
		Date:           req.Date,
		Time:           req.Time,
		PriceInCents:   req.AppointmentPriceInCents,
	}, true
}

func UpdateInput(clinicID, id uuid.UUID, req *model.AppointmentRequest) appointmentService.UpdateInput {
	return appointmentService.UpdateInput{
		AppointmentID:  id,
		ClinicID:       clinicID,
		ProfessionalID: req.ProfessionalID,
		Date:           req.Date,
		Time:           req.Time,
		PriceInCents:   req.AppointmentPriceInCents,
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	req, ok := BindRequest(c, clinicID)
	if !ok {
		return
	}
	in, ok := CreateInput(c, clinicID, req)
	if !ok {
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}

	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	appointments, total, err := h.service.List(c.Request.Context(), clinicID, filters)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	page := filters.Page.Normalize()
	httputil.RespondWithPagination(c, appointments, page.Limit, page.Offset, total)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	req, ok := BindRequest(c, clinicID)
	if !ok {
		return
	}

	appointment, err := h.service.Update(c.Request.Context(), UpdateInput(clinicID, id, req))
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
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

	var req model.AppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), clinicID, id, req.Status)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	clinicID, ok := handler.ClinicID(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
