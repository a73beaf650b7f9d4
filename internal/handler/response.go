package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/httputil"
	"github.com/jwalitptl/scheduling-api/pkg/validator"
)

// RespondWithError maps domain errors to HTTP errors and writes them.
func RespondWithError(c *gin.Context, err error) {
	httputil.RespondWithError(c, MapError(err))
}

// MapError converts service errors to an AppError. Unknown errors become
// internal errors.
func MapError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var inputErr *model.InputError
	switch {
	case errors.As(err, &inputErr):
		return apperrors.Validation(inputErr.Fields)
	case errors.Is(err, model.ErrInvalidInput):
		return apperrors.BadRequest("invalid input", err)
	case errors.Is(err, model.ErrClinicNotFound):
		return apperrors.NotFound(model.ErrClinicNotFound.Error(), err)
	case errors.Is(err, model.ErrProfessionalNotFound):
		return apperrors.NotFound(model.ErrProfessionalNotFound.Error(), err)
	case errors.Is(err, model.ErrClientNotFound):
		return apperrors.NotFound(model.ErrClientNotFound.Error(), err)
	case errors.Is(err, model.ErrAppointmentNotFound):
		return apperrors.NotFound(model.ErrAppointmentNotFound.Error(), err)
	case errors.Is(err, model.ErrSlotUnavailable):
		return apperrors.Conflict(model.ErrSlotUnavailable.Error(), err)
	case errors.Is(err, model.ErrClientConflict):
		return apperrors.Conflict(model.ErrClientConflict.Error(), err)
	case errors.Is(err, model.ErrInvalidTransition):
		return apperrors.Conflict(err.Error(), err)
	}
	return apperrors.Internal(err)
}

// BindError turns a binding failure into a 400 with per-field messages.
func BindError(err error) *apperrors.AppError {
	if fields, ok := validator.Fields(err); ok {
		return apperrors.Validation(fields)
	}
	return apperrors.BadRequest("invalid request body", err)
}

// PathID parses a UUID path parameter and answers 400 when it is not one.
func PathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation(map[string]string{param: "must be a UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// ClinicID returns the clinic authorized for this request, falling back
// to the clinicId path parameter.
func ClinicID(c *gin.Context) (uuid.UUID, bool) {
	if id, ok := middleware.ClinicID(c); ok {
		return id, true
	}
	return PathID(c, "clinicId")
}

// RespondWithStatus writes a bare {"success": true}.
func RespondWithStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
