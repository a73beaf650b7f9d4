package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{model.NewInputError("date", "bad"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", model.ErrClinicNotFound), http.StatusNotFound},
		{model.ErrProfessionalNotFound, http.StatusNotFound},
		{model.ErrClientNotFound, http.StatusNotFound},
		{model.ErrAppointmentNotFound, http.StatusNotFound},
		{model.ErrSlotUnavailable, http.StatusConflict},
		{model.ErrClientConflict, http.StatusConflict},
		{fmt.Errorf("%w: nope", model.ErrInvalidTransition), http.StatusConflict},
		{apperrors.Forbidden("clinic mismatch"), http.StatusForbidden},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, MapError(tt.err).StatusCode(), tt.err.Error())
	}

	mapped := MapError(model.NewInputError("date", "must be a date"))
	assert.Equal(t, map[string]string{"date": "must be a date"}, mapped.Fields)
}
