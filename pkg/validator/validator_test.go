package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingForm struct {
	Date  string `json:"date" binding:"required,isodate"`
	Time  string `json:"time" binding:"required,clock"`
	From  string `json:"availableFromTime" binding:"omitempty,clockseconds"`
	Price int    `json:"appointmentPriceInCents" binding:"gte=0"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(bookingForm{Date: "2025-03-10", Time: "09:30", From: "09:00:00"}))

	err := v.Struct(bookingForm{Date: "10/03/2025", Time: "9h30", From: "09:00", Price: -1})
	require.Error(t, err)

	fields, ok := Fields(err)
	require.True(t, ok)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "must be a time in HH:mm format", fields["time"])
	assert.Equal(t, "must be a time in HH:mm:ss format", fields["availableFromTime"])
	assert.Equal(t, "is too small", fields["appointmentPriceInCents"])
}

func TestRequiredUsesJSONName(t *testing.T) {
	fields, ok := Fields(New().Struct(bookingForm{}))
	require.True(t, ok)
	assert.Equal(t, "is required", fields["date"])
	assert.Equal(t, "is required", fields["time"])
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	_, ok := Fields(assert.AnError)
	assert.False(t, ok)
}

func TestClockTagsRequirePadding(t *testing.T) {
	v := New()

	err := v.Struct(bookingForm{Date: "2025-3-10", Time: "9:30", From: "9:00:00"})
	require.Error(t, err)

	fields, ok := Fields(err)
	require.True(t, ok)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "must be a time in HH:mm format", fields["time"])
	assert.Equal(t, "must be a time in HH:mm:ss format", fields["availableFromTime"])
}
