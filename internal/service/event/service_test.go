package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository/repotest"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

func TestEmitWritesPendingEvent(t *testing.T) {
	store := repotest.NewStore()
	svc := NewEventService(store.Outbox(), logger.Nop())

	appointmentID := uuid.New()
	err := svc.Emit(context.Background(), model.EventAppointmentCreated, model.AppointmentEvent{
		AppointmentID: appointmentID,
		Status:        model.AppointmentStatusScheduled,
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCreated, events[0].EventType)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)

	var payload model.AppointmentEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, appointmentID, payload.AppointmentID)
}

func TestEmitRejectsUnencodablePayload(t *testing.T) {
	store := repotest.NewStore()
	svc := NewEventService(store.Outbox(), logger.Nop())

	err := svc.Emit(context.Background(), "bad", make(chan int))
	assert.Error(t, err)
	assert.Empty(t, store.Events())
}
