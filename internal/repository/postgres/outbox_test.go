package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
)

func TestOutboxRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	event := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: json.RawMessage(`{}`)}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(sqlmock.AnyArg(), model.EventAppointmentCreated, json.RawMessage(`{}`), model.OutboxStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEqual(t, uuid.Nil, event.ID)
}

func TestOutboxRepository_CreateRejectsNilPayload(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewOutboxRepository(db)

	assert.Error(t, repo.Create(context.Background(), &model.OutboxEvent{EventType: "x"}))
}

func TestOutboxRepository_ClaimPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(25, int64(60000)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_type", "payload", "status", "error_message", "retry_count",
			"retry_at", "created_at", "processed_at", "updated_at",
		}).AddRow(id.String(), model.EventAppointmentCreated, []byte(`{"a":1}`), "pending", nil, 0, now, now, nil, now))

	events, err := repo.ClaimPending(context.Background(), 25, time.Minute)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.JSONEq(t, `{"a":1}`, string(events[0].Payload))
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	id := uuid.New()
	retryAt := time.Now().Add(time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("retry_count = retry_count + 1")).
		WithArgs(model.OutboxStatusPending, "timeout", &retryAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkFailed(context.Background(), id, "timeout", &retryAt))

	mock.ExpectExec(regexp.QuoteMeta("retry_count = retry_count + 1")).
		WithArgs(model.OutboxStatusFailed, "gave up", nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkFailed(context.Background(), id, "gave up", nil))
}
