package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
)

// AppointmentPurger deletes cancelled appointments older than retention.
type AppointmentPurger interface {
	PurgeCancelled(ctx context.Context, retention time.Duration) (int64, error)
}

type RetentionConfig struct {
	CancelledRetention time.Duration
	// ProcessedRetention is how long published outbox events are kept.
	ProcessedRetention time.Duration
	Interval           time.Duration
}

// RetentionWorker removes cancelled appointments and published outbox
// events on a fixed interval.
type RetentionWorker struct {
	appointments AppointmentPurger
	outbox       repository.OutboxRepository
	config       RetentionConfig
	clock        clock.Clock
	logger       *logger.Logger
}

func NewRetentionWorker(appointments AppointmentPurger, outbox repository.OutboxRepository, config RetentionConfig, clk clock.Clock, log *logger.Logger) *RetentionWorker {
	return &RetentionWorker{
		appointments: appointments,
		outbox:       outbox,
		config:       config,
		clock:        clk,
		logger:       log,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	if w.config.Interval <= 0 {
		w.logger.Warn("Retention worker disabled", "interval", w.config.Interval.String())
		return
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Retention cleanup failed")
			}
		}
	}
}

// Cleanup runs one pass. A zero retention skips that kind of row.
func (w *RetentionWorker) Cleanup(ctx context.Context) error {
	if w.config.CancelledRetention > 0 {
		n, err := w.appointments.PurgeCancelled(ctx, w.config.CancelledRetention)
		if err != nil {
			return err
		}
		w.logger.Info("Purged cancelled appointments", "count", n, "retention", w.config.CancelledRetention.String())
	}

	if w.config.ProcessedRetention > 0 {
		cutoff := w.clock.Now().Add(-w.config.ProcessedRetention)
		n, err := w.outbox.DeleteProcessedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to delete processed outbox events: %w", err)
		}
		w.logger.Info("Deleted processed outbox events", "count", n, "before", cutoff.Format(time.RFC3339))
	}
	return nil
}
