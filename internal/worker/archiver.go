// Package worker consumes expense lifecycle events from the broker and
// archives them into the audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/store"
)

// Archiver persists each consumed expense event as an audit record. The
// consumer nacks and requeues on a persistence error, so a transient
// store failure does not lose events.
type Archiver struct {
	recorder store.EventRecorder
}

func NewArchiver(recorder store.EventRecorder) *Archiver {
	return &Archiver{recorder: recorder}
}

// Handle records one event. It is the handler passed to ConsumeEvents.
func (a *Archiver) Handle(ev *amqp.ExpenseEvent) error {
	rec := store.ExpenseEvent{
		Action:     ev.Action,
		ExpenseID:  ev.ExpenseID,
		UserID:     ev.UserID,
		OccurredAt: ev.OccurredAt,
	}
	if err := a.recorder.RecordExpenseEvent(context.Background(), rec); err != nil {
		return fmt.Errorf("record expense event: %w", err)
	}

	slog.Info("Archived expense event",
		"action", ev.Action,
		"expense_id", ev.ExpenseID,
		"user_id", ev.UserID)
	return nil
}
