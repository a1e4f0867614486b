// Package store declares the ports between the services and whatever
// backend holds the expense data. Two implementations exist: the SQLite
// repository (internal/storage) and the in-memory store (internal/memory).
package store

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/stats"
)

// ErrNotFound reports a lookup for a row that does not exist. Stores wrap
// it so callers can match with errors.Is.
var ErrNotFound = errors.New("not found")

// Filter selects expense rows. Every field is independently optional; nil
// means "no constraint". Date bounds are inclusive.
type Filter struct {
	UserID   *int64
	Category *string
	From     *core.Date
	To       *core.Date
}

// ExpenseEvent is one entry of the expense audit trail, recorded by the
// worker from the AMQP event stream.
type ExpenseEvent struct {
	Action     string
	ExpenseID  int64
	UserID     int64
	OccurredAt time.Time
}

type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (int64, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
		ListExpenses(ctx context.Context, f Filter) ([]core.Expense, error)
	}

	// AggregateReader serves the grouped-sum reads behind the statistics
	// service. Implementations may push the grouping into the database or
	// reduce in process; the contracts are identical either way.
	AggregateReader interface {
		// TopDays returns up to n daily totals for the user, ranked by
		// total descending with date descending breaking ties.
		TopDays(ctx context.Context, userID int64, n int) ([]stats.DayTotal, error)
		// MonthlyTotals returns up to limit monthly totals for the user,
		// most recent month first.
		MonthlyTotals(ctx context.Context, userID int64, limit int) ([]stats.MonthTotal, error)
	}

	TaxonomyReader interface {
		ListUsers(ctx context.Context) ([]core.User, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		UserExists(ctx context.Context, id int64) (bool, error)
		CategoryExists(ctx context.Context, name string) (bool, error)
	}

	EventRecorder interface {
		RecordExpenseEvent(ctx context.Context, ev ExpenseEvent) error
	}
)
