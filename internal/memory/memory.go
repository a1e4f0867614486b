// Package memory is an in-memory store used as the default development
// backend and as the test double for the HTTP and service layers. Its
// aggregates are computed in process with the stats reductions, which is
// behaviorally equivalent to the SQL pushdown the SQLite store performs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/stats"
	"expensetracker/internal/store"
)

type Store struct {
	mu         sync.Mutex
	nextID     int64
	expenses   []core.Expense
	users      []core.User
	categories []core.Category
	events     []store.ExpenseEvent
}

// New creates a store holding the given reference users and categories.
func New(users []core.User, categories []core.Category) *Store {
	return &Store{nextID: 1, users: users, categories: categories}
}

// NewWithDefaults creates a store seeded like a fresh SQLite database.
func NewWithDefaults() *Store {
	return New(
		[]core.User{{ID: 1, Name: "Personal"}},
		[]core.Category{
			{ID: 1, Name: "Food"},
			{ID: 2, Name: "Transport"},
			{ID: 3, Name: "Housing"},
			{ID: 4, Name: "Utilities"},
			{ID: 5, Name: "Health"},
			{ID: 6, Name: "Entertainment"},
			{ID: 7, Name: "Shopping"},
			{ID: 8, Name: "Other"},
		},
	)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", e.ID, store.ErrNotFound)
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
}

func (s *Store) ListExpenses(_ context.Context, f store.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	return out, nil
}

func matches(e core.Expense, f store.Filter) bool {
	if f.UserID != nil && e.UserID != *f.UserID {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && e.Date.After(f.To.Time) {
		return false
	}
	return true
}

// TopDays implements store.AggregateReader via the in-process reduction.
func (s *Store) TopDays(_ context.Context, userID int64, n int) ([]stats.DayTotal, error) {
	return stats.TopSpendingDays(s.userExpenses(userID), n), nil
}

// MonthlyTotals implements store.AggregateReader via the in-process reduction.
func (s *Store) MonthlyTotals(_ context.Context, userID int64, limit int) ([]stats.MonthTotal, error) {
	monthly := stats.MonthlyTotals(s.userExpenses(userID))
	if limit >= 0 && len(monthly) > limit {
		monthly = monthly[:limit]
	}
	return monthly, nil
}

func (s *Store) userExpenses(userID int64) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.User(nil), s.users...), nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) UserExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CategoryExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// RecordExpenseEvent implements store.EventRecorder.
func (s *Store) RecordExpenseEvent(_ context.Context, ev store.ExpenseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the recorded audit trail.
func (s *Store) Events() []store.ExpenseEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.ExpenseEvent(nil), s.events...)
}
