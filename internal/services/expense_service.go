package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// ExpenseStore is everything the expense service needs from a backend.
type ExpenseStore interface {
	store.ExpenseStore
	store.TaxonomyReader
}

// ExpenseService owns the expense write path: validation against the
// reference data, persistence, and the best-effort event publish.
type ExpenseService struct {
	store      ExpenseStore
	amqpClient *amqp.Client
}

func NewExpenseService(st ExpenseStore, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:      st,
		amqpClient: amqpClient,
	}
}

// Create validates and persists a new expense, then publishes a created
// event. A publish failure is logged, never surfaced: the expense is
// already durable.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (int64, error) {
	if err := s.validate(ctx, e); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionCreated, id, e.UserID))
	return id, nil
}

// Update validates and replaces an existing expense in place.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) error {
	if err := s.validate(ctx, e); err != nil {
		return err
	}

	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionUpdated, e.ID, e.UserID))
	return nil
}

// Delete hard-deletes an expense.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	// Fetch first so the deleted event can carry the owning user.
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.ActionDeleted, id, e.UserID))
	return nil
}

// Get returns a single expense by id.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// List returns expenses matching the filter, newest first.
func (s *ExpenseService) List(ctx context.Context, f store.Filter) ([]core.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListUsers returns the reference users.
func (s *ExpenseService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

// ListCategories returns the reference categories.
func (s *ExpenseService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// validate collects every constraint violation at once, including the
// reference checks against users and categories. Malformed rows never
// reach the store or the aggregation layer.
func (s *ExpenseService) validate(ctx context.Context, e core.Expense) error {
	var errs core.ValidationErrors
	if err := e.Validate(); err != nil {
		errs, _ = core.AsValidationErrors(err)
	}

	if e.UserID > 0 {
		ok, err := s.store.UserExists(ctx, e.UserID)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !ok {
			errs = errs.Add("user_id", fmt.Sprintf("user %d does not exist", e.UserID))
		}
	}

	if strings.TrimSpace(e.Category) != "" {
		ok, err := s.store.CategoryExists(ctx, e.Category)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !ok {
			errs = errs.Add("category", fmt.Sprintf("category %q does not exist", e.Category))
		}
	}

	return errs.OrNil()
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"error", err,
			"action", ev.Action,
			"expense_id", ev.ExpenseID)
	}
}

// Close releases the AMQP connection, if any.
func (s *ExpenseService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
