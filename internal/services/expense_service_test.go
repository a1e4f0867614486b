package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/memory"
	"expensetracker/internal/store"
)

func validExpense() core.Expense {
	return core.Expense{
		UserID:      1,
		Category:    "Food",
		Amount:      core.Money{Cents: 1500},
		Date:        core.NewDate(2024, 1, 5),
		Description: "groceries",
	}
}

func TestExpenseServiceCreate(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Amount.Cents)
}

func TestExpenseServiceCreateCollectsAllViolations(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)

	e := core.Expense{UserID: 0, Category: "", Amount: core.Money{Cents: -1}}
	_, err := svc.Create(context.Background(), e)
	require.Error(t, err)

	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok, "expected ValidationErrors, got %T", err)

	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"user_id", "category", "amount", "date"}, fields)
}

func TestExpenseServiceCreateRejectsUnknownReferences(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)

	e := validExpense()
	e.UserID = 99
	e.Category = "Yachts"
	_, err := svc.Create(context.Background(), e)
	require.Error(t, err)

	verrs, ok := core.AsValidationErrors(err)
	require.True(t, ok)
	require.Len(t, verrs, 2)
	assert.Equal(t, "user_id", verrs[0].Field)
	assert.Equal(t, "category", verrs[1].Field)
}

func TestExpenseServiceUpdate(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)

	e := validExpense()
	e.ID = id
	e.Amount = core.Money{Cents: 9900}
	require.NoError(t, svc.Update(ctx, e))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(9900), got.Amount.Cents)

	e.ID = 12345
	err = svc.Update(ctx, e)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestExpenseServiceDelete(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = svc.Delete(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestExpenseServiceListFilters(t *testing.T) {
	st := memory.New(
		[]core.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		[]core.Category{{ID: 1, Name: "Food"}, {ID: 2, Name: "Transport"}},
	)
	svc := NewExpenseService(st, nil)
	ctx := context.Background()

	seed := []core.Expense{
		{UserID: 1, Category: "Food", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1)},
		{UserID: 1, Category: "Transport", Amount: core.Money{Cents: 200}, Date: core.NewDate(2024, 2, 1)},
		{UserID: 2, Category: "Food", Amount: core.Money{Cents: 300}, Date: core.NewDate(2024, 1, 15)},
	}
	for _, e := range seed {
		_, err := svc.Create(ctx, e)
		require.NoError(t, err)
	}

	userID := int64(1)
	got, err := svc.List(ctx, store.Filter{UserID: &userID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	category := "Food"
	got, err = svc.List(ctx, store.Filter{Category: &category})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestExpenseServiceTaxonomy(t *testing.T) {
	svc := NewExpenseService(memory.NewWithDefaults(), nil)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, users)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
}
