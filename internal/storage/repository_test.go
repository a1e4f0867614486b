package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(userID int64, category string, cents int64, date core.Date) core.Expense {
	return core.Expense{
		UserID:      userID,
		Category:    category,
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: "test expense",
	}
}

func TestMigrationsSeedReferenceData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	assert.Equal(t, "Personal", users[0].Name)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, categories)

	ok, err := repo.CategoryExists(ctx, "Food")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UserExists(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateExpense(ctx, testExpense(1, "Food", 1250, core.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.GetExpense(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got.Amount.Cents)
	assert.Equal(t, "2024-01-05", got.Date.String())
	assert.Equal(t, "Food", got.Category)

	got.Amount = core.Money{Cents: 2000}
	got.Description = "updated"
	require.NoError(t, repo.UpdateExpense(ctx, got))

	updated, err := repo.GetExpense(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), updated.Amount.Cents)
	assert.Equal(t, "updated", updated.Description)

	require.NoError(t, repo.DeleteExpense(ctx, id))

	_, err = repo.GetExpense(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateAndDeleteMissingExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.UpdateExpense(ctx, core.Expense{ID: 42, UserID: 1, Category: "Food",
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 1, 1)})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = repo.DeleteExpense(ctx, 42)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListExpensesFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bob, err := repo.CreateUser(ctx, "Bob")
	require.NoError(t, err)

	seed := []core.Expense{
		testExpense(1, "Food", 100, core.NewDate(2024, 1, 1)),
		testExpense(1, "Transport", 200, core.NewDate(2024, 1, 15)),
		testExpense(1, "Food", 300, core.NewDate(2024, 2, 1)),
		testExpense(bob, "Food", 400, core.NewDate(2024, 1, 10)),
	}
	for _, e := range seed {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	userID := int64(1)
	category := "Food"
	from := core.NewDate(2024, 1, 1)
	to := core.NewDate(2024, 1, 31)

	t.Run("no filter returns everything newest first", func(t *testing.T) {
		all, err := repo.ListExpenses(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "2024-02-01", all[0].Date.String())
	})

	t.Run("by user", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, store.Filter{UserID: &userID})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("by user and category", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, store.Filter{UserID: &userID, Category: &category})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		got, err := repo.ListExpenses(ctx, store.Filter{UserID: &userID, From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, e := range got {
			assert.Equal(t, 2024, e.Date.Year())
			assert.Equal(t, 1, int(e.Date.Month()))
		}
	})
}

func TestTopDaysPushdown(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Expense{
		testExpense(1, "Food", 5000, core.NewDate(2024, 1, 5)),
		testExpense(1, "Food", 3000, core.NewDate(2024, 1, 5)),
		testExpense(1, "Food", 10000, core.NewDate(2024, 1, 6)),
	}
	for _, e := range seed {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	got, err := repo.TopDays(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-06", got[0].Date.String())
	assert.Equal(t, int64(10000), got[0].Total.Cents)
	assert.Equal(t, "2024-01-05", got[1].Date.String())
	assert.Equal(t, int64(8000), got[1].Total.Cents)
}

func TestTopDaysTieBreakAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		_, err := repo.CreateExpense(ctx, testExpense(1, "Food", 2000, core.NewDate(2024, 3, day)))
		require.NoError(t, err)
	}

	got, err := repo.TopDays(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-05", got[0].Date.String())
	assert.Equal(t, "2024-03-04", got[1].Date.String())
	assert.Equal(t, "2024-03-03", got[2].Date.String())
}

func TestMonthlyTotalsPushdown(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Expense{
		testExpense(1, "Food", 10000, core.NewDate(2023, 12, 20)),
		testExpense(1, "Food", 20000, core.NewDate(2024, 1, 10)),
		testExpense(1, "Food", 5000, core.NewDate(2024, 1, 25)),
		testExpense(1, "Food", 30000, core.NewDate(2024, 2, 1)),
	}
	for _, e := range seed {
		_, err := repo.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	got, err := repo.MonthlyTotals(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2024, got[0].Year)
	assert.Equal(t, 2, got[0].Month)
	assert.Equal(t, int64(30000), got[0].Total.Cents)
	assert.Equal(t, 1, got[1].Month)
	assert.Equal(t, int64(25000), got[1].Total.Cents)

	all, err := repo.MonthlyTotals(ctx, 1, 12)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAggregatesIgnoreOtherUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bob, err := repo.CreateUser(ctx, "Bob")
	require.NoError(t, err)

	_, err = repo.CreateExpense(ctx, testExpense(1, "Food", 100, core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
	_, err = repo.CreateExpense(ctx, testExpense(bob, "Food", 99900, core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	got, err := repo.TopDays(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].Total.Cents)
}

func TestRecordExpenseEvent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ev := store.ExpenseEvent{
		Action:     "created",
		ExpenseID:  7,
		UserID:     1,
		OccurredAt: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.RecordExpenseEvent(ctx, ev))
	require.NoError(t, repo.RecordExpenseEvent(ctx, store.ExpenseEvent{
		Action: "deleted", ExpenseID: 7, UserID: 1, OccurredAt: time.Now(),
	}))

	n, err := repo.CountExpenseEvents(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
