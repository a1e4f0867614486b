package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"expensetracker/internal/core"
	"expensetracker/internal/stats"
	"expensetracker/internal/store"
)

// SQLiteRepository is the durable expense store. It is an injected handle:
// callers receive it from the constructor and pass it down, there is no
// package-level connection.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma rides on the DSN so every pooled connection enforces
	// foreign keys, not just the first one.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense implements store.ExpenseStore.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category, amount_cents, spend_date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Category, e.Amount.Cents, e.Date.String(), e.Description)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	return id, nil
}

// GetExpense implements store.ExpenseStore.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, amount_cents, spend_date, description
		 FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// UpdateExpense implements store.ExpenseStore.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET user_id = ?, category = ?, amount_cents = ?, spend_date = ?, description = ?
		 WHERE id = ?`,
		e.UserID, e.Category, e.Amount.Cents, e.Date.String(), e.Description, e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %d: %w", e.ID, store.ErrNotFound)
	}
	return nil
}

// DeleteExpense implements store.ExpenseStore. Deletes are hard deletes.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// ListExpenses implements store.ExpenseStore. The WHERE clause is built
// from whichever filter fields are set.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f store.Filter) ([]core.Expense, error) {
	query := `SELECT id, user_id, category, amount_cents, spend_date, description FROM expenses`
	var conds []string
	var args []any

	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, *f.Category)
	}
	if f.From != nil {
		conds = append(conds, "spend_date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		conds = append(conds, "spend_date <= ?")
		args = append(args, f.To.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY spend_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// TopDays implements store.AggregateReader with the grouping pushed down
// to SQLite. Ordering matches the in-process reduction: total descending,
// date descending on ties.
func (r *SQLiteRepository) TopDays(ctx context.Context, userID int64, n int) ([]stats.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT spend_date, SUM(amount_cents) AS total
		 FROM expenses
		 WHERE user_id = ?
		 GROUP BY spend_date
		 ORDER BY total DESC, spend_date DESC
		 LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("query top days: %w", err)
	}
	defer rows.Close()

	totals := []stats.DayTotal{}
	for rows.Next() {
		var dateStr string
		var cents int64
		if err := rows.Scan(&dateStr, &cents); err != nil {
			return nil, fmt.Errorf("scan day total: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse day total date %q: %w", dateStr, err)
		}
		totals = append(totals, stats.DayTotal{Date: date, Total: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day totals: %w", err)
	}
	return totals, nil
}

// MonthlyTotals implements store.AggregateReader, grouping on the YYYY-MM
// prefix of the stored date, most recent month first.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, userID int64, limit int) ([]stats.MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(spend_date, 1, 7) AS month, SUM(amount_cents) AS total
		 FROM expenses
		 WHERE user_id = ?
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query monthly totals: %w", err)
	}
	defer rows.Close()

	totals := []stats.MonthTotal{}
	for rows.Next() {
		var month string
		var cents int64
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		year, mon, err := parseYearMonth(month)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", month, err)
		}
		totals = append(totals, stats.MonthTotal{Year: year, Month: mon, Total: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return totals, nil
}

// ListUsers implements store.TaxonomyReader.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListCategories implements store.TaxonomyReader.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UserExists implements store.TaxonomyReader.
func (r *SQLiteRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return true, nil
}

// CategoryExists implements store.TaxonomyReader.
func (r *SQLiteRepository) CategoryExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category %q: %w", name, err)
	}
	return true, nil
}

// CreateUser inserts a reference user. Not exposed over HTTP; used by
// seeding and tests.
func (r *SQLiteRepository) CreateUser(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// CreateCategory inserts a reference category. Not exposed over HTTP; used
// by seeding and tests.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// RecordExpenseEvent implements store.EventRecorder for the audit worker.
func (r *SQLiteRepository) RecordExpenseEvent(ctx context.Context, ev store.ExpenseEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_events (action, expense_id, user_id, occurred_at)
		 VALUES (?, ?, ?, ?)`,
		ev.Action, ev.ExpenseID, ev.UserID, ev.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("record expense event: %w", err)
	}
	return nil
}

// CountExpenseEvents returns the number of archived events for an expense.
func (r *SQLiteRepository) CountExpenseEvents(ctx context.Context, expenseID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expense_events WHERE expense_id = ?`, expenseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expense events: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (core.Expense, error) {
	var e core.Expense
	var dateStr string
	if err := row.Scan(&e.ID, &e.UserID, &e.Category, &e.Amount.Cents, &dateStr, &e.Description); err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse spend_date %q: %w", dateStr, err)
	}
	e.Date = date
	return e, nil
}

func parseYearMonth(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed year-month %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}
