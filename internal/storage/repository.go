package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row. Callers branch
// on it with errors.Is to map storage misses to 404s.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
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

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, first_name, last_name, password_hash) VALUES (?, ?, ?, ?)`,
		u.Email, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user id: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at FROM users WHERE id = ?`, id)

	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at FROM users WHERE email = ?`, email)

	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// --- incomes ---

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in *core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, name, amount, frequency, custom_days, last_paid, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.UserID, in.Name, in.Amount, in.Frequency, in.CustomDays, nullTime(in.LastPaid), in.Active)
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create income id: %w", err)
	}
	slog.InfoContext(ctx, "Income created",
		"id", in.ID,
		"user_id", in.UserID,
		"name", in.Name,
		"frequency", in.Frequency)
	return nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (*core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, amount, frequency, custom_days, last_paid, active, created_at
		 FROM incomes WHERE id = ?`, id)

	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, amount, frequency, custom_days, last_paid, active, created_at
		 FROM incomes WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()
	return collectIncomes(rows)
}

// ListActiveIncomes returns every active income across all users. The
// payday worker sweeps this set once per interval.
func (r *SQLiteRepository) ListActiveIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, amount, frequency, custom_days, last_paid, active, created_at
		 FROM incomes WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active incomes: %w", err)
	}
	defer rows.Close()
	return collectIncomes(rows)
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in *core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET name = ?, amount = ?, frequency = ?, custom_days = ?, last_paid = ?, active = ?
		 WHERE id = ?`,
		in.Name, in.Amount, in.Frequency, in.CustomDays, nullTime(in.LastPaid), in.Active, in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return checkAffected(res, "update income")
}

func (r *SQLiteRepository) SetIncomeActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE incomes SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set income active: %w", err)
	}
	return checkAffected(res, "set income active")
}

// SetIncomeLastPaid advances the payday anchor after a processed payday.
func (r *SQLiteRepository) SetIncomeLastPaid(ctx context.Context, id int64, paid time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE incomes SET last_paid = ? WHERE id = ?`, paid, id)
	if err != nil {
		return fmt.Errorf("set income last paid: %w", err)
	}
	return checkAffected(res, "set income last paid")
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return checkAffected(res, "delete income")
}

func scanIncome(row *sql.Row) (*core.Income, error) {
	var in core.Income
	var lastPaid sql.NullTime
	err := row.Scan(&in.ID, &in.UserID, &in.Name, &in.Amount, &in.Frequency,
		&in.CustomDays, &lastPaid, &in.Active, &in.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastPaid.Valid {
		in.LastPaid = &lastPaid.Time
	}
	return &in, nil
}

func collectIncomes(rows *sql.Rows) ([]core.Income, error) {
	var out []core.Income
	for rows.Next() {
		var in core.Income
		var lastPaid sql.NullTime
		if err := rows.Scan(&in.ID, &in.UserID, &in.Name, &in.Amount, &in.Frequency,
			&in.CustomDays, &lastPaid, &in.Active, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if lastPaid.Valid {
			in.LastPaid = &lastPaid.Time
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, total, date, payee, category_id, notes,
		                           is_recurring, recur_date, expense_type, tax_related, travel_related)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Total, t.Date, t.Payee, t.CategoryID, t.Notes,
		t.IsRecurring, nullTime(t.RecurDate), string(t.ExpenseType), t.TaxRelated, t.TravelRelated)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create transaction id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, total, date, payee, category_id, notes,
		        is_recurring, recur_date, expense_type, tax_related, travel_related
		 FROM transactions WHERE id = ?`, id)

	var t core.Transaction
	var recurDate sql.NullTime
	var expenseType string
	err := row.Scan(&t.ID, &t.UserID, &t.Total, &t.Date, &t.Payee, &t.CategoryID, &t.Notes,
		&t.IsRecurring, &recurDate, &expenseType, &t.TaxRelated, &t.TravelRelated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if recurDate.Valid {
		t.RecurDate = &recurDate.Time
	}
	t.ExpenseType = core.ExpenseType(expenseType)
	return &t, nil
}

// ListTransactions returns a user's transactions with date >= from and
// date < to. A zero `to` means no upper bound.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	query := `SELECT id, user_id, total, date, payee, category_id, notes,
	                 is_recurring, recur_date, expense_type, tax_related, travel_related
	          FROM transactions WHERE user_id = ? AND date >= ?`
	args := []any{userID, from}
	if !to.IsZero() {
		query += ` AND date < ?`
		args = append(args, to)
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var recurDate sql.NullTime
		var expenseType string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Total, &t.Date, &t.Payee, &t.CategoryID, &t.Notes,
			&t.IsRecurring, &recurDate, &expenseType, &t.TaxRelated, &t.TravelRelated); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if recurDate.Valid {
			t.RecurDate = &recurDate.Time
		}
		t.ExpenseType = core.ExpenseType(expenseType)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET total = ?, date = ?, payee = ?, category_id = ?, notes = ?,
		        is_recurring = ?, recur_date = ?, expense_type = ?, tax_related = ?, travel_related = ?
		 WHERE id = ?`,
		t.Total, t.Date, t.Payee, t.CategoryID, t.Notes,
		t.IsRecurring, nullTime(t.RecurDate), string(t.ExpenseType), t.TaxRelated, t.TravelRelated, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return checkAffected(res, "update transaction")
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkAffected(res, "delete transaction")
}

// --- budgets ---

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO budgets (user_id, name, month, income, total_planned) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Month, b.Income, b.TotalPlanned)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create budget id: %w", err)
	}

	if err := insertCategories(ctx, tx, b.ID, b.Categories); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"user_id", b.UserID,
		"month", b.Month,
		"categories", len(b.Categories))
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, month, income, total_planned FROM budgets WHERE id = ?`, id)

	var b core.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Income, &b.TotalPlanned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}

	if b.Categories, err = r.loadCategories(ctx, b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *SQLiteRepository) GetBudgetByMonth(ctx context.Context, userID int64, month string) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, month, income, total_planned
		 FROM budgets WHERE user_id = ? AND month = ? ORDER BY id DESC LIMIT 1`, userID, month)

	var b core.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Income, &b.TotalPlanned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget by month: %w", err)
	}

	if b.Categories, err = r.loadCategories(ctx, b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, month, income, total_planned
		 FROM budgets WHERE user_id = ? ORDER BY month, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Income, &b.TotalPlanned); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Categories, err = r.loadCategories(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateBudget persists the budget header and replaces its category rows
// wholesale. The in-memory budget is the authority; replacing the rows
// keeps derived totals and sizing fields from drifting apart.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b *core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE budgets SET name = ?, month = ?, income = ?, total_planned = ? WHERE id = ?`,
		b.Name, b.Month, b.Income, b.TotalPlanned, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if err := checkAffected(res, "update budget"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear budget categories: %w", err)
	}
	if err := insertCategories(ctx, tx, b.ID, b.Categories); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return checkAffected(res, "delete budget")
}

func (r *SQLiteRepository) loadCategories(ctx context.Context, budgetID int64) ([]*core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, category_limit, planned_amount, planned_percent
		 FROM budget_categories WHERE budget_id = ? ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("load budget categories: %w", err)
	}
	defer rows.Close()

	var out []*core.Category
	for rows.Next() {
		var c core.Category
		var pct sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Limit, &c.PlannedAmount, &pct); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		if pct.Valid {
			p := pct.Float64
			c.PlannedPercent = &p
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func insertCategories(ctx context.Context, tx *sql.Tx, budgetID int64, cats []*core.Category) error {
	for _, c := range cats {
		var pct sql.NullFloat64
		if c.PlannedPercent != nil {
			pct = sql.NullFloat64{Float64: *c.PlannedPercent, Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO budget_categories (budget_id, name, type, category_limit, planned_amount, planned_percent)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			budgetID, c.Name, c.Type, c.Limit, c.PlannedAmount, pct)
		if err != nil {
			return fmt.Errorf("insert budget category: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert budget category id: %w", err)
		}
	}
	return nil
}

// --- notifications ---

func (r *SQLiteRepository) CreateNotification(ctx context.Context, n *core.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, kind, title, message, read) VALUES (?, ?, ?, ?, ?)`,
		n.UserID, n.Kind, n.Title, n.Message, n.Read)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create notification id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetNotification(ctx context.Context, id int64) (*core.Notification, error) {
	var n core.Notification
	var delivered sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, kind, title, message, read, delivered_at, created_at
		 FROM notifications WHERE id = ?`, id).
		Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Read, &delivered, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if delivered.Valid {
		n.DeliveredAt = &delivered.Time
	}
	return &n, nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	query := `SELECT id, user_id, kind, title, message, read, delivered_at, created_at
	          FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var n core.Notification
		var delivered sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Read, &delivered, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if delivered.Valid {
			n.DeliveredAt = &delivered.Time
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return checkAffected(res, "mark notification read")
}

// MarkNotificationDelivered stamps the delivery time the notify worker
// handed the notification off at.
func (r *SQLiteRepository) MarkNotificationDelivered(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET delivered_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("mark notification delivered: %w", err)
	}
	return checkAffected(res, "mark notification delivered")
}

func (r *SQLiteRepository) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// --- helpers ---

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s affected rows: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
