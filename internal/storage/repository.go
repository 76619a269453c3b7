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

	"budgetbuddy/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteRepository is the single durable store: ledger, templates,
// savings goal, category registry and the auto-apply run marker.
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

// --- transactions ---

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, amount_cents, kind, category, description)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.Date.String(), tx.Amount.Cents, string(tx.Kind), tx.Category, tx.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"date", tx.Date.String())

	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions ORDER BY date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactionsInRange returns transactions with from <= date <= to.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions WHERE date >= ? AND date <= ?
		 ORDER BY date ASC, id ASC`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) ListTransactionsByCategory(ctx context.Context, filter string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions WHERE category LIKE ?
		 ORDER BY date DESC, id DESC`,
		"%"+filter+"%")
	if err != nil {
		return nil, fmt.Errorf("list transactions by category: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListByDescriptionPrefix returns transactions in year+month whose
// description starts with prefix. Dates are stored as zero-padded
// ISO strings, so the month window is a plain string range.
func (r *SQLiteRepository) ListByDescriptionPrefix(ctx context.Context, prefix string, year, month int) ([]core.Transaction, error) {
	start := fmt.Sprintf("%04d-%02d-01", year, month)
	nextYear, nextMon := nextMonth(year, month)
	next := fmt.Sprintf("%04d-%02d-01", nextYear, nextMon)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions
		 WHERE description LIKE ? || '%' AND date >= ? AND date < ?
		 ORDER BY date ASC, id ASC`,
		prefix, start, next)
	if err != nil {
		return nil, fmt.Errorf("list by description prefix: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// GetBalance returns the signed all-time balance in cents.
func (r *SQLiteRepository) GetBalance(ctx context.Context) (int64, error) {
	var balance sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE -amount_cents END)
		 FROM transactions`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Int64, nil
}

// GetTotals returns all-time income and expense sums, both positive.
func (r *SQLiteRepository) GetTotals(ctx context.Context) (income, expense int64, err error) {
	var in, out sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT
		   SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END),
		   SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END)
		 FROM transactions`).Scan(&in, &out)
	if err != nil {
		return 0, 0, fmt.Errorf("get totals: %w", err)
	}
	return in.Int64, out.Int64, nil
}

// --- recurring templates ---

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, rt core.RecurringTemplate) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_templates (name, amount_cents, category, description, due_day)
		 VALUES (?, ?, ?, ?, ?)`,
		rt.Name, rt.Amount.Cents, rt.Category, rt.Description, rt.DueDay)
	if err != nil {
		return 0, fmt.Errorf("insert template: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template saved",
		"id", id,
		"name", rt.Name,
		"due_day", rt.DueDay)

	return id, nil
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount_cents, category, description, due_day
		 FROM recurring_templates ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.RecurringTemplate
	for rows.Next() {
		var rt core.RecurringTemplate
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Amount.Cents, &rt.Category, &rt.Description, &rt.DueDay); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, rt)
	}
	return templates, rows.Err()
}

// --- savings goal ---

func (r *SQLiteRepository) GetSavingsGoal(ctx context.Context) (core.SavingsGoal, error) {
	var goal core.SavingsGoal
	err := r.db.QueryRowContext(ctx,
		`SELECT target_cents, saved_cents FROM savings_goal WHERE id = 1`).
		Scan(&goal.Target.Cents, &goal.Saved.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, nil
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get savings goal: %w", err)
	}
	return goal, nil
}

// SetSavingsTarget overwrites the target and keeps the saved amount.
func (r *SQLiteRepository) SetSavingsTarget(ctx context.Context, target core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goal (id, target_cents, saved_cents) VALUES (1, ?, 0)
		 ON CONFLICT(id) DO UPDATE SET target_cents = excluded.target_cents`,
		target.Cents)
	if err != nil {
		return fmt.Errorf("set savings target: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddToSavings(ctx context.Context, amount core.Money) (core.SavingsGoal, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE savings_goal SET saved_cents = saved_cents + ? WHERE id = 1`,
		amount.Cents)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("add to savings: %w", err)
	}
	return r.GetSavingsGoal(ctx)
}

// --- categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, protected FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Protected); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, protected) VALUES (?, 0)
		 ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// DeleteCategory refuses to remove protected entries so system
// postings (savings transfers, the fallback category) keep their
// referential meaning.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	var protected bool
	err := r.db.QueryRowContext(ctx,
		`SELECT protected FROM categories WHERE name = ?`, name).Scan(&protected)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if protected {
		return fmt.Errorf("category %q: %w", name, core.ErrProtectedCategory)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- auto-apply run marker ---

// GetRunMarker returns the zero Date when auto-apply never ran.
func (r *SQLiteRepository) GetRunMarker(ctx context.Context) (core.Date, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT last_run FROM scheduler_runs WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Date{}, nil
	}
	if err != nil {
		return core.Date{}, fmt.Errorf("get run marker: %w", err)
	}
	return parseDate(raw)
}

func (r *SQLiteRepository) SetRunMarker(ctx context.Context, day core.Date) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scheduler_runs (id, last_run) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET last_run = excluded.last_run`,
		day.String())
	if err != nil {
		return fmt.Errorf("set run marker: %w", err)
	}
	return nil
}

// --- mirror sync bookkeeping ---

// ListUnsyncedTransactions returns transactions the mirror worker has
// not confirmed yet, oldest first.
func (r *SQLiteRepository) ListUnsyncedTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, kind, category, description
		 FROM transactions WHERE synced = 0
		 ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
		kind string
	)
	if err := row.Scan(&tx.ID, &date, &tx.Amount.Cents, &kind, &tx.Category, &tx.Description); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = d
	tx.Kind = core.TxKind(kind)
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
