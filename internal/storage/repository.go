package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so lexicographic order of the stored text
// matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
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

// Ping reports whether the database is reachable; readiness checks use it.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ---- users ----

const userColumns = "id, name, email, password_hash, created_at"

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = decodeTime(createdAt)
	return &u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*core.User, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, encodeTime(now))
	if err != nil {
		return nil, mapError("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "User saved", "user_id", id, "email", email)

	return r.GetUser(ctx, id)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns (nil, nil) when no row matches the id.
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get user", err)
	}
	return u, nil
}

// GetUserByEmail returns (nil, nil) when no row matches the email.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return u, nil
}

// DeleteUser removes the user and returns the deleted record. Categories
// and transactions owned by the user are removed by the CASCADE rules.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) (*core.User, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("delete user %d: %w", id, core.ErrNotFound)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return nil, mapError("delete user", err)
	}

	slog.InfoContext(ctx, "User deleted", "user_id", id)
	return u, nil
}

// ---- categories ----

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, user_id FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID); err != nil {
			return nil, fmt.Errorf("list categories: scan: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, userID int64) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, user_id) VALUES (?, ?)`, name, userID)
	if err != nil {
		return nil, mapError("create category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create category: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "category_id", id, "user_id", userID, "name", name)

	return &core.Category{ID: id, Name: name, UserID: userID}, nil
}

// GetCategory is scoped to the owner: a foreign row behaves like an
// absent one. Returns (nil, nil) when no row matches.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id, userID int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, user_id FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.Name, &c.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get category", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) RenameCategory(ctx context.Context, id, userID int64, name string) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND user_id = ?`, name, id, userID)
	if err != nil {
		return nil, mapError("rename category", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rename category: rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("rename category %d: %w", id, core.ErrNotFound)
	}
	return &core.Category{ID: id, Name: name, UserID: userID}, nil
}

// DeleteCategory refuses to remove a category still referenced by
// transactions. The explicit count keeps the error readable; the
// RESTRICT foreign key backs it up against races.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id, userID int64) (*core.Category, error) {
	c, err := r.GetCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("delete category %d: %w", id, core.ErrNotFound)
	}

	var refs int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&refs); err != nil {
		return nil, mapError("delete category: count references", err)
	}
	if refs > 0 {
		return nil, fmt.Errorf("delete category %d: %d transactions still reference it: %w", id, refs, core.ErrConflict)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return nil, mapError("delete category", err)
	}

	slog.InfoContext(ctx, "Category deleted", "category_id", id, "user_id", userID)
	return c, nil
}

// ---- transactions ----

const txSelect = `
SELECT t.id, t.title, t.amount, t.type, t.user_id, t.category_id, t.created_at,
       c.id, c.name, c.user_id,
       u.id, u.name, u.email, u.created_at
FROM transactions t
JOIN categories c ON c.id = t.category_id
JOIN users u ON u.id = t.user_id`

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var (
		tx        core.Transaction
		cat       core.Category
		user      core.User
		txCreated string
		uCreated  string
	)
	err := row.Scan(
		&tx.ID, &tx.Title, &tx.Amount, &tx.Type, &tx.UserID, &tx.CategoryID, &txCreated,
		&cat.ID, &cat.Name, &cat.UserID,
		&user.ID, &user.Name, &user.Email, &uCreated,
	)
	if err != nil {
		return nil, err
	}
	tx.CreatedAt = decodeTime(txCreated)
	user.CreatedAt = decodeTime(uCreated)
	tx.Category = &cat
	tx.User = &user
	return &tx, nil
}

// ListTransactions returns the user's transactions joined with category
// and owner, newest first. Id breaks ties within one timestamp.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		txSelect+` WHERE t.user_id = ? ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, mapError("list transactions", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: scan: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction returns (nil, nil) when no row matches id and owner.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx,
		txSelect+` WHERE t.id = ? AND t.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get transaction", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (title, amount, type, user_id, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.Title, tx.Amount, string(tx.Type), tx.UserID, tx.CategoryID, encodeTime(now))
	if err != nil {
		return nil, mapError("create transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create transaction: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", id,
		"user_id", tx.UserID,
		"category_id", tx.CategoryID,
		"transaction_type", string(tx.Type),
		"amount", tx.Amount)

	return r.GetTransaction(ctx, id, tx.UserID)
}

// UpdateTransaction merges the supplied fields into the row and returns
// the re-fetched joined record.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id, userID int64, upd core.TransactionUpdate) (*core.Transaction, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *upd.Amount)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if len(sets) == 0 {
		// Nothing to merge; behave like a plain read.
		tx, err := r.GetTransaction(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if tx == nil {
			return nil, fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
		}
		return tx, nil
	}

	args = append(args, id, userID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return nil, mapError("update transaction", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction: rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", id, "user_id", userID)

	return r.GetTransaction(ctx, id, userID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	tx, err := r.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("delete transaction %d: %w", id, core.ErrNotFound)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return nil, mapError("delete transaction", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id, "user_id", userID)
	return tx, nil
}
