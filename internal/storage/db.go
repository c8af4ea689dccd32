package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"kakeibo/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrUsernameTaken is returned when a user insert violates the unique
// username constraint.
var ErrUsernameTaken = errors.New("username already taken")

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection; cap the pool so every
	// statement sees the same database.
	if strings.Contains(path, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateExpense inserts a new expense and returns its id. A nil owner
// records an unscoped (single-tenant) expense.
func (db *DB) CreateExpense(ctx context.Context, owner *int64, spentDate, category string, amount int64, memo string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO expenses (user_id, spent_date, category, amount, memo) VALUES (?, ?, ?, ?, ?)",
		ownerArg(owner), spentDate, category, amount, memo,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return result.LastInsertId()
}

// ListExpenses retrieves expenses, newest first. With a nil owner all
// rows are returned ordered by spent_date then id descending; with an
// owner only that user's rows are returned, ordered by id descending.
func (db *DB) ListExpenses(ctx context.Context, owner *int64) ([]models.Expense, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if owner == nil {
		rows, err = db.conn.QueryContext(ctx,
			"SELECT id, user_id, spent_date, category, amount, memo, created_at FROM expenses ORDER BY spent_date DESC, id DESC")
	} else {
		rows, err = db.conn.QueryContext(ctx,
			"SELECT id, user_id, spent_date, category, amount, memo, created_at FROM expenses WHERE user_id = ? ORDER BY id DESC",
			*owner)
	}
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var (
			e   models.Expense
			uid sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &uid, &e.SpentDate, &e.Category, &e.Amount, &e.Memo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if uid.Valid {
			e.UserID = &uid.Int64
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// SumAmounts returns the total amount over all expenses, or over one
// user's expenses when owner is set. An empty table totals to zero.
func (db *DB) SumAmounts(ctx context.Context, owner *int64) (int64, error) {
	var (
		total int64
		err   error
	)
	if owner == nil {
		err = db.conn.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM expenses").Scan(&total)
	} else {
		err = db.conn.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ?", *owner).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// DeleteExpense removes the expense with the given id, restricted to
// the owner's rows when owner is set. It reports whether a row was
// actually removed.
func (db *DB) DeleteExpense(ctx context.Context, id int64, owner *int64) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if owner == nil {
		result, err = db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	} else {
		result, err = db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, *owner)
	}
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser creates a new user with the given username and password
// hash. A duplicate username surfaces as ErrUsernameTaken.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by exact username. A missing user
// is reported as (nil, nil), not an error.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func ownerArg(owner *int64) any {
	if owner == nil {
		return nil
	}
	return *owner
}
