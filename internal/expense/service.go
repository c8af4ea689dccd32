package expense

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"kakeibo/internal/models"
	"kakeibo/internal/storage"
)

var (
	// ErrInvalidInput is returned when a required field is missing or the
	// amount does not parse as a non-negative integer. The text is shown
	// to users as-is.
	ErrInvalidInput = errors.New("spent_date, category and amount are required (amount must be a non-negative integer)")

	// ErrNotFound is returned when a delete matches no row, either
	// because the id does not exist or the row belongs to someone else.
	ErrNotFound = errors.New("expense not found")
)

// Service implements the expense operations over the store. A nil owner
// on any call means unscoped, single-tenant access.
type Service struct {
	db *storage.DB
}

// NewService creates an expense service backed by db.
func NewService(db *storage.DB) *Service {
	return &Service{db: db}
}

// Create validates and persists a new expense, returning its id.
// spent_date and category must be non-empty after trimming and amount
// must parse as an integer >= 0; created_at is set by the store.
func (s *Service) Create(ctx context.Context, owner *int64, spentDate, category, amountRaw, memo string) (int64, error) {
	spentDate = strings.TrimSpace(spentDate)
	category = strings.TrimSpace(category)
	memo = strings.TrimSpace(memo)

	amount, err := strconv.ParseInt(strings.TrimSpace(amountRaw), 10, 64)
	if spentDate == "" || category == "" || err != nil || amount < 0 {
		return 0, ErrInvalidInput
	}

	id, err := s.db.CreateExpense(ctx, owner, spentDate, category, amount, memo)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "expense created",
		"id", id,
		"spent_date", spentDate,
		"category", category,
		"amount", amount)

	return id, nil
}

// List returns all visible expenses plus the sum of their amounts. The
// total is zero, never absent, when there are no rows.
func (s *Service) List(ctx context.Context, owner *int64) ([]models.Expense, int64, error) {
	items, err := s.db.ListExpenses(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.db.SumAmounts(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Delete removes the expense with the given id. Deleting a missing or
// non-owned row reports ErrNotFound; the second delete of the same id
// does too.
func (s *Service) Delete(ctx context.Context, id int64, owner *int64) error {
	deleted, err := s.db.DeleteExpense(ctx, id, owner)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "expense deleted", "id", id)
	return nil
}
