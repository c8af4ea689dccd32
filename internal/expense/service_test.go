package expense

import (
	"context"
	"testing"

	"kakeibo/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return NewService(db)
}

func TestCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, nil, "2024-01-05", "food", "1200", "lunch")
	require.NoError(t, err)
	assert.Positive(t, id)

	items, total, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1200), total)
	assert.Equal(t, "lunch", items[0].Memo)
}

func TestCreateTrimsFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, "  2024-01-05  ", "  food ", " 1200 ", "  lunch ")
	require.NoError(t, err)

	items, _, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2024-01-05", items[0].SpentDate)
	assert.Equal(t, "food", items[0].Category)
	assert.Equal(t, "lunch", items[0].Memo)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		spentDate string
		category  string
		amount    string
	}{
		{"empty spent_date", "", "food", "100"},
		{"whitespace spent_date", "   ", "food", "100"},
		{"empty category", "2024-01-05", "", "100"},
		{"whitespace category", "2024-01-05", "  ", "100"},
		{"negative amount", "2024-01-05", "food", "-1"},
		{"non-numeric amount", "2024-01-05", "food", "abc"},
		{"fractional amount", "2024-01-05", "food", "12.5"},
		{"missing amount", "2024-01-05", "food", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, nil, tt.spentDate, tt.category, tt.amount, "")
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Nothing was persisted by the rejected creates
	items, total, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestCreateAcceptsZeroAmount(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), nil, "2024-01-05", "food", "0", "")
	assert.NoError(t, err)
}

func TestListTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, total, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, total, "total is zero, not absent, when empty")

	for _, amount := range []string{"100", "250", "7"} {
		_, err := svc.Create(ctx, nil, "2024-01-05", "food", amount, "")
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int64(357), total)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, nil, "2024-01-05", "food", "1200", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id, nil))

	// Idempotent: the second delete reports not-found
	assert.ErrorIs(t, svc.Delete(ctx, id, nil), ErrNotFound)
}

func TestDeleteOwnerScoped(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewService(db)
	ctx := context.Background()

	alice, err := db.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	bob, err := db.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	id, err := svc.Create(ctx, &alice.ID, "2024-01-05", "food", "1200", "")
	require.NoError(t, err)

	// A guessed id belonging to someone else reads as not-found
	assert.ErrorIs(t, svc.Delete(ctx, id, &bob.ID), ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, id, &alice.ID))
}
