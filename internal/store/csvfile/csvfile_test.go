package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mykhata/internal/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestMissingFilesReadAsEmpty(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	txs, err := s.ListTransactions(ctx, "Alice")
	require.NoError(t, err)
	assert.Empty(t, txs)

	cats, err := s.ListCategories(ctx, "Alice")
	require.NoError(t, err)
	assert.Empty(t, cats)

	_, err = s.GetAccount(ctx, "Alice")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTransactionRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := core.Transaction{
		Namespace: "Alice",
		Date:      core.NewDate(2025, 7, 4),
		Kind:      core.Expense,
		Category:  "Food",
		Amount:    core.Money{Cents: 1299},
		Note:      "lunch, with a comma",
	}
	require.NoError(t, s.AppendTransaction(ctx, in))
	require.NoError(t, s.AppendTransaction(ctx, core.Transaction{
		Namespace: "Bob1",
		Date:      core.NewDate(2025, 7, 4),
		Kind:      core.Income,
		Category:  "Salary",
		Amount:    core.Money{Cents: 100},
	}))

	txs, err := s.ListTransactions(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, in, txs[0])
}

func TestFileCreatedWithHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.AppendTransaction(context.Background(), core.Transaction{
		Namespace: "Alice",
		Date:      core.NewDate(2025, 1, 1),
		Kind:      core.Income,
		Category:  "Salary",
		Amount:    core.Money{Cents: 100},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Username,Date,Type,Category,Amount,Note", lines[0])
	assert.Equal(t, "Alice,2025-01-01,Income,Salary,1.00,", lines[1])
}

func TestAccountRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := core.Account{
		Username:     "Alice",
		PasswordHash: "deadbeef",
		Name:         "Alice A",
		Mobile:       "12345",
		Email:        "alice@example.com",
		Role:         core.RolePrimary,
	}
	require.NoError(t, s.CreateAccount(ctx, in))

	got, err := s.GetAccount(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	// usernames are case-sensitive
	_, err = s.GetAccount(ctx, "alice")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAppendCategoryIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	c := core.Category{Owner: "Alice", Kind: core.Expense, Name: "Pets"}
	require.NoError(t, s.AppendCategory(ctx, c))
	require.NoError(t, s.AppendCategory(ctx, c))
	require.NoError(t, s.AppendCategory(ctx, core.Category{Owner: "Alice", Kind: core.Income, Name: "Pets"}))

	cats, err := s.ListCategories(ctx, "Alice")
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}
