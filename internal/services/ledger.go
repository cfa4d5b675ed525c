package services

import (
	"context"
	"log/slog"
	"strings"

	"mykhata/internal/core"
	"mykhata/internal/store"
)

// LedgerService owns the transaction ledger and the category lists.
// Transactions key on the namespace (the owning Primary), categories on
// the literal logged-in username. That asymmetry mirrors how the data
// files have always been written.
type LedgerService struct {
	transactions store.TransactionStore
	categories   store.CategoryStore
}

func NewLedgerService(transactions store.TransactionStore, categories store.CategoryStore) *LedgerService {
	return &LedgerService{transactions: transactions, categories: categories}
}

// AddTransaction validates and appends one ledger row. It does not
// deduplicate: submitting the same form twice records two transactions.
func (s *LedgerService) AddTransaction(ctx context.Context, namespace string, date core.Date, kind core.Kind, category string, amount core.Money, note string) (core.Transaction, error) {
	t := core.Transaction{
		Namespace: namespace,
		Date:      date,
		Kind:      kind,
		Category:  strings.TrimSpace(category),
		Amount:    amount,
		Note:      note,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.transactions.AppendTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Transactions returns the namespace's full ledger; empty when none exist.
func (s *LedgerService) Transactions(ctx context.Context, namespace string) ([]core.Transaction, error) {
	return s.transactions.ListTransactions(ctx, namespace)
}

// AddCategory records a user-defined category, idempotently.
func (s *LedgerService) AddCategory(ctx context.Context, owner string, kind core.Kind, name string) error {
	c := core.Category{Owner: owner, Kind: kind, Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.categories.AppendCategory(ctx, c); err != nil {
		return err
	}
	slog.InfoContext(ctx, "category stored", "owner", owner, "kind", kind, "category", c.Name)
	return nil
}

// Categories returns the owner's user-defined categories across all kinds.
func (s *LedgerService) Categories(ctx context.Context, owner string) ([]core.Category, error) {
	return s.categories.ListCategories(ctx, owner)
}

// CategoriesFor merges the built-in set for a kind with the owner's
// user-defined ones, sorted for display.
func (s *LedgerService) CategoriesFor(ctx context.Context, owner string, kind core.Kind) ([]string, error) {
	user, err := s.categories.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}
	return core.MergeCategories(kind, user), nil
}
