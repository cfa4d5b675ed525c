// Package store declares the persistence ports the services depend on.
// Concrete backings live in the csvfile and sqlite subpackages; both are
// append-and-filtered-read only, with no update or delete operations.
package store

import (
	"context"

	"mykhata/internal/core"
)

type (
	AccountStore interface {
		// CreateAccount appends a new identity record.
		CreateAccount(ctx context.Context, a core.Account) error
		// GetAccount returns the record for a username, or core.ErrNotFound.
		GetAccount(ctx context.Context, username string) (core.Account, error)
	}

	TransactionStore interface {
		// AppendTransaction adds one ledger row. No deduplication.
		AppendTransaction(ctx context.Context, t core.Transaction) error
		// ListTransactions returns every row owned by the namespace, in
		// insertion order. An unknown namespace yields an empty slice.
		ListTransactions(ctx context.Context, namespace string) ([]core.Transaction, error)
	}

	CategoryStore interface {
		// AppendCategory adds a user-defined category; a no-op when
		// (owner, kind, name) already exists.
		AppendCategory(ctx context.Context, c core.Category) error
		// ListCategories returns the user-defined categories of an owner.
		ListCategories(ctx context.Context, owner string) ([]core.Category, error)
	}

	// Store bundles the three ports plus lifecycle. Both backends assume a
	// single writer; concurrent writers from separate processes are a
	// documented consistency hazard, not something the stores arbitrate.
	Store interface {
		AccountStore
		TransactionStore
		CategoryStore
		Close() error
	}
)
