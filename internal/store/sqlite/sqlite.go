// Package sqlite backs the store ports with an embedded SQLite database.
// The schema is managed by embedded golang-migrate migrations so that the
// csvfile and sqlite backings stay interchangeable behind the same ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mykhata/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
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

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const createAccount = `
INSERT INTO accounts (username, password_hash, name, mobile, email, role, parent_username)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (s *Store) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := s.db.ExecContext(ctx, createAccount,
		a.Username, a.PasswordHash, a.Name, a.Mobile, a.Email, string(a.Role), a.ParentUsername)
	if err != nil {
		return storageErr("create account", err)
	}
	slog.InfoContext(ctx, "account stored", "username", a.Username, "role", a.Role)
	return nil
}

const getAccount = `
SELECT username, password_hash, name, mobile, email, role, parent_username
FROM accounts WHERE username = ?`

func (s *Store) GetAccount(ctx context.Context, username string) (core.Account, error) {
	var a core.Account
	var role string
	err := s.db.QueryRowContext(ctx, getAccount, username).Scan(
		&a.Username, &a.PasswordHash, &a.Name, &a.Mobile, &a.Email, &role, &a.ParentUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, storageErr("get account", err)
	}
	a.Role = core.Role(role)
	return a, nil
}

const appendTransaction = `
INSERT INTO transactions (namespace, date, kind, category, amount_cents, note)
VALUES (?, ?, ?, ?, ?, ?)`

func (s *Store) AppendTransaction(ctx context.Context, t core.Transaction) error {
	_, err := s.db.ExecContext(ctx, appendTransaction,
		t.Namespace, t.Date.String(), string(t.Kind), t.Category, t.Amount.Cents, t.Note)
	if err != nil {
		return storageErr("append transaction", err)
	}
	slog.InfoContext(ctx, "transaction stored",
		"namespace", t.Namespace, "kind", t.Kind, "category", t.Category, "amount_cents", t.Amount.Cents)
	return nil
}

const listTransactions = `
SELECT namespace, date, kind, category, amount_cents, note
FROM transactions WHERE namespace = ? ORDER BY id`

func (s *Store) ListTransactions(ctx context.Context, namespace string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, listTransactions, namespace)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		var t core.Transaction
		var date, kind string
		if err := rows.Scan(&t.Namespace, &date, &kind, &t.Category, &t.Amount.Cents, &t.Note); err != nil {
			return nil, storageErr("scan transaction", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			slog.WarnContext(ctx, "skipping row with unparseable date", "date", date)
			continue
		}
		t.Date = d
		t.Kind = core.Kind(kind)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate transactions", err)
	}
	return txs, nil
}

const appendCategory = `
INSERT OR IGNORE INTO categories (owner, kind, name) VALUES (?, ?, ?)`

func (s *Store) AppendCategory(ctx context.Context, c core.Category) error {
	if _, err := s.db.ExecContext(ctx, appendCategory, c.Owner, string(c.Kind), c.Name); err != nil {
		return storageErr("append category", err)
	}
	return nil
}

const listCategories = `
SELECT owner, kind, name FROM categories WHERE owner = ? ORDER BY kind, name`

func (s *Store) ListCategories(ctx context.Context, owner string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, listCategories, owner)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	cats := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.Owner, &kind, &c.Name); err != nil {
			return nil, storageErr("scan category", err)
		}
		c.Kind = core.Kind(kind)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate categories", err)
	}
	return cats, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStorageUnavailable, op, err)
}
