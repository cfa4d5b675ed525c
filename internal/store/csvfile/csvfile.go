// Package csvfile persists the ledger as three flat tabular files with
// fixed, ordered columns. Each file is created with its header row on
// first use; a read that finds no file behaves as if the file were empty.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"mykhata/internal/core"
)

const (
	accountsFile     = "accounts.csv"
	transactionsFile = "transactions.csv"
	categoriesFile   = "categories.csv"
)

var (
	accountsHeader     = []string{"Username", "PasswordHash", "Name", "Mobile", "Email", "Role", "ParentUsername"}
	transactionsHeader = []string{"Username", "Date", "Type", "Category", "Amount", "Note"}
	categoriesHeader   = []string{"Username", "CategoryType", "CategoryName"}
)

// Store keeps the three files under a single directory. A process-wide
// mutex serializes writers within this process; cross-process writers are
// not arbitrated.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", core.ErrStorageUnavailable, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateAccount(ctx context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.appendRow(accountsFile, accountsHeader, []string{
		a.Username, a.PasswordHash, a.Name, a.Mobile, a.Email, string(a.Role), a.ParentUsername,
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "account stored", "username", a.Username, "role", a.Role)
	return nil
}

func (s *Store) GetAccount(ctx context.Context, username string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(accountsFile, accountsHeader)
	if err != nil {
		return core.Account{}, err
	}
	for _, row := range rows {
		if row[0] != username {
			continue
		}
		return core.Account{
			Username:       row[0],
			PasswordHash:   row[1],
			Name:           row[2],
			Mobile:         row[3],
			Email:          row[4],
			Role:           core.Role(row[5]),
			ParentUsername: row[6],
		}, nil
	}
	return core.Account{}, core.ErrNotFound
}

func (s *Store) AppendTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.appendRow(transactionsFile, transactionsHeader, []string{
		t.Namespace, t.Date.String(), string(t.Kind), t.Category, t.Amount.String(), t.Note,
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "transaction stored",
		"namespace", t.Namespace, "kind", t.Kind, "category", t.Category, "amount_cents", t.Amount.Cents)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, namespace string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(transactionsFile, transactionsHeader)
	if err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		if row[0] != namespace {
			continue
		}
		date, err := core.ParseDate(row[1])
		if err != nil {
			slog.WarnContext(ctx, "skipping row with unparseable date", "date", row[1])
			continue
		}
		kind, err := core.ParseKind(row[2])
		if err != nil {
			slog.WarnContext(ctx, "skipping row with unknown type", "type", row[2])
			continue
		}
		amount, err := core.ParseAmount(row[4])
		if err != nil {
			slog.WarnContext(ctx, "skipping row with bad amount", "amount", row[4])
			continue
		}
		txs = append(txs, core.Transaction{
			Namespace: row[0],
			Date:      date,
			Kind:      kind,
			Category:  row[3],
			Amount:    amount,
			Note:      row[5],
		})
	}
	return txs, nil
}

func (s *Store) AppendCategory(ctx context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(categoriesFile, categoriesHeader)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row[0] == c.Owner && row[1] == string(c.Kind) && row[2] == c.Name {
			return nil
		}
	}
	return s.appendRow(categoriesFile, categoriesHeader, []string{c.Owner, string(c.Kind), c.Name})
}

func (s *Store) ListCategories(ctx context.Context, owner string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(categoriesFile, categoriesHeader)
	if err != nil {
		return nil, err
	}
	cats := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		if row[0] != owner {
			continue
		}
		kind, err := core.ParseKind(row[1])
		if err != nil {
			continue
		}
		cats = append(cats, core.Category{Owner: row[0], Kind: kind, Name: row[2]})
	}
	return cats, nil
}

// readRows returns all data rows of a file, minus the header. A missing
// file reads as empty without being created.
func (s *Store) readRows(name string, header []string) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrStorageUnavailable, name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrStorageUnavailable, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// appendRow writes one record, creating the file with its header first if
// it does not exist yet. The write is not atomic: an interrupted append
// can leave a torn last line.
func (s *Store) appendRow(name string, header, row []string) error {
	path := filepath.Join(s.dir, name)
	writeHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", core.ErrStorageUnavailable, name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("%w: write %s header: %v", core.ErrStorageUnavailable, name, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStorageUnavailable, name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", core.ErrStorageUnavailable, name, err)
	}
	return nil
}
