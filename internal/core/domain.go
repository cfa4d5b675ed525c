package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income      Kind = "Income"
	Expense     Kind = "Expense"
	Loan        Kind = "Loan"
	Installment Kind = "EMI"

	RolePrimary  Role = "Primary"
	RoleDelegate Role = "Delegate"
)

type (
	// Kind distinguishes the four transaction types. Installment is
	// written as "EMI" in the persisted files.
	Kind string

	// Role distinguishes a Primary account from a Delegate linked to one.
	Role string

	// Date is a calendar date with no time component.
	Date struct {
		time.Time
	}

	Account struct {
		Username     string
		PasswordHash string
		Name         string
		Mobile       string
		Email        string
		Role         Role
		// ParentUsername is set only for Delegates and names the Primary
		// whose ledger they operate in.
		ParentUsername string
	}

	Transaction struct {
		// Namespace is the owning Primary's username, even when the
		// transaction was entered by a Delegate.
		Namespace string
		Date      Date
		Kind      Kind
		Category  string
		Amount    Money
		Note      string
	}

	// Category is a user-defined tag. Owner is the literal logged-in
	// username, not the ledger namespace.
	Category struct {
		Owner string
		Kind  Kind
		Name  string
	}
)

var (
	ErrInvalidFormat      = errors.New("invalid format")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingCategory    = errors.New("missing category")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// ParseKind maps a persisted type string to its Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Income, Expense, Loan, Installment:
		return Kind(s), nil
	}
	return "", errors.New("unknown transaction type: " + s)
}

func (a Account) IsDelegate() bool {
	return a.Role == RoleDelegate
}

// Namespace returns the ledger ownership key for the account: the parent
// username for Delegates, the account's own username otherwise.
func (a Account) Namespace() string {
	if a.IsDelegate() && a.ParentUsername != "" {
		return a.ParentUsername
	}
	return a.Username
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingCategory
	}
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	return nil
}
