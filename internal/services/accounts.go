// Package services holds the application operations over the store ports:
// account registration and authentication, and ledger reads/writes.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"mykhata/internal/core"
	"mykhata/internal/store"
)

// AccountService owns identity records: registration, delegate linking and
// credential checks.
type AccountService struct {
	accounts store.AccountStore
}

func NewAccountService(accounts store.AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

// Register creates a Primary account. The username must match the naming
// rule and the password the strength rule; both failures surface as
// core.ErrInvalidFormat. An existing username yields core.ErrDuplicateUsername.
func (s *AccountService) Register(ctx context.Context, name, username, password, mobile, email string) (core.Account, error) {
	return s.create(ctx, core.Account{
		Username: username,
		Name:     name,
		Mobile:   mobile,
		Email:    email,
		Role:     core.RolePrimary,
	}, password)
}

// AddDelegate creates a Delegate linked to an existing Primary. The caller
// must already be authenticated as that Primary.
func (s *AccountService) AddDelegate(ctx context.Context, parentUsername, name, username, password, mobile, email string) (core.Account, error) {
	parent, err := s.accounts.GetAccount(ctx, parentUsername)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Account{}, fmt.Errorf("parent account %q: %w", parentUsername, core.ErrNotFound)
		}
		return core.Account{}, err
	}
	if parent.Role != core.RolePrimary {
		return core.Account{}, fmt.Errorf("account %q is not a primary account", parentUsername)
	}

	return s.create(ctx, core.Account{
		Username:       username,
		Name:           name,
		Mobile:         mobile,
		Email:          email,
		Role:           core.RoleDelegate,
		ParentUsername: parentUsername,
	}, password)
}

func (s *AccountService) create(ctx context.Context, a core.Account, password string) (core.Account, error) {
	if err := core.ValidateUsername(a.Username); err != nil {
		return core.Account{}, fmt.Errorf("username: %w", err)
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.Account{}, fmt.Errorf("password: %w", err)
	}

	_, err := s.accounts.GetAccount(ctx, a.Username)
	switch {
	case err == nil:
		return core.Account{}, core.ErrDuplicateUsername
	case !errors.Is(err, core.ErrNotFound):
		return core.Account{}, err
	}

	a.PasswordHash = hashPassword(password)
	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "account created", "username", a.Username, "role", a.Role, "parent", a.ParentUsername)
	return a, nil
}

// Authenticate checks credentials against the directory. Unknown username
// and wrong password both return core.ErrInvalidCredentials so the caller
// cannot tell which one failed.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (core.Account, error) {
	a, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Account{}, core.ErrInvalidCredentials
		}
		return core.Account{}, err
	}
	if a.PasswordHash != hashPassword(password) {
		return core.Account{}, core.ErrInvalidCredentials
	}
	return a, nil
}

// Get returns the directory record for a username.
func (s *AccountService) Get(ctx context.Context, username string) (core.Account, error) {
	return s.accounts.GetAccount(ctx, username)
}

// ResolveNamespace returns the ledger ownership key for an account.
func (s *AccountService) ResolveNamespace(a core.Account) string {
	return a.Namespace()
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
