package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mykhata/internal/core"
	"mykhata/internal/store/csvfile"
)

func newAccounts(t *testing.T) *AccountService {
	t.Helper()
	s, err := csvfile.New(t.TempDir())
	require.NoError(t, err)
	return NewAccountService(s)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "abc", "Secret1!", "", "")
	assert.ErrorIs(t, err, core.ErrInvalidFormat, "lowercase username must be rejected")

	_, err = svc.Register(ctx, "A", "Abc12", "Secret1", "", "")
	assert.ErrorIs(t, err, core.ErrInvalidFormat, "password without symbol must be rejected")

	a, err := svc.Register(ctx, "A", "Abc12", "Secret1!", "555", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, core.RolePrimary, a.Role)
	assert.NotEqual(t, "Secret1!", a.PasswordHash, "plaintext must never be stored")
	assert.Len(t, a.PasswordHash, 64)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "Alice", "Secret1!", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Alice again", "Alice", "Other2@", "", "")
	assert.ErrorIs(t, err, core.ErrDuplicateUsername)
}

func TestAuthenticate(t *testing.T) {
	svc := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "Alice", "Secret1!", "", "")
	require.NoError(t, err)

	a, err := svc.Authenticate(ctx, "Alice", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Username)

	// wrong password and unknown username yield the same error
	_, wrongPass := svc.Authenticate(ctx, "Alice", "Wrong1!")
	_, unknownUser := svc.Authenticate(ctx, "Nobody", "Secret1!")
	assert.ErrorIs(t, wrongPass, core.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, core.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
}

func TestAddDelegate(t *testing.T) {
	svc := newAccounts(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "Alice", "Secret1!", "", "")
	require.NoError(t, err)

	d, err := svc.AddDelegate(ctx, "Alice", "Bob", "Bob1", "Secret2@", "", "")
	require.NoError(t, err)
	assert.Equal(t, core.RoleDelegate, d.Role)
	assert.Equal(t, "Alice", d.ParentUsername)
	assert.Equal(t, "Alice", svc.ResolveNamespace(d))

	_, err = svc.AddDelegate(ctx, "Ghost", "C", "Carl1", "Secret2@", "", "")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// a delegate cannot parent another delegate
	_, err = svc.AddDelegate(ctx, "Bob1", "D", "Dave1", "Secret2@", "", "")
	assert.Error(t, err)
}
