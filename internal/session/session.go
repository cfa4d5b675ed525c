// Package session is the in-process state bag: which identity is active,
// which ledger namespace is in scope, which screen is displayed, and the
// per-session snapshot of transactions and categories. A session is
// created at login and destroyed at logout; a TTL janitor reaps abandoned
// ones.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mykhata/internal/core"
)

const (
	ScreenLogin          Screen = "Login"
	ScreenSignup         Screen = "Signup"
	ScreenHome           Screen = "Home"
	ScreenAddTransaction Screen = "AddTransaction"
	ScreenWallet         Screen = "Wallet"
	ScreenReport         Screen = "Report"
	ScreenProfile        Screen = "Profile"
)

// Screen identifies one of the application's views.
type Screen string

// Authenticated reports whether the screen requires a logged-in session.
func (s Screen) Authenticated() bool {
	switch s {
	case ScreenHome, ScreenAddTransaction, ScreenWallet, ScreenReport, ScreenProfile:
		return true
	}
	return false
}

var ErrUnknownScreen = errors.New("unknown screen")

// Session tracks one logged-in identity. Snapshot access goes through the
// mutex; handlers read a copy and never hold a reference into the slices.
type Session struct {
	ID string

	mu           sync.Mutex
	account      core.Account
	namespace    string
	screen       Screen
	transactions []core.Transaction
	categories   []core.Category
	lastSeen     time.Time
}

// Account returns the logged-in identity.
func (s *Session) Account() core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Namespace returns the ledger ownership key in scope: the Primary's
// username, also for Delegate sessions.
func (s *Session) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namespace
}

// Screen returns the currently displayed screen.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Navigate moves between authenticated screens. It does not reload the
// snapshot; only writes do that.
func (s *Session) Navigate(to Screen) error {
	if !to.Authenticated() {
		return fmt.Errorf("%w: %s", ErrUnknownScreen, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = to
	return nil
}

// Transactions returns a copy of the transaction snapshot.
func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Categories returns a copy of the category snapshot.
func (s *Session) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// SetTransactions replaces the transaction snapshot after an
// invalidate-and-reload cycle.
func (s *Session) SetTransactions(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = txs
}

// SetCategories replaces the category snapshot.
func (s *Session) SetCategories(cats []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = cats
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}

// Manager is the session table. All mutation is mutex-guarded; this is
// the only shared mutable state in the process besides the backing files.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create opens a session for an authenticated account, landing on Home.
func (m *Manager) Create(account core.Account) *Session {
	s := &Session{
		ID:        newSessionID(),
		account:   account,
		namespace: account.Namespace(),
		screen:    ScreenHome,
		lastSeen:  time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	slog.Info("session created", "username", account.Username, "namespace", s.namespace)
	return s
}

// Get looks a session up by ID, refreshing its TTL.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := time.Now()
	if s.expired(now, m.ttl) {
		m.Destroy(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Destroy removes a session, clearing identity and snapshot.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		slog.Info("session destroyed", "username", s.Account().Username)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Janitor reaps expired sessions until the context is canceled.
func (m *Manager) Janitor(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.sweep(time.Now()); n > 0 {
				slog.Debug("expired sessions reaped", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.expired(now, m.ttl) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
