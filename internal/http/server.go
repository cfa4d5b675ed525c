// Package http renders the application's screens and routes form
// submissions into the services. Views are thin: they read the session
// snapshot, hand figures produced by the report package to templates, and
// trigger invalidate-and-reload after writes.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "mykhata/internal/log"
	"mykhata/internal/middleware/security"
	"mykhata/internal/middleware/trace"
	"mykhata/internal/services"
	"mykhata/internal/session"
	"mykhata/web"
)

const sessionCookie = "mykhata_session"

type Server struct {
	http.Server

	templates *template.Template
	logger    *applog.Logger

	accounts *services.AccountService
	ledger   *services.LedgerService
	sessions *session.Manager

	rateLimiter  *rateLimiter
	traceMW      *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer wires handlers, middleware and templates.
func NewServer(addr string, accounts *services.AccountService, ledger *services.LedgerService, sessions *session.Manager, ratePerMinute int) (*Server, error) {
	tmpl, err := template.New("").ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates:   tmpl,
		logger:      applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),
		accounts:    accounts,
		ledger:      ledger,
		sessions:    sessions,
		rateLimiter: newRateLimiter(ratePerMinute),
		traceMW:     trace.NewMiddleware(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/signup", s.handleSignup)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.HandleFunc("/home", s.authenticated(session.ScreenHome, s.handleHome))
	mux.HandleFunc("/wallet", s.authenticated(session.ScreenWallet, s.handleWallet))
	mux.HandleFunc("/report", s.authenticated(session.ScreenReport, s.handleReport))
	mux.HandleFunc("/profile", s.authenticated(session.ScreenProfile, s.handleProfile))
	mux.HandleFunc("/transactions/new", s.authenticated(session.ScreenAddTransaction, s.handleAddTransactionPage))
	mux.HandleFunc("/transactions", s.requireSession(s.handleCreateTransaction))
	mux.HandleFunc("/delegates", s.requireSession(s.handleCreateDelegate))

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.traceMW.Middleware(headers.Middleware(s.rateLimiter.Middleware(mux)))

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s, nil
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// currentSession resolves the session cookie, if any.
func (s *Server) currentSession(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// requireSession redirects unauthenticated requests to the login screen.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, sess)
	}
}

// authenticated wraps a screen handler: it requires a session and records
// the navigation before rendering. Navigation does not reload the
// snapshot.
func (s *Server) authenticated(screen session.Screen, next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		if err := sess.Navigate(screen); err != nil {
			s.logger.ErrorContext(r.Context(), "navigation rejected", applog.FieldScreen, screen, applog.FieldError, err)
			http.Error(w, "unknown screen", http.StatusInternalServerError)
			return
		}
		next(w, r, sess)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.currentSession(r); ok {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// render executes a page template, reporting failures to the client.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", name, applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// reloadTransactions refreshes the session's transaction snapshot after a
// ledger write.
func (s *Server) reloadTransactions(ctx context.Context, sess *session.Session) error {
	txs, err := s.ledger.Transactions(ctx, sess.Namespace())
	if err != nil {
		return err
	}
	sess.SetTransactions(txs)
	return nil
}

// reloadCategories refreshes the session's category snapshot after a
// category write. Categories key on the literal username.
func (s *Server) reloadCategories(ctx context.Context, sess *session.Session) error {
	cats, err := s.ledger.Categories(ctx, sess.Account().Username)
	if err != nil {
		return err
	}
	sess.SetCategories(cats)
	return nil
}
