package http

import (
	"errors"
	"net/http"
	"net/url"

	"mykhata/internal/core"
	applog "mykhata/internal/log"
	"mykhata/internal/session"
)

// handleCreateTransaction records one ledger row from the entry form and
// reloads the session snapshot. A filled "new_category" field registers
// the category for the logged-in user before the row is written.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.entryError(w, r, "Invalid request.")
		return
	}

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		s.entryError(w, r, "Please enter a valid date.")
		return
	}
	kind, err := core.ParseKind(sanitizeInput(r.Form.Get("kind")))
	if err != nil {
		s.entryError(w, r, "Please choose a transaction type.")
		return
	}
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		s.entryError(w, r, "Amount must be a positive number.")
		return
	}

	category := sanitizeInput(r.Form.Get("category"))
	if newCat := sanitizeInput(r.Form.Get("new_category")); newCat != "" {
		owner := sess.Account().Username
		if err := s.ledger.AddCategory(r.Context(), owner, kind, newCat); err != nil {
			s.logger.ErrorContext(r.Context(), "category write failed",
				applog.FieldCategory, newCat, applog.FieldError, err)
			s.entryError(w, r, entryErrorMessage(err))
			return
		}
		if err := s.reloadCategories(r.Context(), sess); err != nil {
			s.logger.ErrorContext(r.Context(), "category snapshot reload failed", applog.FieldError, err)
		}
		category = newCat
	}

	_, err = s.ledger.AddTransaction(r.Context(), sess.Namespace(), date, kind, category, amount, sanitizeInput(r.Form.Get("note")))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "transaction write failed",
			applog.FieldKind, kind, applog.FieldCategory, category, applog.FieldError, err)
		s.entryError(w, r, entryErrorMessage(err))
		return
	}
	if err := s.reloadTransactions(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "transaction snapshot reload failed", applog.FieldError, err)
	}

	s.logger.InfoContext(r.Context(), "transaction recorded",
		applog.FieldNamespace, sess.Namespace(),
		applog.FieldKind, kind,
		applog.FieldCategory, category,
		applog.FieldAmountCents, amount.Cents)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) entryError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/transactions/new?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

func entryErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingCategory):
		return "Please choose or enter a category."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number."
	case errors.Is(err, core.ErrStorageUnavailable):
		return "Could not save right now. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// handleCreateDelegate adds a linked Delegate account. Only a Primary may
// do this; the new account operates in the Primary's ledger.
func (s *Server) handleCreateDelegate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	account := sess.Account()
	if account.Role != core.RolePrimary {
		s.profileRedirect(w, r, "error", "Only a primary account can add delegates.")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.profileRedirect(w, r, "error", "Invalid request.")
		return
	}

	delegate, err := s.accounts.AddDelegate(r.Context(), account.Username,
		sanitizeInput(r.Form.Get("name")),
		sanitizeInput(r.Form.Get("username")),
		r.Form.Get("password"),
		sanitizeInput(r.Form.Get("mobile")),
		sanitizeInput(r.Form.Get("email")),
	)
	if err != nil {
		s.profileRedirect(w, r, "error", signupErrorMessage(err))
		return
	}

	s.logger.InfoContext(r.Context(), "delegate added",
		applog.FieldUsername, delegate.Username, applog.FieldNamespace, account.Username)
	s.profileRedirect(w, r, "notice", "Delegate "+delegate.Username+" added.")
}

func (s *Server) profileRedirect(w http.ResponseWriter, r *http.Request, key, msg string) {
	http.Redirect(w, r, "/profile?"+key+"="+url.QueryEscape(msg), http.StatusSeeOther)
}
