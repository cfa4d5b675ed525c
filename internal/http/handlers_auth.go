package http

import (
	"errors"
	"net/http"

	"mykhata/internal/core"
	applog "mykhata/internal/log"
)

type authPageData struct {
	Error  string
	Notice string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		notice := ""
		if r.URL.Query().Get("created") == "1" {
			notice = "Account created successfully! Please log in."
		}
		s.render(w, r, "login.html", authPageData{Notice: notice})
	case http.MethodPost:
		s.submitLogin(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) submitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", authPageData{Error: "Invalid request."})
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	account, err := s.accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			s.render(w, r, "login.html", authPageData{Error: "Invalid username or password."})
			return
		}
		s.logger.ErrorContext(r.Context(), "login failed", applog.FieldError, err)
		s.render(w, r, "login.html", authPageData{Error: "Something went wrong. Please try again."})
		return
	}

	sess := s.sessions.Create(account)
	if err := s.reloadTransactions(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "transaction snapshot load failed", applog.FieldError, err)
	}
	if err := s.reloadCategories(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "category snapshot load failed", applog.FieldError, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.InfoContext(r.Context(), "login successful",
		applog.FieldUsername, account.Username, applog.FieldNamespace, sess.Namespace())
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "signup.html", authPageData{})
	case http.MethodPost:
		s.submitSignup(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) submitSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "signup.html", authPageData{Error: "Invalid request."})
		return
	}

	_, err := s.accounts.Register(r.Context(),
		sanitizeInput(r.Form.Get("name")),
		sanitizeInput(r.Form.Get("username")),
		r.Form.Get("password"),
		sanitizeInput(r.Form.Get("mobile")),
		sanitizeInput(r.Form.Get("email")),
	)
	if err != nil {
		s.render(w, r, "signup.html", authPageData{Error: signupErrorMessage(err)})
		return
	}
	http.Redirect(w, r, "/login?created=1", http.StatusSeeOther)
}

func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrDuplicateUsername):
		return "Username already exists. Please choose a different one."
	case errors.Is(err, core.ErrInvalidFormat):
		return "Username must start with an uppercase letter and be alphanumeric; the password must start with an uppercase letter and include a special character."
	default:
		return "Something went wrong. Please try again."
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
