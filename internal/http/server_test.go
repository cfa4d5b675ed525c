package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mykhata/internal/core"
	"mykhata/internal/services"
	"mykhata/internal/session"
	"mykhata/internal/store/csvfile"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	backing, err := csvfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	srv, err := NewServer(":0",
		services.NewAccountService(backing),
		services.NewLedgerService(backing, backing),
		session.NewManager(time.Hour),
		1000)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func signupAndLogin(t *testing.T, srv *Server, username string) *http.Cookie {
	t.Helper()
	rr := postForm(srv, "/signup", url.Values{
		"name":     {"Test User"},
		"username": {username},
		"password": {"Secret1!"},
		"mobile":   {"5551234"},
		"email":    {"test@example.com"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = postForm(srv, "/login", url.Values{
		"username": {username},
		"password": {"Secret1!"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/home" {
		t.Fatalf("login redirect=%q, want /home", loc)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/home", "/wallet", "/report", "/profile", "/transactions/new"} {
		rr := get(srv, path, nil)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("%s status=%d, want 303", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s redirect=%q, want /login", path, loc)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/login", url.Values{
		"username": {"Alice"},
		"password": {"Wrong1!"},
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid username or password") {
		t.Fatalf("body missing credential error: %s", rr.Body.String())
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/signup", url.Values{
		"name":     {"Other"},
		"username": {"Alice"},
		"password": {"Secret1!"},
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Username already exists") {
		t.Fatalf("body missing duplicate error: %s", rr.Body.String())
	}
}

func TestTransactionFlow(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/transactions", url.Values{
		"date":     {"2025-01-15"},
		"kind":     {"Income"},
		"category": {"Salary"},
		"amount":   {"1000"},
		"note":     {"January pay"},
	}, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/home" {
		t.Fatalf("create status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = postForm(srv, "/transactions", url.Values{
		"date":     {"2025-01-20"},
		"kind":     {"Expense"},
		"category": {"Food"},
		"amount":   {"250.50"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = get(srv, "/home", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("home status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"₹ 749.50", "₹ 1000.00", "₹ 250.50", "Salary", "Food", "January pay"} {
		if !strings.Contains(body, want) {
			t.Fatalf("home body missing %q", want)
		}
	}
}

func TestTransactionInvalidAmountRedirectsWithError(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/transactions", url.Values{
		"date":     {"2025-01-15"},
		"kind":     {"Expense"},
		"category": {"Food"},
		"amount":   {"-5"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "/transactions/new?error=") {
		t.Fatalf("redirect=%q, want entry form with error", loc)
	}
}

func TestNewCategoryRegisteredOnEntry(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/transactions", url.Values{
		"date":         {"2025-01-15"},
		"kind":         {"Expense"},
		"new_category": {"Gardening"},
		"amount":       {"12"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = get(srv, "/transactions/new", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("entry form status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Gardening") {
		t.Fatalf("entry form missing new category")
	}
}

func TestEntryFormRendersFromSessionSnapshot(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	sess, ok := srv.sessions.Get(cookie.Value)
	if !ok {
		t.Fatalf("session not found for cookie")
	}
	sess.SetCategories([]core.Category{
		{Owner: "Alice", Kind: core.Expense, Name: "Houseboat"},
	})
	// written behind the snapshot's back; invisible until a write reloads
	if err := srv.ledger.AddCategory(context.Background(), "Alice", core.Expense, "Stationery"); err != nil {
		t.Fatalf("add category: %v", err)
	}

	rr := get(srv, "/transactions/new", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("entry form status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Houseboat") {
		t.Fatalf("entry form missing snapshot category")
	}
	if strings.Contains(body, "Stationery") {
		t.Fatalf("entry form read storage instead of the session snapshot")
	}
}

func TestEntryFormScriptAllowedByCSP(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	rr := get(srv, "/transactions/new", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("entry form status=%d", rr.Code)
	}
	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'self'") {
		t.Fatalf("missing CSP header: %q", csp)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("entry form carries an inline script the CSP would block")
	}
	if !strings.Contains(body, `src="/static/entry.js"`) {
		t.Fatalf("entry form missing category picker script reference")
	}

	rr = get(srv, "/static/entry.js", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("entry.js status=%d", rr.Code)
	}
}

func TestCategoryReportBucketsByPeriod(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	postForm(srv, "/transactions", url.Values{
		"date": {"2025-01-05"}, "kind": {"Expense"}, "category": {"Food"}, "amount": {"100"},
	}, cookie)
	postForm(srv, "/transactions", url.Values{
		"date": {"2025-02-10"}, "kind": {"Expense"}, "category": {"Food"}, "amount": {"50"},
	}, cookie)
	postForm(srv, "/transactions", url.Values{
		"date": {"2025-01-20"}, "kind": {"Expense"}, "category": {"Transport"}, "amount": {"30"},
	}, cookie)

	rr := get(srv, "/report?report=category&period=Month", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"2025-01", "2025-02", "Food", "Transport", "₹ 100.00", "₹ 50.00", "₹ 30.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("category report missing %q", want)
		}
	}

	// a coarser period merges the months into one bucket
	rr = get(srv, "/report?report=category&period=Year", cookie)
	if !strings.Contains(rr.Body.String(), "₹ 150.00") {
		t.Fatalf("yearly category report missing merged sum")
	}
}

func TestWalletAndReportRender(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	postForm(srv, "/transactions", url.Values{
		"date": {"2025-01-15"}, "kind": {"Loan"}, "category": {"Home Loan"}, "amount": {"500"},
	}, cookie)
	postForm(srv, "/transactions", url.Values{
		"date": {"2025-02-01"}, "kind": {"EMI"}, "category": {"Loan Repayment"}, "amount": {"200"},
	}, cookie)

	rr := get(srv, "/wallet", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("wallet status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "₹ 300.00") {
		t.Fatalf("wallet missing outstanding loans figure")
	}

	rr = get(srv, "/report?report=loan-emi&period=Month", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"2025-01", "2025-02", "Loan", "EMI"} {
		if !strings.Contains(body, want) {
			t.Fatalf("report body missing %q", want)
		}
	}
}

func TestDelegateOperatesInPrimaryLedger(t *testing.T) {
	srv := newTestServer(t)
	primary := signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/delegates", url.Values{
		"name":     {"Bob Helper"},
		"username": {"Bob"},
		"password": {"Secret1!"},
	}, primary)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delegate create status=%d", rr.Code)
	}

	rr = postForm(srv, "/login", url.Values{
		"username": {"Bob"},
		"password": {"Secret1!"},
	}, nil)
	var delegate *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			delegate = c
		}
	}
	if delegate == nil {
		t.Fatalf("delegate login failed: status=%d", rr.Code)
	}

	postForm(srv, "/transactions", url.Values{
		"date": {"2025-03-01"}, "kind": {"Expense"}, "category": {"Food"}, "amount": {"40"},
	}, delegate)

	// the primary sees the delegate's entry after their snapshot reloads
	postForm(srv, "/transactions", url.Values{
		"date": {"2025-03-02"}, "kind": {"Income"}, "category": {"Salary"}, "amount": {"100"},
	}, primary)
	rr = get(srv, "/home", primary)
	if !strings.Contains(rr.Body.String(), "₹ 40.00") {
		t.Fatalf("primary home missing delegate transaction")
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := signupAndLogin(t, srv, "Alice")

	rr := postForm(srv, "/logout", nil, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("logout status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = get(srv, "/home", cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("stale session not rejected: status=%d", rr.Code)
	}
}
