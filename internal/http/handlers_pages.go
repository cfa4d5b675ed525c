package http

import (
	"net/http"
	"sort"

	"mykhata/internal/core"
	"mykhata/internal/report"
	"mykhata/internal/session"
)

// txRow is one transaction rendered in a list.
type txRow struct {
	Icon        string
	Category    string
	Date        string
	Kind        string
	Note        string
	Amount      string
	AmountClass string
}

func newTxRow(t core.Transaction) txRow {
	return txRow{
		Icon:        categoryIcon(t.Category),
		Category:    t.Category,
		Date:        t.Date.String(),
		Kind:        string(t.Kind),
		Note:        t.Note,
		Amount:      formatRupees(t.Amount),
		AmountClass: amountClass(t.Kind),
	}
}

// recentTransactions returns up to limit rows, newest date first. The
// snapshot is in file order, so ties keep their insertion order.
func recentTransactions(txs []core.Transaction, limit int) []txRow {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	rows := make([]txRow, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, newTxRow(t))
	}
	return rows
}

type homePageData struct {
	Name    string
	Balance string
	Income  string
	Expense string
	Recent  []txRow
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	txs := sess.Transactions()
	totals := report.Sum(txs)
	s.render(w, r, "home.html", homePageData{
		Name:    sess.Account().Name,
		Balance: formatRupees(totals.Balance),
		Income:  formatRupees(totals.Income),
		Expense: formatRupees(totals.Expense),
		Recent:  recentTransactions(txs, 10),
	})
}

type walletCategoryRow struct {
	Category string
	Icon     string
	Amount   string
	Percent  int
}

type walletPageData struct {
	Balance         string
	Income          string
	Expense         string
	LoanTaken       string
	InstallmentPaid string
	NetLoans        string
	ByCategory      []walletCategoryRow
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	txs := sess.Transactions()
	totals := report.Sum(txs)

	breakdown := report.ExpenseByCategory(txs)
	rows := make([]walletCategoryRow, 0, len(breakdown))
	for _, ca := range breakdown {
		rows = append(rows, walletCategoryRow{
			Category: ca.Category,
			Icon:     categoryIcon(ca.Category),
			Amount:   formatRupees(ca.Amount),
			Percent:  percentOf(ca.Amount, totals.Expense),
		})
	}

	s.render(w, r, "wallet.html", walletPageData{
		Balance:         formatRupees(totals.Balance),
		Income:          formatRupees(totals.Income),
		Expense:         formatRupees(totals.Expense),
		LoanTaken:       formatRupees(totals.LoanTaken),
		InstallmentPaid: formatRupees(totals.InstallmentPaid),
		NetLoans:        formatRupees(totals.NetLoans()),
		ByCategory:      rows,
	})
}

const (
	reportIncomeExpense = "income-expense"
	reportCategory      = "category"
	reportLoanEMI       = "loan-emi"
)

type seriesRow struct {
	Bucket string
	Kind   string
	Amount string
}

type categoryRow struct {
	Bucket   string
	Category string
	Amount   string
}

type reportPageData struct {
	Report  string
	Period  string
	Periods []string
	Series  []seriesRow
	Rows    []categoryRow
	Empty   bool
}

// handleReport drives the three report views. The report and period query
// parameters select the view; unknown values fall back to the
// income-vs-expense monthly chart.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	txs := sess.Transactions()
	period := report.ParsePeriod(r.URL.Query().Get("period"))

	kind := r.URL.Query().Get("report")
	switch kind {
	case reportCategory, reportLoanEMI:
	default:
		kind = reportIncomeExpense
	}

	data := reportPageData{
		Report:  kind,
		Period:  string(period),
		Periods: []string{string(report.Day), string(report.Month), string(report.Year)},
	}

	switch kind {
	case reportCategory:
		for _, cp := range report.ExpenseByCategorySeries(txs, period) {
			data.Rows = append(data.Rows, categoryRow{Bucket: cp.Bucket, Category: cp.Category, Amount: formatRupees(cp.Amount)})
		}
		data.Empty = len(data.Rows) == 0
	case reportLoanEMI:
		data.Series = seriesRows(report.LoanVsInstallmentSeries(txs, period))
		data.Empty = len(data.Series) == 0
	default:
		data.Series = seriesRows(report.IncomeVsExpenseSeries(txs, period))
		data.Empty = len(data.Series) == 0
	}

	s.render(w, r, "report.html", data)
}

func seriesRows(points []report.SeriesPoint) []seriesRow {
	rows := make([]seriesRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, seriesRow{Bucket: p.Bucket, Kind: string(p.Kind), Amount: formatRupees(p.Amount)})
	}
	return rows
}

type profilePageData struct {
	Name           string
	Username       string
	Mobile         string
	Email          string
	Role           string
	ParentUsername string
	IsPrimary      bool
	Error          string
	Notice         string
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	a := sess.Account()
	s.render(w, r, "profile.html", profilePageData{
		Name:           a.Name,
		Username:       a.Username,
		Mobile:         a.Mobile,
		Email:          a.Email,
		Role:           string(a.Role),
		ParentUsername: a.ParentUsername,
		IsPrimary:      a.Role == core.RolePrimary,
		Error:          r.URL.Query().Get("error"),
		Notice:         r.URL.Query().Get("notice"),
	})
}

type addTransactionPageData struct {
	Today      string
	Kinds      []string
	Categories map[string][]string
	Error      string
}

// handleAddTransactionPage shows the entry form with the merged category
// list per kind, so switching the kind selector swaps the options without
// another round trip. Lists come from the session snapshot; storage is
// only read again when a write reloads it.
func (s *Server) handleAddTransactionPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	userDefined := sess.Categories()
	categories := make(map[string][]string, 4)
	for _, k := range []core.Kind{core.Income, core.Expense, core.Loan, core.Installment} {
		categories[string(k)] = core.MergeCategories(k, userDefined)
	}

	s.render(w, r, "add_transaction.html", addTransactionPageData{
		Today:      core.Date{Time: nowUTC()}.String(),
		Kinds:      []string{string(core.Income), string(core.Expense), string(core.Loan), string(core.Installment)},
		Categories: categories,
		Error:      r.URL.Query().Get("error"),
	})
}
