package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"kakeibo/internal/auth"
	"kakeibo/internal/expense"
	"kakeibo/internal/session"
	"kakeibo/internal/storage"
	"kakeibo/web"
)

// Handlers holds dependencies for HTTP handlers. accounts and sessions
// are nil in api mode, which serves no pages.
type Handlers struct {
	expenses *expense.Service
	accounts *auth.Service
	sessions *session.Manager
}

// New creates a new Handlers instance.
func New(expenses *expense.Service, accounts *auth.Service, sessions *session.Manager) *Handlers {
	return &Handlers{expenses: expenses, accounts: accounts, sessions: sessions}
}

// PageViewModel holds data for the login and register pages.
type PageViewModel struct {
	Flash string
}

// IndexViewModel holds data for the ledger page.
type IndexViewModel struct {
	Flash    string
	Username string
	Items    []ExpenseItem
	Total    int64
}

// ExpenseItem represents an expense row in the ledger view.
type ExpenseItem struct {
	ID        int64
	SpentDate string
	Category  string
	Amount    int64
	Memo      string
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", PageViewModel{Flash: session.PopFlash(w, r)})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		session.SetFlash(w, "Invalid form submission")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.accounts.Register(r.Context(), username, password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		session.SetFlash(w, "Username and password are required")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case errors.Is(err, storage.ErrUsernameTaken):
		session.SetFlash(w, "That username is already taken")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case err != nil:
		slog.Error("register failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	session.SetFlash(w, "Account created, please log in")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// Already logged in, go straight to the ledger.
	if _, ok := h.sessions.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", PageViewModel{Flash: session.PopFlash(w, r)})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		session.SetFlash(w, "Invalid form submission")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.accounts.Authenticate(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		session.SetFlash(w, "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, user); err != nil {
		slog.Error("establish session failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Index renders the caller's ledger.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	p, _ := session.FromContext(r.Context())

	items, total, err := h.expenses.List(r.Context(), &p.UserID)
	if err != nil {
		slog.Error("list expenses failed", "error", err, "user_id", p.UserID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := IndexViewModel{
		Flash:    session.PopFlash(w, r),
		Username: p.Username,
		Total:    total,
	}
	for _, e := range items {
		vm.Items = append(vm.Items, ExpenseItem{
			ID:        e.ID,
			SpentDate: e.SpentDate,
			Category:  e.Category,
			Amount:    e.Amount,
			Memo:      e.Memo,
		})
	}

	h.render(w, r, "index.html", vm)
}

// CreateExpenseForm handles the create form on the ledger page.
func (h *Handlers) CreateExpenseForm(w http.ResponseWriter, r *http.Request) {
	p, _ := session.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		session.SetFlash(w, "Invalid form submission")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	_, err := h.expenses.Create(r.Context(), &p.UserID,
		r.FormValue("spent_date"),
		r.FormValue("category"),
		r.FormValue("amount"),
		r.FormValue("memo"),
	)
	if errors.Is(err, expense.ErrInvalidInput) {
		session.SetFlash(w, err.Error())
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err != nil {
		slog.Error("create expense failed", "error", err, "user_id", p.UserID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFS(web.TemplatesFS, "templates/base.html", "templates/"+viewName)
	if err != nil {
		slog.Error("template parse failed", "view", viewName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("template execution failed", "view", viewName, "error", err)
	}
}
