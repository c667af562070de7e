package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services served over HTTP.
type Services struct {
	Users     *services.UserService
	Expenses  *services.ExpenseService
	Income    *services.IncomeService
	Dashboard *services.DashboardService
}

type Options struct {
	Addr        string
	CORSOrigins []string
	Tokens      *auth.TokenIssuer
	Store       Pinger
}

type Server struct {
	http.Server
	router *mux.Router
	svc    Services
	tokens *auth.TokenIssuer
	store  Pinger
	trace  *trace.Middleware
	logger *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, svc Services, logger *log.Logger) *Server {
	router := mux.NewRouter()
	clientIP := security.NewClientIPResolver()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		router: router,
		svc:    svc,
		tokens: opts.Tokens,
		store:  opts.Store,
		trace:  trace.NewMiddleware(logger, clientIP.ClientIP),
		logger: logger.WithComponent(log.ComponentHTTP),
	}
	s.routes()

	var handler http.Handler = router
	handler = security.NewCORS(opts.CORSOrigins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string { return trace.RequestID(r.Context()) })(handler)
	handler = s.trace.Middleware(handler)
	handler = log.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not Found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	me := authRoutes.PathPrefix("/me").Subrouter()
	me.Use(s.requireUser)
	me.HandleFunc("", s.handleMe).Methods(http.MethodGet)
	me.HandleFunc("", s.handleDeleteMe).Methods(http.MethodDelete)

	// Fixed paths are registered before /{id} so they are never read as ids.
	expenses := api.PathPrefix("/expenses").Subrouter()
	expenses.Use(s.requireUser)
	expenses.HandleFunc("", s.handleListExpenses).Methods(http.MethodGet)
	expenses.HandleFunc("/", s.handleListExpenses).Methods(http.MethodGet)
	expenses.HandleFunc("", s.handleCreateExpense).Methods(http.MethodPost)
	expenses.HandleFunc("/", s.handleCreateExpense).Methods(http.MethodPost)
	expenses.HandleFunc("/stats", s.handleExpenseStats).Methods(http.MethodGet)
	expenses.HandleFunc("/by-category", s.handleExpensesByCategory).Methods(http.MethodGet)
	expenses.HandleFunc("/monthly", s.handleMonthlyExpenses).Methods(http.MethodGet)
	expenses.HandleFunc("/export/csv", s.handleExportExpenses).Methods(http.MethodGet)
	expenses.HandleFunc("/{id:[0-9]+}", s.handleGetExpense).Methods(http.MethodGet)
	expenses.HandleFunc("/{id:[0-9]+}", s.handleUpdateExpense).Methods(http.MethodPut)
	expenses.HandleFunc("/{id:[0-9]+}", s.handleDeleteExpense).Methods(http.MethodDelete)

	income := api.PathPrefix("/income").Subrouter()
	income.Use(s.requireUser)
	income.HandleFunc("", s.handleListIncome).Methods(http.MethodGet)
	income.HandleFunc("/", s.handleListIncome).Methods(http.MethodGet)
	income.HandleFunc("", s.handleCreateIncome).Methods(http.MethodPost)
	income.HandleFunc("/", s.handleCreateIncome).Methods(http.MethodPost)
	income.HandleFunc("/stats", s.handleIncomeStats).Methods(http.MethodGet)
	income.HandleFunc("/by-category", s.handleIncomeByCategory).Methods(http.MethodGet)
	income.HandleFunc("/monthly", s.handleMonthlyIncome).Methods(http.MethodGet)
	income.HandleFunc("/export/csv", s.handleExportIncome).Methods(http.MethodGet)
	income.HandleFunc("/{id:[0-9]+}", s.handleGetIncome).Methods(http.MethodGet)
	income.HandleFunc("/{id:[0-9]+}", s.handleUpdateIncome).Methods(http.MethodPut)
	income.HandleFunc("/{id:[0-9]+}", s.handleDeleteIncome).Methods(http.MethodDelete)

	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(s.requireUser)
	dashboard.HandleFunc("/stats", s.handleDashboardStats).Methods(http.MethodGet)
	dashboard.HandleFunc("/expense-trend", s.handleExpenseTrend).Methods(http.MethodGet)
	dashboard.HandleFunc("/income-vs-expense", s.handleIncomeVsExpense).Methods(http.MethodGet)
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return auth.Middleware(s.tokens, s.svc.Users)(next)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters collected so far.
func (s *Server) Metrics() trace.Metrics {
	return s.trace.GetMetrics()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"message": "Expense Tracker API"}).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.Metrics().WriteText(w); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed writing metrics", log.FieldError, err)
	}
}

// currentUser returns the user placed in the context by requireUser.
func currentUser(r *http.Request) core.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// writeError maps service errors to HTTP responses. notFound is the detail
// used for core.ErrNotFound.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		UnprocessableEntityError(ve.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFound).Write(w)
	case errors.Is(err, core.ErrInvalidCredentials):
		UnauthorizedError("Incorrect username or password").Write(w)
	case errors.Is(err, core.ErrUsernameTaken):
		BadRequestError("Username already registered").Write(w)
	case errors.Is(err, core.ErrEmailTaken):
		BadRequestError("Email already registered").Write(w)
	default:
		ctx := r.Context()
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).LogError(ctx, "Request failed", err,
			log.ErrorTypeInternal, r.Method+" "+r.URL.Path, nil)
		InternalServerError().Write(w)
	}
}
