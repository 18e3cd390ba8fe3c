// Package http exposes the budget, transaction and dashboard operations as a
// JSON API under /api/v1 and serves cached reads through the response cache.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintastic/internal/auth"
	"fintastic/internal/cache"
	applog "fintastic/internal/log"
	"fintastic/internal/middleware/ratelimit"
	"fintastic/internal/middleware/security"
	"fintastic/internal/middleware/trace"
	"fintastic/internal/services"
)

const apiPrefix = "/api/v1"

// Config holds the listener and middleware settings of the server.
type Config struct {
	Addr     string
	CacheTTL time.Duration
	// RateLimitPerMinute caps mutations per owner.
	RateLimitPerMinute int
	TrustedProxies     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
}

// ReadinessCheck is reported by /readyz. A failing check makes the server
// unready.
type ReadinessCheck struct {
	Name  string
	Check func(context.Context) error
}

// Deps are the collaborators a Server dispatches to.
type Deps struct {
	Budgets      *services.BudgetService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	Cache        *cache.ResponseCache
	Tokens       *auth.TokenService
	Logger       *applog.Logger
	Checks       []ReadinessCheck
}

type Server struct {
	http.Server

	budgets      *services.BudgetService
	transactions *services.TransactionService
	dashboard    *services.DashboardService
	cache        *cache.ResponseCache
	logger       *applog.Logger
	checks       []ReadinessCheck

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	now          func() time.Time
	startedAt    time.Time
	shutdownOnce sync.Once
}

func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Budgets == nil || deps.Transactions == nil || deps.Dashboard == nil {
		return nil, errors.New("http: services are required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("http: token service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
	}

	rl := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		rl.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		budgets:      deps.Budgets,
		transactions: deps.Transactions,
		dashboard:    deps.Dashboard,
		cache:        deps.Cache,
		logger:       logger,
		checks:       deps.Checks,
		limiter:      ratelimit.NewLimiter(rl),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
		now:          time.Now,
		startedAt:    time.Now(),
	}

	api := http.NewServeMux()
	s.registerAPI(api)

	var apiHandler http.Handler = s.limitMutations(api)
	if s.cache != nil {
		apiHandler = s.cache.Middleware(auth.OwnerOf, cfg.CacheTTL)(apiHandler)
	}
	apiHandler = deps.Tokens.Middleware(writeUnauthorized)(apiHandler)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealthz)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.HandleFunc("GET /metrics", s.handleMetrics)
	root.Handle(apiPrefix+"/", http.StripPrefix(apiPrefix, apiHandler))

	var handler http.Handler = root
	handler = detector.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/health", s.handleHealthScore)

	mux.HandleFunc("GET /budget", s.handleListBudgets)
	mux.HandleFunc("GET /budget/analysis", s.handleBudgetAnalysis)
	mux.HandleFunc("POST /budget/add", s.handleCreateBudget)
	mux.HandleFunc("PUT /budget/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budget/{id}", s.handleDeleteBudget)

	for _, t := range []transactionRoutes{incomeRoutes, expenseRoutes} {
		mux.HandleFunc("POST /"+t.path+"/add", s.handleCreateTransaction(t))
		mux.HandleFunc("GET /"+t.path+"/get", s.handleListTransactions(t))
		mux.HandleFunc("PUT /"+t.path+"/{id}", s.handleUpdateTransaction(t))
		mux.HandleFunc("DELETE /"+t.path+"/{id}", s.handleDeleteTransaction(t))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
}

// limitMutations applies the per-owner rate limit to requests that change
// records. Reads, cached or not, are never limited.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.rateLimitKey, writeRateLimited)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// rateLimitKey is the owner id; the client address only stands in when a
// request reaches the limiter unauthenticated.
func (s *Server) rateLimitKey(r *http.Request) string {
	if owner := auth.OwnerOf(r); owner != "" {
		return "owner:" + owner
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// Shutdown stops the rate limiter and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var failed []string
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed",
				"check", c.Name,
				applog.FieldError, err)
			failed = append(failed, c.Name)
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + strings.Join(failed, ", ")))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics renders counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	gauge := func(name, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n", name, help, name, name, v)
	}
	counter := func(name, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %v\n", name, help, name, name, v)
	}

	gauge("fintastic_uptime_seconds", "Seconds since the server started.", int64(time.Since(s.startedAt).Seconds()))

	tm := s.tracer.GetMetrics()
	counter("fintastic_http_requests_total", "Requests served.", tm.TotalRequests)
	counter("fintastic_http_server_errors_total", "Responses with a 5xx status.", tm.ServerErrors)
	gauge("fintastic_http_last_duration_microseconds", "Duration of the last request.", tm.LastDurationUs)

	rm := s.limiter.GetMetrics()
	counter("fintastic_rate_limit_rejected_total", "Requests rejected by the rate limiter.", rm.Rejected)
	gauge("fintastic_rate_limit_clients", "Clients tracked by the rate limiter.", rm.ClientCount)

	counter("fintastic_suspicious_requests_total", "Requests matching a probing pattern.", s.detector.GetMetrics().SuspiciousRequests)

	if s.cache != nil {
		cs := s.cache.Stats()
		counter("fintastic_cache_hits_total", "Responses served from the cache.", cs.Hits)
		counter("fintastic_cache_misses_total", "Cacheable requests computed by a handler.", cs.Misses)
		counter("fintastic_cache_stores_total", "Responses stored in the cache.", cs.Stores)
		counter("fintastic_cache_invalidations_total", "Owner invalidations.", cs.Invalidations)
		counter("fintastic_cache_errors_total", "Cache store failures.", cs.Errors)
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
