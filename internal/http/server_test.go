package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintastic/internal/auth"
	"fintastic/internal/cache"
	applog "fintastic/internal/log"
	"fintastic/internal/services"
	"fintastic/internal/store/memory"
)

type testEnv struct {
	srv    *Server
	tokens *auth.TokenService
	cache  *cache.ResponseCache
	store  *memory.Store
}

func newTestEnv(t *testing.T, checks ...ReadinessCheck) *testEnv {
	t.Helper()

	st := memory.New()
	logger := applog.Discard()
	rc := cache.NewResponseCache(cache.NewMemoryStore(100, time.Minute), cache.Options{TTL: time.Minute, Logger: logger})
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	srv, err := NewServer(Config{Addr: ":0", CacheTTL: time.Minute, RateLimitPerMinute: 10000}, Deps{
		Budgets:      services.NewBudgetService(st, rc),
		Transactions: services.NewTransactionService(st, rc, nil),
		Dashboard:    services.NewDashboardService(st),
		Cache:        rc,
		Tokens:       tokens,
		Logger:       logger,
		Checks:       checks,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv.now = func() time.Time { return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{srv: srv, tokens: tokens, cache: rc, store: st}
}

func (e *testEnv) token(t *testing.T, owner string) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken(owner)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, owner, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "192.0.2.10:5000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, owner))
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[messageResponse](t, rr).Message
}

func TestHealthzAndReady(t *testing.T) {
	env := newTestEnv(t, ReadinessCheck{Name: "store", Check: func(context.Context) error { return nil }})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, "", http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestReadyReportsFailingCheck(t *testing.T) {
	env := newTestEnv(t, ReadinessCheck{Name: "store", Check: func(context.Context) error { return errors.New("down") }})

	rr := env.do(t, "", http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "store") {
		t.Fatalf("body %q does not name the failing check", rr.Body.String())
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Not authorized, no token"},
		{"wrong scheme", "Basic abc", "Not authorized, no token"},
		{"garbage token", "Bearer not-a-jwt", "Not authorized, token failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.srv.Handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", rr.Code)
			}
			if got := message(t, rr); got != tt.want {
				t.Fatalf("message=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "", http.MethodGet, "/healthz", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing X-Content-Type-Options")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing X-Request-ID")
	}
}

func TestBudgetLifecycle(t *testing.T) {
	env := newTestEnv(t)
	const owner = "user-1"

	rr := env.do(t, owner, http.MethodPost, "/api/v1/budget/add",
		`{"category":"Food","amount":500,"period":"monthly","month":"03","year":"2025"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
	}
	created := decode[struct {
		Budget struct {
			ID       string  `json:"id"`
			Category string  `json:"category"`
			Amount   float64 `json:"amount"`
			Color    string  `json:"color"`
		} `json:"budget"`
		CopiedCount int    `json:"copiedCount"`
		Message     string `json:"message"`
	}](t, rr)
	if created.Message != "Budget created successfully" || created.CopiedCount != 0 {
		t.Fatalf("unexpected create response %+v", created)
	}
	if created.Budget.Amount != 500 || created.Budget.Color == "" {
		t.Fatalf("unexpected budget %+v", created.Budget)
	}

	rr = env.do(t, owner, http.MethodPost, "/api/v1/budget/add",
		`{"category":"Food","amount":200,"month":"03","year":"2025"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status=%d, want 409", rr.Code)
	}
	if got := message(t, rr); got != "Budget for Food in Mar 2025 already exists." {
		t.Fatalf("duplicate message=%q", got)
	}

	id := created.Budget.ID
	rr = env.do(t, owner, http.MethodPut, "/api/v1/budget/"+id, `{"amount":650,"icon":"cart"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body)
	}
	updated := decode[struct {
		Amount float64 `json:"amount"`
		Icon   string  `json:"icon"`
		Month  string  `json:"month"`
	}](t, rr)
	if updated.Amount != 650 || updated.Icon != "cart" || updated.Month != "03" {
		t.Fatalf("unexpected updated budget %+v", updated)
	}

	if rr := env.do(t, "someone-else", http.MethodDelete, "/api/v1/budget/"+id, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status=%d, want 404", rr.Code)
	}

	rr = env.do(t, owner, http.MethodDelete, "/api/v1/budget/"+id, "")
	if rr.Code != http.StatusOK || message(t, rr) != "Budget deleted successfully" {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body)
	}

	rr = env.do(t, owner, http.MethodPut, "/api/v1/budget/"+id, `{"amount":1}`)
	if rr.Code != http.StatusNotFound || message(t, rr) != "Budget not found" {
		t.Fatalf("update after delete status=%d body=%s", rr.Code, rr.Body)
	}
}

func TestCreateBudgetCopiesToFutureMonths(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "u", http.MethodPost, "/api/v1/budget/add",
		`{"category":"Rent","amount":900,"month":"10","year":"2025","copyToFutureMonths":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[struct {
		CopiedCount int    `json:"copiedCount"`
		Message     string `json:"message"`
	}](t, rr)
	if got.CopiedCount != 2 {
		t.Fatalf("copiedCount=%d, want 2", got.CopiedCount)
	}
	if got.Message != "Budget created successfully and copied to 2 future months" {
		t.Fatalf("message=%q", got.Message)
	}

	rr = env.do(t, "u", http.MethodGet, "/api/v1/budget", "")
	list := decode[[]map[string]any](t, rr)
	if len(list) != 3 {
		t.Fatalf("listed %d budgets, want 3", len(list))
	}
}

func TestCreateBudgetValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{`, "Invalid JSON"},
		{"missing category", `{"amount":10,"month":"03","year":"2025"}`, "category is required"},
		{"blank category", `{"category":"  ","amount":10,"month":"03","year":"2025"}`, "category must not be blank"},
		{"zero amount", `{"category":"Food","amount":0,"month":"03","year":"2025"}`, "Amount must be greater than 0"},
		{"negative amount", `{"category":"Food","amount":-5,"month":"03","year":"2025"}`, "Amount must be greater than 0"},
		{"missing amount", `{"category":"Food","month":"03","year":"2025"}`, "Amount must be greater than 0"},
		{"amount above cap", `{"category":"Food","amount":200000000000000000,"month":"03","year":"2025"}`, "Amount must be at most 1000000000000"},
		{"single digit month", `{"category":"Food","amount":10,"month":"3","year":"2025"}`, "month must be in MM format"},
		{"short year", `{"category":"Food","amount":10,"month":"03","year":"25"}`, "year must be in YYYY format"},
		{"bad period", `{"category":"Food","amount":10,"period":"weekly","month":"03","year":"2025"}`, "period must be one of: monthly, annual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "u", http.MethodPost, "/api/v1/budget/add", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400 (body %s)", rr.Code, rr.Body)
			}
			if got := message(t, rr); got != tt.want {
				t.Fatalf("message=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestBudgetAnalysis(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "u", http.MethodPost, "/api/v1/budget/add", `{"category":"Food","amount":100,"month":"03","year":"2025"}`)
	env.do(t, "u", http.MethodPost, "/api/v1/expense/add", `{"category":"Food","amount":85,"date":"2025-03-10"}`)

	rr := env.do(t, "u", http.MethodGet, "/api/v1/budget/analysis?viewMode=monthly&month=3&year=2025", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[struct {
		Budgets []struct {
			Category   string  `json:"category"`
			Spent      float64 `json:"spent"`
			Percentage float64 `json:"percentage"`
			Status     string  `json:"status"`
		} `json:"budgets"`
		TotalBudget float64 `json:"totalBudget"`
		TotalSpent  float64 `json:"totalSpent"`
		ViewMode    string  `json:"viewMode"`
	}](t, rr)
	if len(got.Budgets) != 1 || got.Budgets[0].Status != "warning" || got.Budgets[0].Spent != 85 {
		t.Fatalf("unexpected rows %+v", got.Budgets)
	}
	if got.TotalBudget != 100 || got.TotalSpent != 85 || got.ViewMode != "monthly" {
		t.Fatalf("unexpected totals %+v", got)
	}

	rr = env.do(t, "u", http.MethodGet, "/api/v1/budget/analysis?viewMode=weekly", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid viewMode status=%d, want 400", rr.Code)
	}
}

func TestBudgetAnalysisEmpty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "u", http.MethodGet, "/api/v1/budget/analysis?viewMode=annual&year=2025", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"budgets":[],"totalBudget":0,"totalSpent":0,"viewMode":"annual"}` {
		t.Fatalf("body=%s", body)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "u", http.MethodPost, "/api/v1/income/add", `{"source":"Salary","amount":"2500.50","date":"2025-03-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
	}
	income := decode[struct {
		ID     string  `json:"id"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
	}](t, rr)
	if income.Source != "Salary" || income.Amount != 2500.5 {
		t.Fatalf("unexpected income %+v", income)
	}

	rr = env.do(t, "u", http.MethodPost, "/api/v1/income/add", `{"source":"Salary","amount":2500.5,"date":"2025-03-01"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status=%d, want 400", rr.Code)
	}
	if got := message(t, rr); !strings.HasPrefix(got, "Duplicate entry detected.") {
		t.Fatalf("duplicate message=%q", got)
	}

	rr = env.do(t, "u", http.MethodPost, "/api/v1/expense/add", `{"amount":10,"date":"2025-03-01"}`)
	if rr.Code != http.StatusBadRequest || message(t, rr) != "category is required" {
		t.Fatalf("missing category status=%d body=%s", rr.Code, rr.Body)
	}

	rr = env.do(t, "u", http.MethodPost, "/api/v1/expense/add", `{"category":"Food","amount":10,"date":"03/01/2025"}`)
	if rr.Code != http.StatusBadRequest || message(t, rr) != "Date must be in YYYY-MM-DD format" {
		t.Fatalf("bad date status=%d body=%s", rr.Code, rr.Body)
	}

	rr = env.do(t, "u", http.MethodPut, "/api/v1/income/"+income.ID, `{"source":"Bonus","amount":300}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body)
	}

	rr = env.do(t, "u", http.MethodGet, "/api/v1/income/get", "")
	list := decode[[]struct {
		Source string `json:"source"`
		Date   string `json:"date"`
	}](t, rr)
	if len(list) != 1 || list[0].Source != "Bonus" || !strings.HasPrefix(list[0].Date, "2025-03-01") {
		t.Fatalf("unexpected list %+v", list)
	}

	if rr := env.do(t, "other", http.MethodDelete, "/api/v1/income/"+income.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status=%d, want 404", rr.Code)
	}
	rr = env.do(t, "u", http.MethodDelete, "/api/v1/income/"+income.ID, "")
	if rr.Code != http.StatusOK || message(t, rr) != "Income deleted successfully" {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body)
	}
	rr = env.do(t, "u", http.MethodDelete, "/api/v1/income/"+income.ID, "")
	if rr.Code != http.StatusNotFound || message(t, rr) != "Income not found" {
		t.Fatalf("second delete status=%d body=%s", rr.Code, rr.Body)
	}
}

func TestEmptyListsAreArrays(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/v1/budget", "/api/v1/income/get", "/api/v1/expense/get"} {
		rr := env.do(t, "u", http.MethodGet, path, "")
		if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
			t.Errorf("%s body=%s, want []", path, body)
		}
	}
}

func TestCachedReadsReflectMutations(t *testing.T) {
	env := newTestEnv(t)
	const path = "/api/v1/expense/get"

	rr := env.do(t, "u", http.MethodGet, path, "")
	if got := rr.Header().Get(cache.HeaderCache); got != "MISS" {
		t.Fatalf("first read X-Cache=%q, want MISS", got)
	}
	rr = env.do(t, "u", http.MethodGet, path, "")
	if got := rr.Header().Get(cache.HeaderCache); got != "HIT" {
		t.Fatalf("second read X-Cache=%q, want HIT", got)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("cached body=%s", body)
	}

	if rr := env.do(t, "u", http.MethodPost, "/api/v1/expense/add", `{"category":"Food","amount":12,"date":"2025-03-02"}`); rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
	}

	rr = env.do(t, "u", http.MethodGet, path, "")
	if got := rr.Header().Get(cache.HeaderCache); got != "MISS" {
		t.Fatalf("read after mutation X-Cache=%q, want MISS", got)
	}
	if !strings.Contains(rr.Body.String(), `"category":"Food"`) {
		t.Fatalf("read after mutation is stale: %s", rr.Body)
	}

	dash := decode[struct {
		TotalExpenses float64 `json:"totalExpenses"`
	}](t, env.do(t, "u", http.MethodGet, "/api/v1/dashboard", ""))
	if dash.TotalExpenses != 12 {
		t.Fatalf("dashboard totalExpenses=%v, want 12", dash.TotalExpenses)
	}
}

func TestCacheIsolatesOwners(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "alice", http.MethodPost, "/api/v1/income/add", `{"source":"Salary","amount":100,"date":"2025-03-01"}`)

	env.do(t, "alice", http.MethodGet, "/api/v1/income/get", "")
	rr := env.do(t, "bob", http.MethodGet, "/api/v1/income/get", "")
	if got := rr.Header().Get(cache.HeaderCache); got != "MISS" {
		t.Fatalf("bob X-Cache=%q, want MISS", got)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("bob sees alice's records: %s", body)
	}

	// A mutation by bob leaves alice's entries cached.
	env.do(t, "bob", http.MethodPost, "/api/v1/income/add", `{"source":"Gift","amount":5,"date":"2025-03-01"}`)
	rr = env.do(t, "alice", http.MethodGet, "/api/v1/income/get", "")
	if got := rr.Header().Get(cache.HeaderCache); got != "HIT" {
		t.Fatalf("alice X-Cache=%q, want HIT", got)
	}
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	env := newTestEnv(t)
	const path = "/api/v1/budget/analysis?viewMode=bogus"

	env.do(t, "u", http.MethodGet, path, "")
	rr := env.do(t, "u", http.MethodGet, path, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	if got := rr.Header().Get(cache.HeaderCache); got != "MISS" {
		t.Fatalf("X-Cache=%q, want MISS", got)
	}
}

func TestHealthScoreEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "u", http.MethodPost, "/api/v1/income/add", `{"source":"Salary","amount":5000,"date":"2025-01-05"}`)
	env.do(t, "u", http.MethodPost, "/api/v1/expense/add", `{"category":"Rent","amount":3000,"date":"2025-01-07"}`)

	type health struct {
		Score  int `json:"score"`
		Period struct {
			ViewMode string `json:"viewMode"`
			Month    string `json:"month"`
			Year     string `json:"year"`
		} `json:"period"`
	}

	all := decode[health](t, env.do(t, "u", http.MethodGet, "/api/v1/dashboard/health", ""))
	if all.Period.ViewMode != "all" || all.Score == 0 {
		t.Fatalf("all-time health %+v", all)
	}

	march := decode[health](t, env.do(t, "u", http.MethodGet, "/api/v1/dashboard/health?viewMode=monthly&month=3&year=2025", ""))
	if march.Period.ViewMode != "monthly" || march.Period.Month != "03" || march.Period.Year != "2025" {
		t.Fatalf("monthly period %+v", march.Period)
	}
	if march.Score != 0 {
		t.Fatalf("score for an empty month = %d, want 0", march.Score)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "u", http.MethodGet, "/api/v1/dashboard", "")
	env.do(t, "u", http.MethodGet, "/api/v1/dashboard", "")

	rr := env.do(t, "", http.MethodGet, "/metrics", "")
	body := rr.Body.String()
	for _, want := range []string{"fintastic_cache_hits_total 1", "fintastic_cache_misses_total 1", "fintastic_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}
}

func newRateLimitedServer(t *testing.T, perMinute int) (*Server, *auth.TokenService) {
	t.Helper()
	st := memory.New()
	tokens, _ := auth.NewTokenService("s", time.Hour)
	srv, err := NewServer(Config{RateLimitPerMinute: perMinute}, Deps{
		Budgets:      services.NewBudgetService(st, nil),
		Transactions: services.NewTransactionService(st, nil, nil),
		Dashboard:    services.NewDashboardService(st),
		Tokens:       tokens,
		Logger:       applog.Discard(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, tokens
}

func serve(t *testing.T, srv *Server, tokens *auth.TokenService, owner, method, path, body string) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "198.51.100.7:1234"
	if owner != "" {
		tok, err := tokens.GenerateToken(owner)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimitRejectsMutationBurstPerOwner(t *testing.T) {
	srv, tokens := newRateLimitedServer(t, 2)

	categories := []string{"Food", "Rent", "Fuel"}
	var last int
	for _, c := range categories {
		last = serve(t, srv, tokens, "alice", http.MethodPost, "/api/v1/expense/add",
			`{"category":"`+c+`","amount":10,"date":"2025-03-01"}`)
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third mutation status=%d, want 429", last)
	}

	// same address, different owner
	if code := serve(t, srv, tokens, "bob", http.MethodPost, "/api/v1/expense/add",
		`{"category":"Food","amount":10,"date":"2025-03-01"}`); code != http.StatusOK {
		t.Fatalf("other owner status=%d, want 200", code)
	}

	for i := 0; i < 5; i++ {
		if code := serve(t, srv, tokens, "alice", http.MethodGet, "/api/v1/expense/get", ""); code != http.StatusOK {
			t.Fatalf("read %d status=%d, want 200", i, code)
		}
	}
}

func TestRateLimitSkipsHealthEndpointsAndReads(t *testing.T) {
	srv, tokens := newRateLimitedServer(t, 2)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		for i := 0; i < 61; i++ {
			if code := serve(t, srv, tokens, "", http.MethodGet, path, ""); code == http.StatusTooManyRequests {
				t.Fatalf("%s request %d was rate limited", path, i+1)
			}
		}
	}
}

func TestDisabledCacheServesEveryReadFresh(t *testing.T) {
	st := memory.New()
	tokens, _ := auth.NewTokenService("s", time.Hour)
	rc := cache.NewResponseCache(cache.NewMemoryStore(100, time.Minute), cache.Options{Disabled: true, Logger: applog.Discard()})
	srv, err := NewServer(Config{RateLimitPerMinute: 100}, Deps{
		Budgets:      services.NewBudgetService(st, rc),
		Transactions: services.NewTransactionService(st, rc, nil),
		Dashboard:    services.NewDashboardService(st),
		Cache:        rc,
		Tokens:       tokens,
		Logger:       applog.Discard(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	tok, _ := tokens.GenerateToken("u")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("read %d status=%d", i, rr.Code)
		}
		if got := rr.Header().Get(cache.HeaderCache); got != "" {
			t.Fatalf("read %d X-Cache=%q, want no cache header", i, got)
		}
	}
	if s := rc.Stats(); s.Hits != 0 || s.Stores != 0 {
		t.Fatalf("stats=%+v, want no hits or stores", s)
	}
}
