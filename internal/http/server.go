package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/cache"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

const (
	reportCacheSize = 256
	reportCacheTTL  = 5 * time.Minute

	// Mutating requests per client IP per window.
	writeRateLimit  = 60
	writeRateWindow = time.Minute
)

// Services bundles the domain services the API exposes.
type Services struct {
	Incomes       *services.IncomeService
	Transactions  *services.TransactionService
	Budgets       *services.BudgetService
	Notifications *services.NotificationService
}

// Server wraps the HTTP server with the JSON API routes, per-client
// rate limiting, and request logging.
type Server struct {
	http.Server

	logger  *log.Logger
	slogger *log.StructuredLogger
	svcs    Services

	limiter *rateLimiter
	metrics *securityMetrics

	// Report caches memoize derived views of the ledger. Writes to a
	// user's transactions invalidate that user's entries.
	forecasts *cache.LRUCache[[]core.MonthForecast]
	stats     *cache.LRUCache[core.ExpenseTypeStats]

	forecastMonths int

	stopCacheClean chan struct{}
	shutdownOnce   sync.Once
}

// NewServer constructs the API server listening on the given port.
// forecastMonths is the horizon used when the forecast endpoint gets
// no months parameter.
func NewServer(port string, forecastMonths int, logger *log.Logger, svcs Services) *Server {
	s := &Server{
		logger:         logger,
		forecastMonths: forecastMonths,
		slogger:        log.NewStructuredLogger(logger),
		svcs:           svcs,
		limiter:        newRateLimiter(writeRateLimit, writeRateWindow),
		metrics:        &securityMetrics{},
		forecasts:      cache.NewLRUCache[[]core.MonthForecast](reportCacheSize, reportCacheTTL),
		stats:          cache.NewLRUCache[core.ExpenseTypeStats](reportCacheSize, reportCacheTTL),
		stopCacheClean: make(chan struct{}),
	}
	go s.cleanReportCaches()

	s.Server = http.Server{
		Addr:              ":" + port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Incomes
	mux.HandleFunc("GET /api/incomes", s.withRequest(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.withRequest(s.handleCreateIncome))
	mux.HandleFunc("POST /api/incomes/calculate-monthly", s.withRequest(s.handleCalculateMonthly))
	mux.HandleFunc("GET /api/incomes/{id}", s.withRequest(s.handleGetIncome))
	mux.HandleFunc("PUT /api/incomes/{id}", s.withRequest(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.withRequest(s.handleDeleteIncome))
	mux.HandleFunc("POST /api/incomes/{id}/deactivate", s.withRequest(s.handleDeactivateIncome))
	mux.HandleFunc("GET /api/incomes/{id}/paydays", s.withRequest(s.handleIncomePaydays))

	// Transactions
	mux.HandleFunc("GET /api/transactions", s.withRequest(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withRequest(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withRequest(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withRequest(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRequest(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/expense-stats", s.withRequest(s.handleExpenseStats))
	mux.HandleFunc("GET /api/expense-forecast", s.withRequest(s.handleExpenseForecast))

	// Budgets
	mux.HandleFunc("GET /api/budgets", s.withRequest(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withRequest(s.handleCreateBudget))
	mux.HandleFunc("POST /api/budgets/from-template", s.withRequest(s.handleBudgetFromTemplate))
	mux.HandleFunc("GET /api/budget-templates", s.withRequest(s.handleListTemplates))
	mux.HandleFunc("GET /api/budgets/{id}", s.withRequest(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withRequest(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withRequest(s.handleDeleteBudget))
	mux.HandleFunc("PUT /api/budgets/{id}/income", s.withRequest(s.handleSetBudgetIncome))
	mux.HandleFunc("POST /api/budgets/{id}/categories", s.withRequest(s.handleAddCategory))
	mux.HandleFunc("PUT /api/budgets/{id}/categories/{cid}", s.withRequest(s.handleEditCategory))
	mux.HandleFunc("DELETE /api/budgets/{id}/categories/{cid}", s.withRequest(s.handleDeleteCategory))
	mux.HandleFunc("GET /api/budgets/{id}/comparison", s.withRequest(s.handleBudgetComparison))
	mux.HandleFunc("GET /api/budgets/{id}/health", s.withRequest(s.handleBudgetHealth))

	// Notifications
	mux.HandleFunc("GET /api/notifications", s.withRequest(s.handleListNotifications))
	mux.HandleFunc("POST /api/notifications/read-all", s.withRequest(s.handleMarkAllRead))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.withRequest(s.handleMarkRead))

	return mux
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// withRequest applies the shared per-request plumbing: security
// headers, a traced request ID in the context logger, rate limiting on
// mutating methods, and start/complete logging.
func (s *Server) withRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		setSecurityHeaders(w)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.limiter.allow(clientIP, s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		s.slogger.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.slogger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func (s *Server) cleanReportCaches() {
	ticker := time.NewTicker(reportCacheTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.forecasts.CleanExpired()
			s.stats.CleanExpired()
		case <-s.stopCacheClean:
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown stops the rate limiter then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		close(s.stopCacheClean)
		err = s.Server.Shutdown(ctx)
	})
	return err
}
