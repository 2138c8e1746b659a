package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"budget/internal/cache"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/reports"
	"budget/internal/services"
	"budget/internal/storage"
)

type Server struct {
	http.Server

	auth         *services.AuthService
	users        *services.UserService
	categories   *services.CategoryService
	transactions *services.TransactionService
	store        *storage.SQLiteRepository

	logger      *log.Logger
	corsOrigin  string
	rateLimiter *rateLimiter

	// Summary cache keyed by user ID, invalidated on any write that
	// can change the aggregates.
	summaryCache *cache.LRU[reports.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(
	cfg *config.Config,
	store *storage.SQLiteRepository,
	authSvc *services.AuthService,
	users *services.UserService,
	categories *services.CategoryService,
	transactions *services.TransactionService,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		auth:         authSvc,
		users:        users,
		categories:   categories,
		transactions: transactions,
		store:        store,
		logger: log.New(log.Config{
			Level:     log.ParseLevel(cfg.LogLevel),
			Component: log.ComponentHTTP,
		}),
		corsOrigin:   cfg.CORSOrigin,
		rateLimiter:  newRateLimiter(cfg.RateLimitPerMinute),
		summaryCache: cache.NewLRU[reports.Summary](100, cfg.SummaryCacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.public(s.handleHealth))
	mux.HandleFunc("GET /readyz", s.public(s.handleReady))
	mux.HandleFunc("OPTIONS /", s.public(s.handlePreflight))

	mux.HandleFunc("POST /auth/login", s.public(s.handleLogin))
	mux.HandleFunc("POST /auth/register", s.public(s.handleRegister))

	mux.HandleFunc("GET /users", s.protected(s.handleListUsers))
	mux.HandleFunc("POST /users", s.protected(s.handleCreateUser))
	mux.HandleFunc("DELETE /users/{id}", s.protected(s.handleDeleteUser))

	mux.HandleFunc("GET /categories", s.protected(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("PUT /categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /reports/summary", s.protected(s.handleSummary))
	mux.HandleFunc("GET /reports/chart.png", s.protected(s.handleChart))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func summaryCacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *Server) invalidateSummary(userID int64) {
	s.summaryCache.Delete(summaryCacheKey(userID))
}
