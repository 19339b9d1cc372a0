package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"debttrack/internal/cache"
	"debttrack/internal/log"
	"debttrack/internal/projection"
	"debttrack/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Ready may be nil.
type Options struct {
	Addr            string
	Ledger          *services.LedgerService
	Analytics       *services.AnalyticsService
	Export          *services.ExportService
	Tokens          *TokenManager
	Ready           Pinger
	Logger          *log.Logger
	RateLimitPerMin int
	CacheSize       int
	CacheTTL        time.Duration
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	analytics *services.AnalyticsService
	export    *services.ExportService
	tokens    *TokenManager
	ready     Pinger
	logger    *log.Logger
	limiter   *rateLimiter
	started   time.Time

	// pure simulator results keyed by their exact inputs
	simCache      *cache.LRUCache[projection.PayoffProjection]
	requiredCache *cache.LRUCache[requiredPaymentResponse]
	janitorCancel context.CancelFunc

	suspicious   int64
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if opts.CacheSize <= 0 {
		opts.CacheSize = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	r := mux.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		ledger:        opts.Ledger,
		analytics:     opts.Analytics,
		export:        opts.Export,
		tokens:        opts.Tokens,
		ready:         opts.Ready,
		logger:        logger,
		limiter:       newRateLimiter(opts.RateLimitPerMin),
		started:       time.Now(),
		simCache:      cache.NewLRUCache[projection.PayoffProjection](opts.CacheSize, opts.CacheTTL),
		requiredCache: cache.NewLRUCache[requiredPaymentResponse](opts.CacheSize, opts.CacheTTL),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.janitorCancel = cancel
	go cache.NewJanitor(logger, s.simCache, s.requiredCache).Run(ctx, opts.CacheTTL)

	r.Use(s.withRequestLogging, withSecurityHeaders)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.withRateLimit, s.requireAuth)

	api.HandleFunc("/projections/simulate", s.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/projections/required-payment", s.handleRequiredPayment).Methods(http.MethodPost)

	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}/transactions", s.handleRecordTransaction).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id:[0-9]+}/snapshots", s.handleRecordSnapshot).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id:[0-9]+}/analytics", s.handleAccountAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}/scenarios", s.handleScenarios).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}/interest", s.handleInterestHistory).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}/charts/{kind}", s.handleAccountChart).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}/export", s.handleExport).Methods(http.MethodPost)

	api.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/trends", s.handlePortfolioTrends).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/charts/balances", s.handlePortfolioBalances).Methods(http.MethodGet)

	return s
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.janitorCancel()
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// ListenAndServe treats a graceful shutdown as success.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
