package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/kalafo-api/internal/auth"
	"github.com/hongminglow/kalafo-api/internal/config"
	"github.com/hongminglow/kalafo-api/internal/http/handlers"
	"github.com/hongminglow/kalafo-api/internal/middleware"
	"github.com/hongminglow/kalafo-api/internal/service"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, tokens),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the full routed handler chain.
func NewHandler(cfg config.Config, store storage.Store, tokens *auth.TokenManager) http.Handler {
	accounts := service.NewAccounts(store, auth.NewPasswordHasher(cfg.BcryptCost), tokens)
	dashboards := service.NewDashboards(store, store)
	consultations := service.NewConsultations(store, store)
	guard := middleware.NewGuard(tokens, store)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(accounts, guard).Register(mux)
	handlers.NewDashboardHandler(dashboards, guard).Register(mux)
	handlers.NewUsersHandler(accounts, dashboards, guard).Register(mux)
	handlers.NewConsultationHandler(consultations, guard).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(middleware.Recover(mux)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
