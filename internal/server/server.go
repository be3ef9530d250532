// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every repository, service, and handler is
// constructed and wired here, so main.go stays minimal and tests can build
// the full HTTP surface without listening on a real port.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/config"
	"github.com/sakif/jobtrack/internal/handler"
	"github.com/sakif/jobtrack/internal/middleware"
	sqliteRepo "github.com/sakif/jobtrack/internal/repository/sqlite"
	"github.com/sakif/jobtrack/internal/service"
)

// requestTimeout bounds every request end to end. Applied via chi's
// Timeout middleware so slow handlers get a context cancellation rather
// than holding a connection forever.
const requestTimeout = 30 * time.Second

// Server owns the router, the database connection, and the config it was
// built from. The DB is closed during graceful shutdown to flush the WAL
// and release the file lock.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain: database → repositories →
// services → handlers → routes. Each layer only receives what it needs;
// handlers never touch the database and services never touch HTTP.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register        → create account
//	POST   /api/auth/login           → authenticate, returns JWT
//	GET    /api/auth/me              → profile             [auth]
//	PUT    /api/auth/me              → update profile      [auth]
//	PUT    /api/auth/me/password     → change password     [auth]
//	GET    /api/applications         → list own            [auth]
//	POST   /api/applications         → create              [auth]
//	GET    /api/applications/{id}    → get own             [auth]
//	PUT    /api/applications/{id}    → update own          [auth]
//	DELETE /api/applications/{id}    → delete own          [auth]
//	GET    /api/questions            → paginated public list
//	GET    /api/questions/{id}       → public read
//	POST   /api/questions            → create              [auth]
//	PUT    /api/questions/{id}       → update              [auth, author]
//	DELETE /api/questions/{id}       → delete              [auth, author]
//	GET    /api/companies            → public directory
//	*                                → SPA fallback (index.html)
//
// Middleware order matters: RequestID first so the logger can include it,
// Recoverer before Timeout so panics in handlers become 500s, Timeout last
// so the deadline covers only handler work.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(requestTimeout))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	users := s.db.Users()
	applications := s.db.Applications()
	questions := s.db.Questions()

	authService := service.NewAuthService(users, questions, tokens, passwords, s.logger)
	applicationService := service.NewApplicationService(applications, s.logger)
	questionService := service.NewQuestionService(questions, users, s.logger)
	companyService := service.NewCompanyService(questions, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, s.logger)
	companyHandler := handler.NewCompanyHandler(companyService, s.logger)

	requireAuth := auth.RequireAuth(tokens, users, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Unknown API paths are a JSON 404, not the SPA page.
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"route not found"}`))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.HandleGetProfile)
				r.Put("/me", authHandler.HandleUpdateProfile)
				r.Put("/me/password", authHandler.HandleUpdatePassword)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", applicationHandler.HandleList)
			r.Post("/", applicationHandler.HandleCreate)
			r.Get("/{id}", applicationHandler.HandleGet)
			r.Put("/{id}", applicationHandler.HandleUpdate)
			r.Delete("/{id}", applicationHandler.HandleDelete)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.HandleList)
			r.Get("/{id}", questionHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", questionHandler.HandleCreate)
				r.Put("/{id}", questionHandler.HandleUpdate)
				r.Delete("/{id}", questionHandler.HandleDelete)
			})
		})

		r.Get("/companies", companyHandler.HandleList)
	})

	// Everything outside /api belongs to the frontend bundle.
	spa := handler.NewSPAHandler(s.config.StaticDir, s.logger)
	s.router.NotFound(spa.ServeHTTP)

	return nil
}

// Handler exposes the fully wired router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Used by tests that exercise Handler() directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
