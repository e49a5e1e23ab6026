// Package server wires the stores, services, handlers, and middleware into
// a chi router and owns the process lifecycle: it is the composition root.
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

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/config"
	"github.com/arefin/crud-backend/internal/handler"
	"github.com/arefin/crud-backend/internal/middleware"
	mongoRepo "github.com/arefin/crud-backend/internal/repository/mongo"
	sqliteRepo "github.com/arefin/crud-backend/internal/repository/sqlite"
	"github.com/arefin/crud-backend/internal/service"
	"github.com/arefin/crud-backend/internal/worker"
)

// Server owns the router and every resource with a shutdown obligation: the
// SQLite pool, the MongoDB client, and the job scheduler.
type Server struct {
	router    *chi.Mux
	cfg       *config.Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	notes     *mongoRepo.Store
	scheduler *worker.Scheduler
}

// New assembles the dependency graph:
//
//	sqlite.DB / mongo.Store → services → handlers → routes
//
// Each layer receives interfaces or services, never the layer below that.
// Resources opened here are released by Start's shutdown path; on a wiring
// error everything already opened is closed before returning.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	notes, err := mongoRepo.New(ctx, cfg.MongoURL, cfg.MongoDBName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to note store: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		logger:    logger,
		db:        db,
		notes:     notes,
		scheduler: worker.New(logger),
	}

	if err := s.setupRoutes(); err != nil {
		s.closeStores(ctx)
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes builds the middleware chain and the /api/v1 route tree.
//
// Route map:
//
//	GET    /                      → welcome payload
//	GET    /health                → health check
//	POST   /api/v1/auth/login     → issue bearer token
//	POST   /api/v1/auth/register  → create account
//	GET    /api/v1/users/me       → current user            (auth)
//	GET    /api/v1/users          → list users              (admin)
//	POST   /api/v1/users          → create user             (admin)
//	GET    /api/v1/users/{id}     → get user                (admin)
//	PUT    /api/v1/users/{id}     → update user             (self or admin)
//	DELETE /api/v1/users/{id}     → delete user             (admin)
//	CRUD   /api/v1/items...       → owned items             (auth)
//	CRUD   /api/v1/notes...       → owned notes, + /search  (auth)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, passwords, s.logger)
	itemService := service.NewItemService(s.db.Items(), s.logger)
	noteService := service.NewNoteService(s.notes, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	itemHandler := handler.NewItemHandler(itemService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.cfg.CORSOrigins))

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to crud-backend","version":"1.0.0"}`))
	})
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	requireAuth := auth.RequireAuth(authService)
	requireAdmin := auth.RequireSuperuser()

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/register", authHandler.HandleRegister)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/{id}", userHandler.HandleUpdate)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", userHandler.HandleList)
				r.Post("/", userHandler.HandleCreate)
				r.Get("/{id}", userHandler.HandleGet)
				r.Delete("/{id}", userHandler.HandleDelete)
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", itemHandler.HandleList)
			r.Post("/", itemHandler.HandleCreate)
			r.Get("/{id}", itemHandler.HandleGet)
			r.Put("/{id}", itemHandler.HandleUpdate)
			r.Delete("/{id}", itemHandler.HandleDelete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", noteHandler.HandleList)
			r.Get("/search", noteHandler.HandleSearch)
			r.Post("/", noteHandler.HandleCreate)
			r.Get("/{id}", noteHandler.HandleGet)
			r.Put("/{id}", noteHandler.HandleUpdate)
			r.Delete("/{id}", noteHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server and the scheduler until SIGINT/SIGTERM, then
// shuts down gracefully: stop accepting connections, drain in-flight
// requests for up to 30 seconds, stop the scheduler, close the stores.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.scheduler.Start(); err != nil {
		s.closeStores(context.Background())
		return fmt.Errorf("starting scheduler: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.String("noteStore", s.cfg.MongoDBName),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		s.scheduler.Stop()
		s.closeStores(context.Background())
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		s.scheduler.Stop()
		s.closeStores(ctx)
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) closeStores(ctx context.Context) {
	if err := s.db.Close(); err != nil {
		s.logger.Error("closing database", slog.String("error", err.Error()))
	}
	if err := s.notes.Close(ctx); err != nil {
		s.logger.Error("closing note store", slog.String("error", err.Error()))
	}
}
