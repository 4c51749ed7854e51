// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command typely runs the Typely blogging platform server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/bhanuanumula/typely-project/internal/config"
	"github.com/bhanuanumula/typely-project/internal/handler"
	"github.com/bhanuanumula/typely-project/internal/logging"
	"github.com/bhanuanumula/typely-project/internal/middleware"
	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/session"
	"github.com/bhanuanumula/typely-project/internal/store"
	"github.com/bhanuanumula/typely-project/internal/version"
	"github.com/bhanuanumula/typely-project/web"
)

// Build-time version information injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Typely - a small blogging platform\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_DB_PATH         SQLite database path (default: ./data/typely.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_LOG_LEVEL       Log level: debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TYPELY_DO_SEED         Create the default admin on startup (default: true)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("typely %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting typely",
		"version", versionInfo.Version,
		"commit", versionInfo.GitCommit,
		"built", versionInfo.BuildTime,
	)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the default admin account
	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Session manager backed by the sessions table
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized", "lifetime", "24h")

	// Renderer with embedded templates
	templatesFS, err := web.TemplatesFS()
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadIdentity(sessionManager))

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	blogHandler := handler.NewBlogHandler(db, renderer, sessionManager)
	pageHandler := handler.NewPageHandler(db, renderer)
	adminHandler := handler.NewAdminHandler(db, renderer, sessionManager, loginProtection)
	adminUserHandler := handler.NewAdminUserHandler(db, renderer)
	adminBlogHandler := handler.NewAdminBlogHandler(db, renderer)

	// Public routes
	r.Get("/", blogHandler.Home)
	r.Get("/view/{id}", blogHandler.View)
	r.Get("/about", pageHandler.About)
	r.Get("/contact", pageHandler.Contact)
	r.Post("/contact", pageHandler.SubmitContact)
	r.Get("/logout", authHandler.Logout)

	// Auth routes (public, with CSRF; login POSTs are rate limited)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get("/signup", authHandler.SignupForm)
		r.Post("/signup", authHandler.Signup)
		r.Get("/login", authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/login", authHandler.Login)
		r.Get("/forgot-password", authHandler.ForgotPasswordForm)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Get("/admin/login", adminHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/admin/login", adminHandler.Login)
	})

	// Authenticated user routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireUser(sessionManager))
		r.Get("/dashboard", blogHandler.Dashboard)
		r.Get("/create", blogHandler.CreateForm)
		r.Post("/create", blogHandler.Create)
		r.Get("/edit/{id}", blogHandler.EditForm)
		r.Post("/edit/{id}", blogHandler.Edit)
		r.Post("/delete/{id}", blogHandler.Delete)
	})

	// Admin routes (protected with CSRF)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAdmin())
		r.Get("/admin", adminHandler.Dashboard)
		// Two historical paths to the same messages handler
		r.Get("/admin/messages", adminHandler.Messages)
		r.Get("/admin/contact-messages", adminHandler.Messages)

		r.Get("/admin/users", adminUserHandler.List)
		r.Post("/admin/users/delete/{id}", adminUserHandler.Delete)
		r.Post("/admin/users/promote/{id}", adminUserHandler.Promote)
		r.Post("/admin/users/demote/{id}", adminUserHandler.Demote)
		r.Post("/admin/users/reset-password/{id}", adminUserHandler.ResetPassword)

		r.Get("/admin/blogs", adminBlogHandler.List)
		r.Post("/admin/blogs/delete/{id}", adminBlogHandler.Delete)
		r.Post("/admin/blogs/approve/{id}", adminBlogHandler.Approve)
		r.Get("/admin/blogs/edit/{id}", adminBlogHandler.EditForm)
		r.Post("/admin/blogs/edit/{id}", adminBlogHandler.Edit)
	})

	// Static assets
	staticFS, err := web.StaticFS()
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// 404 handler renders the shared error page
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		renderer.Error(w, req, http.StatusNotFound, "Page not found")
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
