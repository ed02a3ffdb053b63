// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package main is the entry point for the Solar admin dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/audit"
	"github.com/solarhub/solar-admin/internal/auth"
	"github.com/solarhub/solar-admin/internal/cache"
	"github.com/solarhub/solar-admin/internal/config"
	"github.com/solarhub/solar-admin/internal/handler"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/logging"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/render"
	"github.com/solarhub/solar-admin/internal/scheduler"
	"github.com/solarhub/solar-admin/internal/session"
	"github.com/solarhub/solar-admin/internal/store"
	"github.com/solarhub/solar-admin/internal/translate"
	"github.com/solarhub/solar-admin/internal/version"
	"github.com/solarhub/solar-admin/internal/workflow"
	"github.com/solarhub/solar-admin/web"
)

// Build-time variables (set via ldflags)
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Public endpoints share one limiter.
const (
	publicRateLimit = 10
	publicRateBurst = 20

	translationCacheItems = 5000
	staticMaxAge          = 31536000
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.BoolVar(showVersion, "v", false, "Show version information and exit (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message and exit")
	flag.BoolVar(showHelp, "h", false, "Show help message and exit (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Solar Admin - bilingual dashboard for the Solar site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_API_URL              Backend REST base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_SESSION_SECRET       Secret key for sessions, 32+ bytes (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_DB_PATH              Session database path (default: ./data/sessions.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_SERVER_HOST          Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_ENV                  Environment: development, production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_LOG_LEVEL            Log level: debug, info, warn, error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_TRANSLATE_PROVIDER   auto, backend, libre, openai (default: auto)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_TRANSLATE_API        Translation endpoint, relative or absolute\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_OPENAI_API_KEY       Enables the OpenAI translator\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_REDIS_URL            Redis URL for the translation cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_GEOIP_DB_PATH        MaxMind country database for sign-in records (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_DEV_BYPASS           Sign in as a fabricated admin in development\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nExamples:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOLAR_API_URL=http://localhost:5000/api SOLAR_SESSION_SECRET=... %s\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s --version\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Solar Admin %s\n", appVersion)
		fmt.Printf("  Commit:  %s\n", appGitCommit)
		fmt.Printf("  Built:   %s\n", appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}.Resolve()

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("starting solar-admin",
		"version", versionInfo.String(),
		"env", cfg.Env,
		"api", cfg.APIURL,
		"translator", cfg.ResolvedTranslateProvider(),
	)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("session database ready", "path", cfg.DBPath)

	sessionManager := session.New(db, cfg.IsDevelopment())
	tokens := session.NewTokenStore(sessionManager)

	client, err := apiclient.New(cfg.APIURL, tokens,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		// A rejected token is purged so the next request goes to the login page.
		apiclient.WithUnauthorizedHandler(tokens.Clear),
	)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	reconciler := auth.NewReconciler(tokens, client,
		auth.WithDevBypass(cfg.DevBypass && cfg.IsDevelopment()),
		auth.WithLogger(logger),
	)
	if cfg.DevBypass && cfg.IsDevelopment() {
		slog.Warn("development sign-in bypass enabled")
	}

	translationCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxItems:   translationCacheItems,
	}, logger)
	defer func() {
		if err := translationCache.Close(); err != nil {
			slog.Error("failed to close cache", "error", err)
		}
	}()

	translator := translate.New(cfg, client, translationCache, logger)
	workflows := workflow.NewManager(client, translate.NewService(translator, logger), workflow.Options{
		TranslateTimeout: cfg.TranslateTimeout,
		Logger:           logger,
	})

	geo, err := audit.OpenGeoIP(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, sign-ins will have no country", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("failed to close geoip database", "error", err)
		}
	}()
	recorder := audit.NewRecorder(geo, logger)

	sched := scheduler.New(logger)
	if err := sched.Add("sweep-workflows", "@every 10m", scheduler.SweepWorkflowsJob(workflows, cfg.WorkflowTTL, logger)); err != nil {
		return fmt.Errorf("registering workflow sweep: %w", err)
	}
	if geo.Enabled() {
		if err := sched.Add("reload-geoip", "@daily", func(context.Context) error { return geo.Reload() }); err != nil {
			return fmt.Errorf("registering geoip reload: %w", err)
		}
	}
	sched.Start()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       cfg.LoginRateLimit,
		IPBurst:           cfg.LoginRateBurst,
		MaxFailedAttempts: cfg.LoginMaxFailure,
		LockoutDuration:   cfg.LoginLockout,
	})
	publicLimiter := middleware.NewRateLimiter(publicRateLimit, publicRateBurst)

	articlesCfg := handler.ArticlesConfig{CoverMaxWidth: cfg.CoverMaxWidth, UploadMaxBytes: cfg.UploadMaxBytes}

	authHandler := handler.NewAuthHandler(renderer, sessionManager, reconciler, loginProtection, recorder)
	dashboardHandler := handler.NewDashboardHandler(renderer, sessionManager, client)
	articlesHandler := handler.NewArticlesHandler(renderer, client, client, workflows, articlesCfg)
	categoriesHandler := handler.NewCategoriesHandler(renderer, client, workflows)
	workflowsHandler := handler.NewWorkflowsHandler(renderer, workflows, client, articlesCfg)
	messagesHandler := handler.NewMessagesHandler(renderer, client)
	newsletterHandler := handler.NewNewsletterHandler(renderer, client)
	usersHandler := handler.NewUsersHandler(renderer, client)
	healthHandler := handler.NewHealthHandler(db, reconciler, workflows, sched, versionInfo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), originOf(cfg.APIURL))))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.Language(sessionManager))

	// Health checks answer before authentication.
	r.Route(handler.RouteHealth, func(r chi.Router) {
		r.Use(publicLimiter.Middleware())
		r.Get(handler.RouteRoot, healthHandler.Health)
		r.Get("/live", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/dist/*", middleware.StaticCache(staticMaxAge, cfg.IsDevelopment())(
		http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS)))))

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort))

	r.Get(handler.RouteRoot, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, handler.RouteAdmin, http.StatusSeeOther)
	})

	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLanguage, authHandler.SetLanguage)
	})

	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.Auth(reconciler))

		r.Get(handler.RouteRoot, dashboardHandler.Dashboard)

		registerCRUD(r, "/articles", crudHandlers{
			List:     articlesHandler.List,
			NewForm:  articlesHandler.NewForm,
			Create:   articlesHandler.Create,
			EditForm: articlesHandler.EditForm,
			Update:   articlesHandler.Update,
			Delete:   articlesHandler.Delete,
		})
		registerCRUD(r, "/categories", crudHandlers{
			List:     categoriesHandler.List,
			NewForm:  categoriesHandler.NewForm,
			Create:   categoriesHandler.Create,
			EditForm: categoriesHandler.EditForm,
			Update:   categoriesHandler.Update,
			Delete:   categoriesHandler.Delete,
		})

		r.Route("/workflows/{id}", func(r chi.Router) {
			r.Get(handler.RouteRoot, workflowsHandler.Show)
			r.Post(handler.RouteRoot, workflowsHandler.Save)
			r.Get(handler.RouteSuffixStatus, workflowsHandler.Status)
			r.Post(handler.RouteSuffixConfirm, workflowsHandler.Confirm)
			r.Post(handler.RouteSuffixBack, workflowsHandler.Back)
			r.Post(handler.RouteSuffixDelete, workflowsHandler.Cancel)
		})

		r.Get("/messages", messagesHandler.List)
		r.Get("/messages"+handler.RouteParamID, messagesHandler.Show)
		r.Delete("/messages"+handler.RouteParamID, messagesHandler.Delete)
		r.Post("/messages"+handler.RouteParamID+handler.RouteSuffixDelete, messagesHandler.Delete)

		r.Get("/newsletter", newsletterHandler.List)
		r.Post("/newsletter"+handler.RouteSuffixCompose, newsletterHandler.Compose)
		r.Delete("/newsletter"+handler.RouteParamID, newsletterHandler.Delete)
		r.Post("/newsletter"+handler.RouteParamID+handler.RouteSuffixDelete, newsletterHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			registerCRUD(r, "/users", crudHandlers{
				List:     usersHandler.List,
				NewForm:  usersHandler.NewForm,
				Create:   usersHandler.Create,
				EditForm: usersHandler.EditForm,
				Update:   usersHandler.Update,
				Delete:   usersHandler.Delete,
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := workflows.Wait(ctx); err != nil {
		slog.Warn("translations still running at shutdown", "error", err)
	}
	sched.Stop()
	loginProtection.Stop()

	slog.Info("server stopped")
	return nil
}

// crudHandlers holds handlers for standard CRUD routes.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers the list, form, save and delete routes of a
// resource. Browsers delete through POST {id}/delete.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	id := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(id, h.EditForm)
	r.Put(id, h.Update)
	r.Post(id, h.Update)
	r.Delete(id, h.Delete)
	r.Post(id+handler.RouteSuffixDelete, h.Delete)
}

// originOf returns scheme://host of raw, or "" when raw is not absolute.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
