// Package server wires configuration, storage, the API client, services and
// handlers into one router, and runs it.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config
//	  → sqlite.DB → session.Manager (cookie signer + token sealer)
//	  → apiclient.Client → services → handlers
//
// This is the composition root: nothing below it constructs its own
// dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/auth"
	"github.com/sakif/portfolio-cms/internal/config"
	"github.com/sakif/portfolio-cms/internal/handler"
	"github.com/sakif/portfolio-cms/internal/middleware"
	"github.com/sakif/portfolio-cms/internal/model"
	sqliteRepo "github.com/sakif/portfolio-cms/internal/repository/sqlite"
	"github.com/sakif/portfolio-cms/internal/service"
	"github.com/sakif/portfolio-cms/internal/session"
	"github.com/sakif/portfolio-cms/web"
)

const (
	sessionCookie = "portfolio_session"
	tracerName    = "github.com/sakif/portfolio-cms"

	// pruneInterval is how often expired session rows are deleted while
	// the server runs.
	pruneInterval = time.Hour
)

// Server owns the router and the database connection.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *session.Manager
	registry *prometheus.Registry
}

// New opens the session store and builds every route. The caller must call
// Start, or Close when only the Handler is used (tests).
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz, /metrics, /static/*    no session
//	GET  / /about /projects /blog ...     public site
//	POST /contact, /theme
//	GET  /admin/login, /admin/register    public auth pages
//	     /admin/...                       behind RequireAdmin
//
// MIDDLEWARE ORDER MATTERS: the request id must exist before the logger
// reads it, and metrics/tracing wrap the handlers so they see the final
// status and route pattern.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Metrics(middleware.WithRegistry(s.registry)))
	s.router.Use(middleware.Tracing(tracerName))

	// === Session store ===
	signer, err := auth.NewCookieSigner(s.config.SessionSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating cookie signer: %w", err)
	}
	sealer, err := auth.NewTokenSealer(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token sealer: %w", err)
	}
	s.sessions = session.NewManager(s.db, signer, sealer, session.Options{
		CookieName: sessionCookie,
		TTL:        s.config.SessionTTL,
		Secure:     s.config.CookieSecure,
	}, s.logger)

	// === API client ===
	client, err := apiclient.New(s.config.APIBaseURL, s.logger,
		apiclient.WithMetrics(apiclient.NewMetrics(s.registry)),
	)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	// === Services ===
	v := service.NewValidator()
	skills := service.NewContentService[model.Skill](client.Skills(), v, "skill", s.logger)
	experience := service.NewContentService[model.Experience](client.Experience(), v, "experience", s.logger)
	testimonials := service.NewContentService[model.Testimonial](client.Testimonials(), v, "testimonial", s.logger)
	offerings := service.NewContentService[model.Service](client.Services(), v, "service", s.logger)
	projects := service.NewProjectService(client.Projects(), v, s.logger)
	blogs := service.NewBlogService(client.Blogs(), v, s.logger)
	messages := service.NewMessageService(client.Contact(), v, s.logger)
	media := service.NewMediaService(client.Upload(), s.logger)
	about := service.NewAboutService(client.About(), v, s.logger)
	authSvc := service.NewAuthService(client.Auth(), v, s.logger)
	dashboard := service.NewDashboardService(client.Projects(), client.Blogs(), client.Contact(), client.Skills())
	portfolio := service.NewPortfolioService(service.PortfolioSources{
		About:      client.About(),
		Skills:     client.Skills(),
		Projects:   client.Projects(),
		Blogs:      client.Blogs(),
		Experience: client.Experience(),
		Services:   client.Services(),
	})

	// === Handlers ===
	renderer, err := handler.NewRenderer(web.Templates())
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	base := handler.NewBase(renderer, s.sessions, service.NewThemeService(), s.config.Site, s.logger)

	health := handler.NewHealthHandler(s.db)
	public := handler.NewPortfolioHandler(base, portfolio, messages)
	authH := handler.NewAuthHandler(base, authSvc)

	// === Unsessioned routes ===
	s.router.Get("/healthz", health.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	// === Pages ===
	s.router.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(bindTokenStore)

		public.Mount(r)
		r.Post("/theme", authH.HandleTheme)

		r.Get(handler.LoginPath, authH.HandleLoginPage)
		r.Post(handler.LoginPath, authH.HandleLogin)
		r.Get(handler.RegisterPath, authH.HandleRegisterPage)
		r.Post(handler.RegisterPath, authH.HandleRegister)
		r.Post("/admin/logout", authH.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(authSvc, handler.LoginPath))

			r.Get("/admin", handler.NewDashboardHandler(base, dashboard).HandleDashboard)

			aboutH := handler.NewAboutHandler(base, about, media)
			r.Get("/admin/about", aboutH.HandleEdit)
			r.Post("/admin/about", aboutH.HandleSave)

			handler.NewResourceHandler[model.Skill](base, skills, media, handler.ResourceConfig[model.Skill]{
				Title:    "Skills",
				Path:     "/admin/skills",
				Template: "admin/skills",
				New:      model.NewSkill,
				Extra:    func(items []model.Skill) any { return model.GroupSkills(items) },
			}).Mount(r)
			handler.NewResourceHandler[model.Experience](base, experience, media, handler.ResourceConfig[model.Experience]{
				Title:    "Experience",
				Path:     "/admin/experience",
				Template: "admin/experience",
				New:      model.NewExperience,
			}).Mount(r)
			handler.NewResourceHandler[model.Testimonial](base, testimonials, media, handler.ResourceConfig[model.Testimonial]{
				Title:    "Testimonials",
				Path:     "/admin/testimonials",
				Template: "admin/testimonials",
				New:      model.NewTestimonial,
			}).Mount(r)
			handler.NewResourceHandler[model.Service](base, offerings, media, handler.ResourceConfig[model.Service]{
				Title:    "Services",
				Path:     "/admin/services",
				Template: "admin/services",
				New:      model.NewService,
			}).Mount(r)
			handler.NewResourceHandler[model.BlogPost](base, blogs, media, handler.ResourceConfig[model.BlogPost]{
				Title:    "Blog Posts",
				Path:     "/admin/blogs",
				Template: "admin/blogs",
				Form:     "admin/blog_form",
				New:      model.NewBlogPost,
			}).Mount(r)
			handler.NewProjectsHandler(base, projects, media).Mount(r)

			handler.NewMessagesHandler(base, messages).Mount(r)
			handler.NewMediaHandler(base, media).Mount(r)
			handler.NewSettingsHandler(base, authSvc).Mount(r)
		})
	})

	s.router.NotFound(s.sessions.Middleware(http.HandlerFunc(base.NotFound)).ServeHTTP)
	return nil
}

// bindTokenStore makes the browser's session the token store of every API
// call made while serving the request.
func bindTokenStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := session.FromContext(r.Context()); sess != nil {
			r = r.WithContext(apiclient.WithTokenStore(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database.
func (s *Server) Close() error { return s.db.Close() }

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.pruneSessions(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("api", s.config.APIBaseURL),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.Prune(ctx)
			if err != nil {
				s.logger.Warn("pruning sessions", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				s.logger.Info("pruned expired sessions", slog.Int64("count", n))
			}
		}
	}
}
