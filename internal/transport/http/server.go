// Package httptransport serves the community page, the application form and the
// JSON endpoints used by the page script.
package httptransport

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	apperrors "vortexzz-apply/internal/common/errors"
	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/flow"
	"vortexzz-apply/internal/ui"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Config struct {
	AppName        string
	Version        string
	CookieName     string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	Location       *time.Location
	InviteURL      string
	SecureCookies  bool
}

type Dependencies struct {
	Controller *ui.Controller
	Logger     logger.Logger
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	config     Config
	controller *ui.Controller
	flow       *flow.Flow
	logger     logger.Logger
	errors     *apperrors.ErrorHandler
	ready      func(ctx context.Context) error
	pages      *template.Template
	now        func() time.Time
}

func NewServer(config Config, deps Dependencies) *Server {
	if config.CookieName == "" {
		config.CookieName = "vortexzz_session"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": "http"})
	return &Server{
		config:     config,
		controller: deps.Controller,
		flow:       deps.Controller.Flow(),
		logger:     log,
		errors:     apperrors.NewErrorHandler(log),
		ready:      deps.Ready,
		pages:      template.Must(template.ParseFS(templateFS, "templates/*.html")),
		now:        time.Now,
	}
}

// Routes builds the chi router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.metrics)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.config.RequestTimeout))
		r.Use(s.sessions)

		r.Get("/", s.handleIndex)
		r.Post("/apply", s.handleApply)
		r.Post("/apply/reset", s.handleReset)
		r.Get("/apply/result.txt", s.handleCopy)

		r.Post("/api/applications", s.handleCreateApplication)
		r.Post("/api/events", s.handleEvent)
	})

	return r
}
