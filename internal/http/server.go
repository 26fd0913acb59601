// Package http serves the ledger page, its form actions and a small JSON API.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"wealthwise/internal/events"
	"wealthwise/internal/ledger"
	"wealthwise/internal/log"
	"wealthwise/internal/middleware/ratelimit"
	"wealthwise/internal/middleware/security"
	"wealthwise/internal/middleware/trace"
	"wealthwise/internal/storage"
	appweb "wealthwise/web"
)

// Options configures a Server.
type Options struct {
	Addr string

	// Store holds ledgers server-side. Nil keeps each ledger in the
	// browser cookie named CookieName.
	Store      storage.BlobStore
	Publisher  events.Publisher
	CookieName string
	Cookie     CookieOptions

	CurrencySymbol     string
	ReportsURL         string
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates  *template.Template
	logger     *log.Logger
	store      storage.BlobStore
	publisher  events.Publisher
	cookieName string
	cookieOpts CookieOptions
	currency   string
	reportsURL string

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.CookieName == "" {
		opts.CookieName = "transactions"
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	ips, err := security.NewIPExtractor(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		templates:  t,
		logger:     logger.WithComponent(log.ComponentHTTP),
		store:      opts.Store,
		publisher:  opts.Publisher,
		cookieName: opts.CookieName,
		cookieOpts: opts.Cookie,
		currency:   opts.CurrencySymbol,
		reportsURL: opts.ReportsURL,
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:     trace.NewMiddleware(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(log.AccessLog(ips.ExtractClientIP))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(ips.ExtractClientIP, s.handleRateLimited))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/static/*", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	r.Get("/", s.handleIndex)
	r.Post("/transactions", s.handleAdd)
	r.Post("/transactions/{id}/delete", s.handleDelete)
	r.Delete("/transactions/{id}", s.handleDelete)
	r.Post("/reset", s.handleReset)

	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", s.handleAPIList)
		r.Post("/", s.handleAPICreate)
		r.Delete("/{id}", s.handleAPIDelete)
	})

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s, nil
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Metrics exposes the request counters.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// openLedger builds and hydrates the request's ledger. corrupt reports that
// the saved data was unreadable and the ledger started empty.
func (s *Server) openLedger(w http.ResponseWriter, r *http.Request) (store *ledger.Store, corrupt bool, err error) {
	loc := s.locate(w, r)
	store = ledger.NewStore(loc.blobs, loc.key,
		ledger.WithLogger(log.FromContext(r.Context())),
		ledger.WithPublisher(s.publisher))

	if err := store.Hydrate(r.Context()); err != nil {
		if errors.Is(err, ledger.ErrCorruptState) {
			return store, true, nil
		}
		return nil, false, err
	}
	return store, false, nil
}

// render executes the page template into a buffer so a template failure
// never produces a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Index template execution failed", err, log.ComponentTemplate, log.OpRender, nil)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), msg, err, log.ComponentLedger, log.OpPersist, nil)
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the server-side backend when there is one.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(storage.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentStorage).
				WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
