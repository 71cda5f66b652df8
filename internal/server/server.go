// Package server is the HTTP surface: the draft endpoint, the test page
// and a health check.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/haowjy/complaint-mailer/drafter"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// maxBodyBytes bounds the complaint payload.
const maxBodyBytes = 1 << 20

// Options are the server settings that do not come from the generator.
type Options struct {
	// Provider and Model are reported by /health and shown on the test page.
	Provider string
	Model    string

	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Server routes requests to a drafter.Generator. A server built with a
// non-nil genErr never calls the generator.
type Server struct {
	generator drafter.Generator
	genErr    error
	opts      Options
	started   time.Time
	router    *chi.Mux
}

// New wires the routes. generator is ignored when genErr is non-nil.
func New(generator drafter.Generator, genErr error, opts Options) *Server {
	if genErr == nil && generator == nil {
		genErr = &drafter.ConfigurationError{Reason: "no generator"}
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}

	s := &Server{
		generator: generator,
		genErr:    genErr,
		opts:      opts,
		started:   time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/generate-email", s.handleGenerateEmail)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Configured reports whether draft requests reach the generator.
func (s *Server) Configured() bool {
	return s.genErr == nil
}
