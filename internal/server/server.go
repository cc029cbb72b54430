// Package server provides the HTTP surface: the webhook receiver, the
// status detail page and operational endpoints.
package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tailorci/tailor/internal/statuslink"
	"github.com/tailorci/tailor/internal/worker"
)

// Queue is the producer side of the job queue.
type Queue interface {
	QueueStatus(state, description, url string, commit worker.Commit) error
	QueuePullRequest(job worker.PullRequestJob) error
}

// Server routes webhook deliveries into the queue and serves status pages.
type Server struct {
	router    chi.Router
	queue     Queue
	templates *template.Template
	gatherer  prometheus.Gatherer
	log       *slog.Logger
}

// New creates a new Server.
func New(queue Queue, templates *template.Template, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	s := &Server{
		queue:     queue,
		templates: templates,
		gatherer:  gatherer,
		log:       log,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/hook", s.handleHook)
	r.Get("/status", s.handleStatus)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "ok")
}

// statusPage is the template payload for status.html.
type statusPage struct {
	Statuses []string
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	text, err := statuslink.Decode(r.URL.Query().Get("snap"))
	if err != nil {
		s.log.Debug("rejecting status link", "error", err)
		respond(w, http.StatusBadRequest, "Failed to decode message")
		return
	}
	page := statusPage{Statuses: strings.Split(text, "\n")}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "status.html", page); err != nil {
		s.log.Error("failed to render status page", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
