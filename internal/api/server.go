package api

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/wordfreq/internal/core"
	"github.com/baxromumarov/wordfreq/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Analyzer runs the word-frequency pipeline for one request.
type Analyzer interface {
	Analyze(ctx context.Context, req core.Request) (*core.Result, error)
}

// HistoryLister lists recorded analyses; nil when no database is configured.
type HistoryLister interface {
	ListAnalyses(ctx context.Context, limit, offset int) ([]store.Analysis, int, error)
}

// PageConfig is applied once when the server is built.
type PageConfig struct {
	Title       string
	Icon        string
	ExampleFile string
	WebDir      string
	// Defaults for the page checkboxes.
	ShowIntermediate bool
	RenderWordCloud  bool
}

type Server struct {
	router   *chi.Mux
	analyzer Analyzer
	history  HistoryLister
	page     PageConfig
	tmpl     *template.Template
}

func NewServer(analyzer Analyzer, history HistoryLister, page PageConfig) (*Server, error) {
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:   chi.NewRouter(),
		analyzer: analyzer,
		history:  history,
		page:     page,
		tmpl:     tmpl,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/", s.handleIndex)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/history", s.handleHistory)
		r.Get("/stats", s.handleStats)
	})

	if s.page.WebDir != "" {
		FileServer(s.router, "/static", http.Dir(filepath.Join(s.page.WebDir, "static")))
	}
}

func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
