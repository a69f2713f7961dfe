package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzhttp"

	"github.com/ernie/survivor-stats/internal/auth"
	"github.com/ernie/survivor-stats/internal/domain"
	"github.com/ernie/survivor-stats/internal/leaderboard"
	"github.com/ernie/survivor-stats/internal/season"
	"github.com/ernie/survivor-stats/internal/storage"
)

// StatusProvider returns the game server status, never failing
type StatusProvider interface {
	Status(ctx context.Context) *domain.ServerStatus
}

// Deps are the services the HTTP API is built on
type Deps struct {
	Store       *storage.Store
	Seasons     *season.Controller
	Leaderboard *leaderboard.Service
	Status      StatusProvider
	Auth        *auth.Service
	Metrics     http.Handler
	Logger      *slog.Logger
	StaticDir   string
}

// Router holds the HTTP routes and dependencies
type Router struct {
	mux         *http.ServeMux
	store       *storage.Store
	seasons     *season.Controller
	leaderboard *leaderboard.Service
	status      StatusProvider
	auth        *auth.Service
	logger      *slog.Logger
	staticDir   string
}

// NewRouter creates a new HTTP router
func NewRouter(deps Deps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		mux:         http.NewServeMux(),
		store:       deps.Store,
		seasons:     deps.Seasons,
		leaderboard: deps.Leaderboard,
		status:      deps.Status,
		auth:        deps.Auth,
		logger:      logger,
		staticDir:   deps.StaticDir,
	}

	// Public routes
	r.mux.HandleFunc("GET /api/leaderboard", r.handleGetLeaderboard)
	r.mux.HandleFunc("GET /api/players", r.handleSearchPlayers)
	r.mux.HandleFunc("GET /api/players/{key}", r.handleGetPlayer)
	r.mux.HandleFunc("GET /api/seasons", r.handleListSeasons)
	r.mux.HandleFunc("GET /api/seasons/{id}/export", r.handleExportSeason)
	r.mux.HandleFunc("GET /api/seasons/{id}/standings", r.handleSeasonStandings)
	r.mux.HandleFunc("GET /api/server/status", r.handleServerStatus)

	// Auth routes
	r.mux.HandleFunc("POST /api/auth/login", r.handleLogin)
	r.mux.HandleFunc("POST /api/auth/logout", r.handleLogout)
	r.mux.HandleFunc("GET /api/auth/check", r.handleAuthCheck)

	// Admin routes
	r.mux.HandleFunc("POST /api/admin/seasons", r.requireAdmin(r.handleStartSeason))
	r.mux.HandleFunc("POST /api/admin/seasons/end", r.requireAdmin(r.handleEndSeason))
	r.mux.HandleFunc("DELETE /api/admin/seasons/{id}", r.requireAdmin(r.handleDeleteSeason))
	r.mux.HandleFunc("GET /api/admin/blacklist", r.requireAdmin(r.handleListBlacklist))
	r.mux.HandleFunc("POST /api/admin/blacklist", r.requireAdmin(r.handleAddBlacklist))
	r.mux.HandleFunc("DELETE /api/admin/blacklist/{id}", r.requireAdmin(r.handleRemoveBlacklist))
	r.mux.HandleFunc("GET /api/admin/scoring", r.requireAdmin(r.handleGetScoring))
	r.mux.HandleFunc("PUT /api/admin/scoring", r.requireAdmin(r.handleUpdateScoring))
	r.mux.HandleFunc("PATCH /api/admin/leaderboards/{id}", r.requireAdmin(r.handleUpdateCategory))

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	if deps.Metrics != nil {
		r.mux.Handle("GET /metrics", deps.Metrics)
	}

	// Static files - only serve if staticDir is configured
	if r.staticDir != "" {
		r.mux.HandleFunc("GET /", r.handleStatic)
	}

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for API
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the router wrapped in request logging and gzip compression
func (r *Router) Handler() http.Handler {
	return withRequestID(r.logger, gzhttp.GzipHandler(r))
}

// handleStatic serves static files from the configured directory
// For SPA support, serves index.html for any path that doesn't match a file
func (r *Router) handleStatic(w http.ResponseWriter, req *http.Request) {
	path := filepath.Clean(req.URL.Path)
	if path == "/" {
		path = "/index.html"
	}
	fullPath := filepath.Join(r.staticDir, path)

	// ensure the path is within staticDir
	absStaticDir, _ := filepath.Abs(r.staticDir)
	absPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absPath, absStaticDir) {
		http.NotFound(w, req)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		fullPath = filepath.Join(r.staticDir, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			http.NotFound(w, req)
			return
		}
	}

	if contentType := getContentType(fullPath); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFile(w, req, fullPath)
}

// getContentType returns the content type for a file based on extension
func getContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	default:
		return ""
	}
}
