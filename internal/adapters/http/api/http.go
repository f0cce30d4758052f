// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

// GamesDependencies serves the public portfolio endpoints.
type GamesDependencies interface {
	Games(ctx context.Context, rank resolver.Ranking) (resolver.Result, error)
	TopGame(ctx context.Context) (model.GameRecord, bool, error)
	Summary(ctx context.Context) (resolver.Summary, error)
	DefaultBackground() string
}

// ContactDependencies accepts contact form submissions.
type ContactDependencies interface {
	SubmitContact(ctx context.Context, in model.ContactInput) (notify.Receipt, error)
}

// AdminDependencies manages the portfolio list.
type AdminDependencies interface {
	ListGames(ctx context.Context) ([]model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	CreateGame(ctx context.Context, in model.GameInput) (model.Game, error)
	UpdateGame(ctx context.Context, id string, in model.GameInput) (model.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GamesDependencies
	ContactDependencies
	AdminDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	gamesHandler     *GamesHandler
	contactHandler   *ContactHandler
	authHandler      *AuthHandler
	adminHandler     *AdminGamesHandler
	dashboardHandler *dashboardHandler
	auth             *AdminAuth
	logger           logger.Logger
}

// NewServer creates a new API server with all handlers. A nil auth disables
// every admin route.
func NewServer(deps Dependencies, statsProvider StatsProvider, auth *AdminAuth, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if auth == nil {
		auth = &AdminAuth{}
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		gamesHandler:     NewGamesHandler(deps, log),
		contactHandler:   NewContactHandler(deps, log),
		authHandler:      NewAuthHandler(auth, log),
		adminHandler:     NewAdminGamesHandler(deps, log),
		dashboardHandler: newDashboardHandler(auth),
		auth:             auth,
		logger:           log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	admin := s.auth.RequireAdmin

	s.handle(mux, "/healthz", "healthz", s.healthHandler.HandleHealth)
	s.handle(mux, "/metrics", "metrics", s.healthHandler.HandleMetrics)
	s.handle(mux, "/stats", "stats", s.statsHandler.HandleStats)

	s.handle(mux, "/api/games", "games", s.gamesHandler.HandleGames)
	s.handle(mux, "/api/hero-background", "hero_background", s.gamesHandler.HandleHeroBackground)
	s.handle(mux, "/api/stats", "studio_stats", s.gamesHandler.HandleSummary)
	s.handle(mux, "/api/contact", "contact", s.contactHandler.HandleContact)

	s.handle(mux, "/api/admin/login", "admin_login", s.authHandler.HandleLogin)
	s.handle(mux, "/api/admin/logout", "admin_logout", s.authHandler.HandleLogout)
	s.handle(mux, "/api/admin/games", "admin_games", admin(s.adminHandler.HandleCollection))
	s.handle(mux, "/api/admin/games/", "admin_game", admin(s.adminHandler.HandleItem))

	mux.HandleFunc("/admin", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/admin/login", s.dashboardHandler.HandleLogin)
}

func (s *Server) handle(mux *http.ServeMux, path, endpoint string, h http.HandlerFunc) {
	mux.HandleFunc(path, MetricsMiddleware(RecoveryMiddleware(h, endpoint, s.logger), endpoint))
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
