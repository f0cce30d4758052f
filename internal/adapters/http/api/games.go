package api

import (
	"net/http"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

// GamesHandler serves the public portfolio endpoints.
type GamesHandler struct {
	deps GamesDependencies
	log  logger.Logger
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies, log logger.Logger) *GamesHandler {
	return &GamesHandler{deps: deps, log: log}
}

// gameView adds the ccu alias the front end sorts on.
type gameView struct {
	model.GameRecord
	CCU int64 `json:"ccu"`
}

type gamesResponse struct {
	Success   bool       `json:"success"`
	Games     []gameView `json:"games"`
	Count     int        `json:"count"`
	Timestamp time.Time  `json:"timestamp"`
}

type gamesErrorResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Message string     `json:"message"`
	Games   []gameView `json:"games"`
	Count   int        `json:"count"`
}

// HandleGames handles GET /api/games?rank=ccu|visits requests.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_games"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rank, err := resolver.ParseRanking(r.URL.Query().Get("rank"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, gamesErrorResponse{
			Error:   "Invalid rank",
			Message: err.Error(),
			Games:   []gameView{},
		})
		return
	}

	res, err := h.deps.Games(r.Context(), rank)
	if err != nil {
		h.log.Error(r.Context(), "failed to fetch game data", logger.Error(Wrap(op, err)))
		writeJSON(w, http.StatusInternalServerError, gamesErrorResponse{
			Error:   "Failed to fetch game data",
			Message: err.Error(),
			Games:   []gameView{},
		})
		return
	}

	views := make([]gameView, 0, len(res.Games))
	for _, g := range res.Games {
		views = append(views, gameView{GameRecord: g, CCU: g.CCU()})
	}
	writeJSON(w, http.StatusOK, gamesResponse{
		Success:   true,
		Games:     views,
		Count:     res.Count,
		Timestamp: res.Timestamp,
	})
}

type heroResponse struct {
	Success        bool   `json:"success"`
	BackgroundURL  string `json:"backgroundUrl"`
	GameName       string `json:"gameName"`
	VisitCount     int64  `json:"visitCount"`
	CurrentPlayers int64  `json:"currentPlayers,omitempty"`
	GameURL        string `json:"gameUrl,omitempty"`
}

// HandleHeroBackground handles GET /api/hero-background requests. It always
// answers 200; without a resolvable game it names the default background.
func (h *GamesHandler) HandleHeroBackground(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_hero_background"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	fallback := h.deps.DefaultBackground()

	top, ok, err := h.deps.TopGame(r.Context())
	if err != nil {
		h.log.Warn(r.Context(), "hero background lookup failed", logger.Error(Wrap(op, err)))
	}
	if err != nil || !ok {
		writeJSON(w, http.StatusOK, heroResponse{
			BackgroundURL: fallback,
			GameName:      "Default Background",
		})
		return
	}

	bg := model.Value(top.ThumbnailReference)
	if bg == "" {
		bg = fallback
	}
	writeJSON(w, http.StatusOK, heroResponse{
		Success:        true,
		BackgroundURL:  bg,
		GameName:       top.DisplayName,
		VisitCount:     top.TotalVisits,
		CurrentPlayers: top.ConcurrentUsers,
		GameURL:        top.GameURL,
	})
}

type summaryResponse struct {
	Success bool `json:"success"`
	resolver.Summary
}

// HandleSummary handles GET /api/stats requests.
func (h *GamesHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sum, err := h.deps.Summary(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "failed to summarise games", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, "Failed to fetch studio stats")
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Success: true, Summary: sum})
}
