package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/repository"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

const adminGamesPrefix = "/api/admin/games/"

// AdminGamesHandler serves CRUD over the portfolio list.
type AdminGamesHandler struct {
	deps AdminDependencies
	log  logger.Logger
}

// NewAdminGamesHandler creates a new admin games handler.
func NewAdminGamesHandler(deps AdminDependencies, log logger.Logger) *AdminGamesHandler {
	return &AdminGamesHandler{deps: deps, log: log}
}

func validateGame(in model.GameInput) error {
	for _, v := range []string{in.Title, in.Description, in.ImageURL, in.Category} {
		if strings.TrimSpace(v) == "" {
			return ErrMissing
		}
	}
	return nil
}

// HandleCollection handles GET and POST /api/admin/games.
func (h *AdminGamesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		games, err := h.deps.ListGames(r.Context())
		if err != nil {
			h.fail(w, r, "api.list_games", err, "Failed to fetch games")
			return
		}
		writeJSON(w, http.StatusOK, games)
	case http.MethodPost:
		in, ok := h.readInput(w, r)
		if !ok {
			return
		}
		g, err := h.deps.CreateGame(r.Context(), in)
		if err != nil {
			h.fail(w, r, "api.create_game", err, "Failed to create game")
			return
		}
		writeJSON(w, http.StatusCreated, g)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles GET, PUT and DELETE /api/admin/games/{id}.
func (h *AdminGamesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, adminGamesPrefix)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing game id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		g, err := h.deps.GetGame(r.Context(), id)
		if err != nil {
			h.fail(w, r, "api.get_game", err, "Failed to fetch game")
			return
		}
		writeJSON(w, http.StatusOK, g)
	case http.MethodPut:
		in, ok := h.readInput(w, r)
		if !ok {
			return
		}
		g, err := h.deps.UpdateGame(r.Context(), id, in)
		if err != nil {
			h.fail(w, r, "api.update_game", err, "Failed to update game")
			return
		}
		writeJSON(w, http.StatusOK, g)
	case http.MethodDelete:
		if err := h.deps.DeleteGame(r.Context(), id); err != nil {
			h.fail(w, r, "api.delete_game", err, "Failed to delete game")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Game deleted successfully"})
	default:
		http.NotFound(w, r)
	}
}

func (h *AdminGamesHandler) readInput(w http.ResponseWriter, r *http.Request) (model.GameInput, bool) {
	var in model.GameInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	if err := validateGame(in); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return in, false
	}
	return in, true
}

// fail maps a store error to 404 or a logged 500 with msg.
func (h *AdminGamesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	h.log.Error(r.Context(), msg, logger.Error(WrapKind(op, ErrInternal, err)))
	writeError(w, http.StatusInternalServerError, msg)
}
