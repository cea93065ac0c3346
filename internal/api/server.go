// Package api exposes the REST administration surface: CRUD for teams,
// players and matches, plus the endpoint that flips which match is live.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/pitchside/server/internal/live"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/players"
	"github.com/pitchside/server/internal/teams"
	"github.com/rs/zerolog/log"
)

// Server bundles the REST handlers and their dependencies.
type Server struct {
	teams       *teams.Repository
	players     *players.Repository
	matches     *matches.Repository
	coordinator *live.Coordinator
}

// NewServer creates the REST API server
func NewServer(t *teams.Repository, p *players.Repository, m *matches.Repository, c *live.Coordinator) *Server {
	return &Server{teams: t, players: p, matches: m, coordinator: c}
}

// RegisterRoutes attaches all REST routes under /api.
func (s *Server) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/teams", s.handleListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams", s.handleCreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}", s.handleGetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}", s.handleUpdateTeam).Methods(http.MethodPut)
	api.HandleFunc("/teams/{id}", s.handleDeleteTeam).Methods(http.MethodDelete)

	api.HandleFunc("/players", s.handleListPlayers).Methods(http.MethodGet)
	api.HandleFunc("/players", s.handleCreatePlayer).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", s.handleUpdatePlayer).Methods(http.MethodPut)
	api.HandleFunc("/players/{id}", s.handleDeletePlayer).Methods(http.MethodDelete)

	api.HandleFunc("/matches", s.handleListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches", s.handleCreateMatch).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", s.handleUpdateMatch).Methods(http.MethodPut)
	api.HandleFunc("/matches/{id}", s.handleDeleteMatch).Methods(http.MethodDelete)

	api.HandleFunc("/live", s.handleGetLiveMatch).Methods(http.MethodGet)
	api.HandleFunc("/live/{matchId}", s.handleSetMatchLive).Methods(http.MethodPost)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps repository failures onto the REST error taxonomy:
// missing rows are 404s, everything else is a 500.
func respondStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		respondError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	log.Error().Err(err).Msg("store operation failed")
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
