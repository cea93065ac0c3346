package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pitchside/server/internal/models"
	"github.com/pitchside/server/internal/teams"
)

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	list, err := s.teams.ListTeams(r.Context())
	if err != nil {
		respondStoreError(w, err, "teams not found")
		return
	}
	if list == nil {
		list = []models.Team{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teams.CreateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	team, err := s.teams.CreateTeam(r.Context(), req)
	if err != nil {
		respondStoreError(w, err, "team not found")
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	team, err := s.teams.GetTeam(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "team not found")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req teams.UpdateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	team, err := s.teams.UpdateTeam(r.Context(), id, req)
	if err != nil {
		respondStoreError(w, err, "team not found")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.teams.DeleteTeam(r.Context(), id); err != nil {
		respondStoreError(w, err, "team not found")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// pathID extracts and parses a UUID path variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
