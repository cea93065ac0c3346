package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/models"
)

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	list, err := s.matches.ListMatches(r.Context())
	if err != nil {
		respondStoreError(w, err, "matches not found")
		return
	}
	if list == nil {
		list = []*models.Match{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req matches.CreateMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.HomeTeamID == uuid.Nil || req.AwayTeamID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "home_team_id and away_team_id are required")
		return
	}
	if req.HomeTeamID == req.AwayTeamID {
		respondError(w, http.StatusBadRequest, "a team cannot play itself")
		return
	}

	match, err := s.matches.CreateMatch(r.Context(), req)
	if err != nil {
		respondStoreError(w, err, "match not found")
		return
	}
	respondJSON(w, http.StatusCreated, match)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	match, err := s.matches.GetMatch(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "match not found")
		return
	}
	respondJSON(w, http.StatusOK, match)
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req matches.UpdateMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	match, err := s.matches.UpdateMatch(r.Context(), id, req)
	if err != nil {
		respondStoreError(w, err, "match not found")
		return
	}
	respondJSON(w, http.StatusOK, match)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.matches.DeleteMatch(r.Context(), id); err != nil {
		respondStoreError(w, err, "match not found")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
