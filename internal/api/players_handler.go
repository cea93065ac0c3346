package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pitchside/server/internal/models"
	"github.com/pitchside/server/internal/players"
)

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := s.players.ListPlayers(r.Context())
	if err != nil {
		respondStoreError(w, err, "players not found")
		return
	}
	if list == nil {
		list = []models.Player{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.CreatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TeamID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "team_id is required")
		return
	}

	player, err := s.players.CreatePlayer(r.Context(), req)
	if err != nil {
		respondStoreError(w, err, "player not found")
		return
	}
	respondJSON(w, http.StatusCreated, player)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	player, err := s.players.GetPlayer(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "player not found")
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req players.UpdatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	player, err := s.players.UpdatePlayer(r.Context(), id, req)
	if err != nil {
		respondStoreError(w, err, "player not found")
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.players.DeletePlayer(r.Context(), id); err != nil {
		respondStoreError(w, err, "player not found")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
