package api

import (
	"net/http"
)

func (s *Server) handleGetLiveMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.matches.FindLive(r.Context())
	if err != nil {
		respondStoreError(w, err, "no live match")
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "no live match")
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// handleSetMatchLive hands the switch to the live coordinator so the flag
// flip, the state reload and the broadcast happen on the same goroutine as
// every other live-match mutation.
func (s *Server) handleSetMatchLive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchId")
	if !ok {
		return
	}

	if err := s.coordinator.SetLive(r.Context(), id); err != nil {
		respondStoreError(w, err, "match not found")
		return
	}

	match, err := s.matches.GetMatch(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "match not found")
		return
	}
	respondJSON(w, http.StatusOK, match)
}
