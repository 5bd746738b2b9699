package api

import (
	"net/http"
)

type tierRequest struct {
	Title string `json:"title"`
	Pos   int    `json:"pos"`
}

type moveTierRequest struct {
	Pos int `json:"pos"`
}

// handleCreateTier inserts an empty tier
func (s *Server) handleCreateTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := s.ws.Engine().AddNewTier(req.Title, req.Pos)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleRenameTier changes a tier's title
func (s *Server) handleRenameTier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tier id")
		return
	}
	var req tierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ws.Engine().RenameTier(id, req.Title); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleDeleteTier removes a tier, sending its items back to the pool
func (s *Server) handleDeleteTier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tier id")
		return
	}

	if err := s.ws.Engine().DeleteTier(id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleMoveTier reorders a tier
func (s *Server) handleMoveTier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid tier id")
		return
	}
	var req moveTierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ws.Engine().MoveTier(id, req.Pos); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}
