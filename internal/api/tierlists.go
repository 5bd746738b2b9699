package api

import (
	"net/http"
)

type titleRequest struct {
	Title string `json:"title"`
}

type storeRequest struct {
	Path string `json:"path"`
}

// handleGetTierList returns the whole tier list
func (s *Server) handleGetTierList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleSetTitle renames the tier list
func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.ws.Engine().SetTitle(req.Title)
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleStoreStatus reports which store file, if any, the session saves to
func (s *Server) handleStoreStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"open": s.ws.StoreOpen(), "path": s.ws.StorePath()})
}

// handleLoad opens a store file and replaces the tier list with its contents
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}

	if err := s.ws.Load(r.Context(), req.Path); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleSave writes the tier list to the open store, or to path when given
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := s.ws.Save(r.Context(), req.Path); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved", "path": s.ws.StorePath()})
}
