package api

import (
	"fmt"
	"net/http"

	"github.com/meur/tiermaker/internal/models"
	"github.com/meur/tiermaker/internal/tierlist"
)

type itemRequest struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Thumb *string `json:"thumb"`
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type itemResponse struct {
	Item models.Item      `json:"item"`
	Tier models.Container `json:"tier"` // null = pool
	Pos  int              `json:"pos"`
}

type moveItemRequest struct {
	Tier models.Container `json:"tier"` // null = pool
	Pos  int              `json:"pos"`
}

// handleCreateItem adds a new item to the end of the pool
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	id := s.ws.Engine().AddNewItem(req.Name, req.URL, req.Thumb)
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleScrapeItem creates an item from a product page
func (s *Server) handleScrapeItem(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decodeJSON(r, &req); err != nil || req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	id, err := s.ws.AddFromURL(r.Context(), req.URL)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleGetItem returns an item with the container holding it
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	item, ok := s.ws.Engine().Snapshot().Items[id]
	if !ok {
		respondErr(w, r, fmt.Errorf("%w: %d", tierlist.ErrUnknownItem, id))
		return
	}
	c, pos, err := s.ws.Engine().Locate(id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, itemResponse{Item: item, Tier: c, Pos: pos})
}

// handleUpdateItem edits an item's fields
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.ws.Engine().UpdateItem(id, req.Name, req.URL, req.Thumb); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleDeleteItem removes an item from the tier list entirely
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	if err := s.ws.Engine().DeleteItem(id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}

// handleMoveItem moves an item into a tier or the pool
func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	var req moveItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ws.Engine().MoveItem(id, req.Tier, req.Pos); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ws.Engine().Snapshot())
}
