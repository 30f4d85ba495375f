package server

import (
	"encoding/json"
	"net/http"

	"stockdeck/internal/errors"
	"stockdeck/internal/provider"
)

type createWatchlistRequest struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

func (s *Server) handleListWatchlists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListWatchlists())
}

func (s *Server) handleCreateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req createWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("body", "", "invalid JSON"))
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, raw := range req.Symbols {
		symbol, err := provider.NormalizeSymbol(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		symbols = append(symbols, symbol)
	}

	list, err := s.store.CreateWatchlist(req.Name, symbols)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.GetWatchlist(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWatchlist(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := s.store.AddSymbol(r.PathValue("name"), symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := s.store.RemoveSymbol(r.PathValue("name"), symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
