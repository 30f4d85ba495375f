package server

import (
	"encoding/json"
	"net/http"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
	"stockdeck/internal/provider"
)

type createAlertRequest struct {
	Symbol    string                `json:"symbol"`
	Condition models.AlertCondition `json:"condition"`
	Price     float64               `json:"price"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListAlerts())
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("body", "", "invalid JSON"))
		return
	}
	symbol, err := provider.NormalizeSymbol(req.Symbol)
	if err != nil {
		writeError(w, err)
		return
	}

	alert, err := s.store.CreateAlert(symbol, req.Condition, req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	// Alerts need ticks: watch the alert and start polling its symbol.
	s.monitor.Add(alert)
	s.poller.Track(symbol)

	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.store.GetAlert(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	alert, err := s.store.GetAlert(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteAlert(id); err != nil {
		writeError(w, err)
		return
	}

	s.monitor.Remove(id)
	s.poller.Untrack(alert.Symbol)

	w.WriteHeader(http.StatusNoContent)
}
