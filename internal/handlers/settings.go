package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/services"
)

// SettingsHandler exposes the singleton company settings.
type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// View: GET /api/settings
func (h *SettingsHandler) View(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Get()
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// Update: PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	settings, err := h.svc.Update(in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}
