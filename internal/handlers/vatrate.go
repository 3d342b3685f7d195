package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/services"
)

// VatRateHandler manages the VAT rate reference data.
type VatRateHandler struct {
	svc *services.VatRateService
}

func NewVatRateHandler(svc *services.VatRateService) *VatRateHandler {
	return &VatRateHandler{svc: svc}
}

// List: GET /api/vat-rates?active=1
func (h *VatRateHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		rates any
		err   error
	)
	if r.URL.Query().Get("active") == "1" {
		rates, err = h.svc.ActiveRates()
	} else {
		rates, err = h.svc.All()
	}
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rates})
}

// Create: POST /api/vat-rates
func (h *VatRateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.VatRateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate, err := h.svc.Create(in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

// Update: PUT /api/vat-rates/{id}
func (h *VatRateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.VatRateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate, err := h.svc.Update(id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

// Deactivate: POST /api/vat-rates/{id}/deactivate hides the rate from
// pickers without touching invoices that already reference it.
func (h *VatRateHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rate, err := h.svc.Deactivate(id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

// Delete: DELETE /api/vat-rates/{id}. Refused while invoices reference
// the rate.
func (h *VatRateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
