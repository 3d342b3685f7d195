package handlers

import (
	"net/http"

	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/services"
)

// DashboardHandler serves the overview metrics.
type DashboardHandler struct {
	svc      *services.DashboardService
	invoices *services.InvoiceService
}

func NewDashboardHandler(svc *services.DashboardService, invoices *services.InvoiceService) *DashboardHandler {
	return &DashboardHandler{svc: svc, invoices: invoices}
}

// View: GET /api/dashboard. The overdue sweep runs first so the unpaid
// and outstanding buckets reflect today's date.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	if _, err := h.invoices.MarkOverdue(); err != nil {
		respondError(w, err)
		return
	}
	metrics, err := h.svc.Metrics()
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}
