package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/pdf"
	"github.com/tkallas/arved/internal/services"
	"github.com/tkallas/arved/internal/validation"
)

// InvoiceHandler exposes the invoice aggregate over JSON.
type InvoiceHandler struct {
	svc      *services.InvoiceService
	settings *services.SettingsService
	renderer *pdf.Renderer
}

func NewInvoiceHandler(svc *services.InvoiceService, settings *services.SettingsService, renderer *pdf.Renderer) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, settings: settings, renderer: renderer}
}

// invoiceRequest is the wire form of an invoice create/update; dates come
// in as YYYY-MM-DD.
type invoiceRequest struct {
	Number    string               `json:"number"`
	ClientID  uint                 `json:"client_id"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	VatRateID *uint                `json:"vat_rate_id"`
	Status    string               `json:"status"`
	Lines     []services.LineInput `json:"lines"`
}

func (req invoiceRequest) toInput() (services.InvoiceInput, validation.Violations) {
	v := make(validation.Violations)
	in := services.InvoiceInput{
		Number:    req.Number,
		ClientID:  req.ClientID,
		VatRateID: req.VatRateID,
		Status:    models.InvoiceStatus(req.Status),
		Lines:     req.Lines,
	}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if d, err := time.Parse("2006-01-02", req.IssueDate); err != nil {
		v["issue_date"] = "invalid_date"
	} else {
		in.IssueDate = d
	}
	if d, err := time.Parse("2006-01-02", req.DueDate); err != nil {
		v["due_date"] = "invalid_date"
	} else {
		in.DueDate = d
	}
	return in, v
}

// List: GET /api/invoices?status=&client_id=&date_from=&date_to=
// Runs the overdue sweep first so the listed statuses are consistent.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.MarkOverdue(); err != nil {
		respondError(w, err)
		return
	}

	var f services.ListFilter
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		f.Status = models.InvoiceStatus(s)
		if !f.Status.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", map[string]string{"status": s})
			return
		}
	}
	if s := q.Get("client_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			f.ClientID = uint(id)
		}
	}
	if s := q.Get("date_from"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			f.DateFrom = &d
		}
	}
	if s := q.Get("date_to"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			f.DateTo = &d
		}
	}

	invoices, err := h.svc.List(f)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// View: GET /api/invoices/{id}
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /api/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v := req.toInput()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.svc.Create(in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Update: PUT /api/invoices/{id}
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v := req.toInput()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.svc.Update(id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: DELETE /api/invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ChangeStatus: POST /api/invoices/{id}/status with {"status": "..."}
func (h *InvoiceHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.svc.ChangeStatus(id, models.InvoiceStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Duplicate: POST /api/invoices/{id}/duplicate
func (h *InvoiceHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Duplicate(id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Send: POST /api/invoices/{id}/send marks a draft as sent.
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Send(id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PDF: GET /api/invoices/{id}/pdf?template=standard|modern|elegant
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	company, err := h.settings.Get()
	if err != nil {
		respondError(w, err)
		return
	}
	tpl := pdf.ResolveTemplate(r.URL.Query().Get("template"), company.DefaultTemplate)
	body, err := h.renderer.Render(inv, company, tpl)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s_%s.pdf", inv.Number, tpl))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
