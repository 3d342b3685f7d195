package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/handlers"
	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/pdf"
	"github.com/tkallas/arved/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, clock services.Clock) http.Handler {
	mux := http.NewServeMux()

	rateSvc := services.NewVatRateService(db)
	invoiceSvc := services.NewInvoiceService(db, rateSvc, clock)
	clientSvc := services.NewClientService(db)
	settingsSvc := services.NewSettingsService(db)
	dashboardSvc := services.NewDashboardService(db, clock)

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Invoice endpoints
	ih := handlers.NewInvoiceHandler(invoiceSvc, settingsSvc, pdf.NewRenderer())
	mux.HandleFunc("GET /api/invoices", ih.List)
	mux.HandleFunc("POST /api/invoices", ih.Create)
	mux.HandleFunc("GET /api/invoices/{id}", ih.View)
	mux.HandleFunc("PUT /api/invoices/{id}", ih.Update)
	mux.HandleFunc("DELETE /api/invoices/{id}", ih.Delete)
	mux.HandleFunc("POST /api/invoices/{id}/status", ih.ChangeStatus)
	mux.HandleFunc("POST /api/invoices/{id}/send", ih.Send)
	mux.HandleFunc("POST /api/invoices/{id}/duplicate", ih.Duplicate)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", ih.PDF)

	// Client endpoints
	ch := handlers.NewClientHandler(clientSvc)
	mux.HandleFunc("GET /api/clients", ch.List)
	mux.HandleFunc("POST /api/clients", ch.Create)
	mux.HandleFunc("GET /api/clients/{id}", ch.View)
	mux.HandleFunc("PUT /api/clients/{id}", ch.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", ch.Delete)
	mux.HandleFunc("GET /api/clients/{id}/stats", ch.Stats)

	// VAT rate endpoints
	vh := handlers.NewVatRateHandler(rateSvc)
	mux.HandleFunc("GET /api/vat-rates", vh.List)
	mux.HandleFunc("POST /api/vat-rates", vh.Create)
	mux.HandleFunc("PUT /api/vat-rates/{id}", vh.Update)
	mux.HandleFunc("POST /api/vat-rates/{id}/deactivate", vh.Deactivate)
	mux.HandleFunc("DELETE /api/vat-rates/{id}", vh.Delete)

	// Company settings
	sh := handlers.NewSettingsHandler(settingsSvc)
	mux.HandleFunc("GET /api/settings", sh.View)
	mux.HandleFunc("PUT /api/settings", sh.Update)

	// Dashboard
	dh := handlers.NewDashboardHandler(dashboardSvc, invoiceSvc)
	mux.HandleFunc("GET /api/dashboard", dh.View)

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Any("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
