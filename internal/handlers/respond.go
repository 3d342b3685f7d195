package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tkallas/arved/internal/httpx"
	"github.com/tkallas/arved/internal/rules"
	"github.com/tkallas/arved/internal/services"
)

// statusFor maps a rule violation onto an HTTP status. Uniqueness and
// state conflicts are 409, malformed input is 400.
func statusFor(kind rules.Kind) int {
	switch kind {
	case rules.KindDuplicateInvoiceNumber,
		rules.KindDuplicateVatRate,
		rules.KindRateInUse,
		rules.KindClientHasInvoices,
		rules.KindIllegalTransition,
		rules.KindEditForbidden:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondError writes err as JSON. Business-rule violations keep their
// kind and reason; storage failures are logged and reported generically.
func respondError(w http.ResponseWriter, err error) {
	if services.IsNotFound(err) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if kind, ok := rules.KindOf(err); ok {
		httpx.JSONError(w, statusFor(kind), string(kind), map[string]string{"reason": err.Error()})
		return
	}
	log.Error().Err(err).Msg("request failed")
	httpx.JSONError(w, http.StatusInternalServerError, "persistence_failure", nil)
}
