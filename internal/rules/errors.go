// Package rules holds the business-rule error vocabulary shared by the
// calculation and service layers. Every rule violation is recoverable and
// carries a machine-readable kind plus a human-readable reason, so the
// presentation layer can report it without re-encoding the rule.
package rules

import (
	"errors"
	"fmt"
)

// Kind identifies a class of business-rule violation.
type Kind string

const (
	KindInvalidAmount          Kind = "invalid_amount"
	KindInvalidNumber          Kind = "invalid_number"
	KindInvalidStatus          Kind = "invalid_status"
	KindIllegalTransition      Kind = "illegal_transition"
	KindEmptyInvoice           Kind = "empty_invoice"
	KindDuplicateInvoiceNumber Kind = "duplicate_invoice_number"
	KindDuplicateVatRate       Kind = "duplicate_vat_rate"
	KindRateInUse              Kind = "rate_in_use"
	KindClientHasInvoices      Kind = "client_has_invoices"
	KindEditForbidden          Kind = "edit_forbidden"
)

// Error is a structured business-rule violation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a rule violation with a fixed message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf builds a rule violation with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the violation kind from err. The second return is false
// when err is not a rule violation (e.g. a storage failure), in which case
// callers should treat it as an internal error.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

// Is reports whether err is a rule violation of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
