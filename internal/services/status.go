package services

import (
	"fmt"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
)

// CanTransition decides whether an invoice may move from current to next.
// pastDue must reflect whether the invoice's due date is strictly before
// today at the moment of the request. The decision is a total function of
// (current, next, pastDue):
//
//   - any status may transition to itself
//   - paid never reverts to an unpaid status
//   - overdue cannot go back to sent while the due date is still in the past
//   - everything else is allowed, including draft straight to paid
//
// The returned reason is empty when the transition is allowed; otherwise it
// is suitable for display to a user.
func CanTransition(current, next models.InvoiceStatus, pastDue bool) (bool, string) {
	if !next.Valid() {
		return false, fmt.Sprintf("invalid status: %q", string(next))
	}
	if current == next {
		return true, ""
	}
	if current == models.InvoiceStatusPaid {
		return false, "paid invoices cannot revert to an unpaid status"
	}
	if current == models.InvoiceStatusOverdue && next == models.InvoiceStatusSent && pastDue {
		return false, "cannot re-mark as sent while still overdue"
	}
	return true, ""
}

// CheckTransition is CanTransition with the refusal mapped onto the rule
// error vocabulary: an unknown target status is KindInvalidStatus, a
// forbidden move is KindIllegalTransition.
func CheckTransition(current, next models.InvoiceStatus, pastDue bool) error {
	if !next.Valid() {
		return rules.Errorf(rules.KindInvalidStatus, "invalid status: %q", string(next))
	}
	if ok, reason := CanTransition(current, next, pastDue); !ok {
		return rules.New(rules.KindIllegalTransition, reason)
	}
	return nil
}
