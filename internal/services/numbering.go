package services

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
)

// NextInvoiceNumber generates the next free invoice number for the given
// year, format YYYY-NNNN. It reads the highest existing sequence for that
// year and increments it. The unique index on invoices.number remains the
// hard guarantee against two concurrent creations racing to the same
// number; this function only produces a candidate.
func NextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("%04d-", year)

	var numbers []string
	err := tx.Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}

	seq := 0
	if len(numbers) > 0 && len(numbers[0]) > len(prefix) {
		if n, err := strconv.Atoi(numbers[0][len(prefix):]); err == nil {
			seq = n
		}
	}
	// Generated numbers must satisfy the same YYYY-NNNN format the
	// validators enforce on user-supplied ones; the sequence ends at 9999.
	if seq >= 9999 {
		return "", rules.Errorf(rules.KindInvalidNumber, "invoice number sequence exhausted for %04d", year)
	}
	return fmt.Sprintf("%04d-%04d", year, seq+1), nil
}
