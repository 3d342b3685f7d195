package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if val.LessThanOrEqual(decimal.Zero) {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func RangeDecimal(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

var invoiceNumberPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// InvoiceNumberFormat reports whether s matches YYYY-NNNN.
func InvoiceNumberFormat(s string) bool {
	return invoiceNumberPattern.MatchString(s)
}
