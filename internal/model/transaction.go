package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one canonical bank statement line. The normalizer fills the
// input fields; the engines only append decorations to copies of it.
type Record struct {
	Index         int       // position in the reconciliation batch
	Date          time.Time // zero = no date
	Bank          string
	Account       string
	TransactionID string
	Description   string
	Debit         decimal.Decimal // zero if not a debit leg
	Credit        decimal.Decimal // zero if not a credit leg

	Classification Classification
	PairID         string // set iff Classification == Internal
	GSTCategory    GSTCategory
	GST            decimal.Decimal
}

// HasDate reports whether the record carries a statement date.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// Month returns the statement month (1-12), or 0 when the record has no date.
func (r Record) Month() int {
	if !r.HasDate() {
		return 0
	}
	return int(r.Date.Month())
}

// Year returns the statement year, or 0 when the record has no date.
func (r Record) Year() int {
	if !r.HasDate() {
		return 0
	}
	return r.Date.Year()
}

// Ambiguous reports whether both legs are nonzero on the same line.
func (r Record) Ambiguous() bool {
	return !r.Debit.IsZero() && !r.Credit.IsZero()
}
