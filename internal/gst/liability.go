package gst

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// Liability is the GST position of a batch.
type Liability struct {
	Collected decimal.Decimal // on Incoming records
	Paid      decimal.Decimal // on Outgoing records
}

// Net returns GST owed; negative means a refund.
func (l Liability) Net() decimal.Decimal {
	return l.Collected.Sub(l.Paid)
}

// Compute sums GST over external records. Internal transfers and
// unclassified rows never contribute.
func Compute(records []model.Record) Liability {
	l := Liability{Collected: decimal.Zero, Paid: decimal.Zero}
	for _, r := range records {
		switch r.Classification {
		case model.Incoming:
			l.Collected = l.Collected.Add(r.GST)
		case model.Outgoing:
			l.Paid = l.Paid.Add(r.GST)
		}
	}
	return l
}
