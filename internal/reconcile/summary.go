package reconcile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// MonthSummary aggregates one calendar month of a decorated batch.
// Year and Month are zero for the undated bucket and the grand total.
type MonthSummary struct {
	Period string // "2025-07", "undated" or "total"
	Year   int
	Month  int

	Internal     int
	Incoming     int
	Outgoing     int
	Unclassified int

	IncomingTotal decimal.Decimal // sum of credits on Incoming records
	OutgoingTotal decimal.Decimal // sum of debits on Outgoing records
	IncomingGST   decimal.Decimal
	OutgoingGST   decimal.Decimal
}

// NetGST is GST collected less GST paid.
func (m MonthSummary) NetGST() decimal.Decimal {
	return m.IncomingGST.Sub(m.OutgoingGST)
}

func (m *MonthSummary) add(r model.Record) {
	switch r.Classification {
	case model.Internal:
		m.Internal++
	case model.Incoming:
		m.Incoming++
		m.IncomingTotal = m.IncomingTotal.Add(r.Credit)
		m.IncomingGST = m.IncomingGST.Add(r.GST)
	case model.Outgoing:
		m.Outgoing++
		m.OutgoingTotal = m.OutgoingTotal.Add(r.Debit)
		m.OutgoingGST = m.OutgoingGST.Add(r.GST)
	default:
		m.Unclassified++
	}
}

func newSummary(period string, year, month int) *MonthSummary {
	return &MonthSummary{
		Period:        period,
		Year:          year,
		Month:         month,
		IncomingTotal: decimal.Zero,
		OutgoingTotal: decimal.Zero,
		IncomingGST:   decimal.Zero,
		OutgoingGST:   decimal.Zero,
	}
}

// Summarize groups records by the month of their date, oldest first.
// Undated records form a trailing "undated" bucket. The grand total
// covers every record.
func Summarize(records []model.Record) ([]MonthSummary, MonthSummary) {
	byMonth := make(map[int]*MonthSummary)
	var undated *MonthSummary
	total := newSummary("total", 0, 0)

	for _, r := range records {
		total.add(r)
		if !r.HasDate() {
			if undated == nil {
				undated = newSummary("undated", 0, 0)
			}
			undated.add(r)
			continue
		}
		key := r.Year()*100 + r.Month()
		m, ok := byMonth[key]
		if !ok {
			m = newSummary(fmt.Sprintf("%04d-%02d", r.Year(), r.Month()), r.Year(), r.Month())
			byMonth[key] = m
		}
		m.add(r)
	}

	keys := make([]int, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]MonthSummary, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, *byMonth[k])
	}
	if undated != nil {
		out = append(out, *undated)
	}
	return out, *total
}
