package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// Candidate is one debit or credit leg eligible for pairing.
type Candidate struct {
	Index   int
	Account string
	Amount  decimal.Decimal // absolute value of the leg
	Date    time.Time
}

// JoinRow is one row of the amount join. Either side may be nil when a
// candidate has no equal-amount counterpart.
type JoinRow struct {
	Debit  *Candidate
	Credit *Candidate
}

// Complete reports whether both sides of the row are present.
func (r JoinRow) Complete() bool {
	return r.Debit != nil && r.Credit != nil
}

// DebitCandidates returns one candidate per record with a nonzero debit, in record order.
func DebitCandidates(records []model.Record, policy AmbiguousPolicy) []Candidate {
	return candidates(records, policy, func(r model.Record) decimal.Decimal { return r.Debit })
}

// CreditCandidates returns one candidate per record with a nonzero credit, in record order.
func CreditCandidates(records []model.Record, policy AmbiguousPolicy) []Candidate {
	return candidates(records, policy, func(r model.Record) decimal.Decimal { return r.Credit })
}

func candidates(records []model.Record, policy AmbiguousPolicy, leg func(model.Record) decimal.Decimal) []Candidate {
	var out []Candidate
	for i, r := range records {
		amount := leg(r)
		if amount.IsZero() {
			continue
		}
		if policy == ExcludeAmbiguous && r.Ambiguous() {
			continue
		}
		out = append(out, Candidate{
			Index:   i,
			Account: r.Account,
			Amount:  amount.Abs(),
			Date:    r.Date,
		})
	}
	return out
}

// Join performs a full outer equality join of debits and credits on amount.
// Rows follow debit order; each debit is repeated once per equal-amount
// credit, in credit order. Credits never matched by any debit follow at the
// end, in credit order.
func Join(debits, credits []Candidate) []JoinRow {
	byAmount := make(map[string][]int, len(credits))
	for i, c := range credits {
		key := amountKey(c.Amount)
		byAmount[key] = append(byAmount[key], i)
	}

	matched := make([]bool, len(credits))
	rows := make([]JoinRow, 0, len(debits)+len(credits))
	for i := range debits {
		d := &debits[i]
		peers := byAmount[amountKey(d.Amount)]
		if len(peers) == 0 {
			rows = append(rows, JoinRow{Debit: d})
			continue
		}
		for _, j := range peers {
			matched[j] = true
			rows = append(rows, JoinRow{Debit: d, Credit: &credits[j]})
		}
	}
	for j := range credits {
		if !matched[j] {
			rows = append(rows, JoinRow{Credit: &credits[j]})
		}
	}
	return rows
}

// amountKey normalizes a decimal so that 100, 100.0 and 100.00 collide.
func amountKey(d decimal.Decimal) string {
	return d.String()
}
