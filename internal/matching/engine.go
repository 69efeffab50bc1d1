package matching

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/recon/internal/id"
	"github.com/cleared-dev/recon/internal/model"
)

// AmbiguousPolicy decides whether records carrying both a debit and a
// credit may take part in pairing.
type AmbiguousPolicy string

const (
	// AllowAmbiguous lets an ambiguous record act as a debit and a credit
	// candidate. It still joins at most one pair.
	AllowAmbiguous AmbiguousPolicy = "allow"
	// ExcludeAmbiguous keeps ambiguous records out of pairing entirely.
	ExcludeAmbiguous AmbiguousPolicy = "exclude"
)

// ParseAmbiguousPolicy validates a configured policy name. Empty means allow.
func ParseAmbiguousPolicy(s string) (AmbiguousPolicy, error) {
	switch AmbiguousPolicy(s) {
	case "", AllowAmbiguous:
		return AllowAmbiguous, nil
	case ExcludeAmbiguous:
		return ExcludeAmbiguous, nil
	}
	return "", fmt.Errorf("unknown ambiguous row policy %q (want %q or %q)", s, AllowAmbiguous, ExcludeAmbiguous)
}

// Options configures an Engine.
type Options struct {
	// DateWindow restricts pairing to legs at most this many days apart.
	// Zero disables the check.
	DateWindow int
	// AmbiguousRows defaults to AllowAmbiguous.
	AmbiguousRows AmbiguousPolicy
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Engine partitions a batch into internal-transfer pairs and external movements.
// An Engine holds no per-run state and may be shared between goroutines.
type Engine struct {
	window time.Duration
	policy AmbiguousPolicy
	log    zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		policy: opts.AmbiguousRows,
		log:    zerolog.Nop(),
	}
	if e.policy == "" {
		e.policy = AllowAmbiguous
	}
	if opts.DateWindow > 0 {
		e.window = time.Duration(opts.DateWindow) * 24 * time.Hour
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "matching").Logger()
	}
	return e
}

// Classify returns a copy of records with Index, Classification and PairID
// filled. The input slice is not modified. Classify never fails.
func Classify(records []model.Record) []model.Record {
	return NewEngine(Options{}).Classify(records)
}

// Classify returns a copy of records with Index, Classification and PairID
// filled. The input slice is not modified.
func (e *Engine) Classify(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	for i := range out {
		out[i].Index = i
		out[i].Classification = ""
		out[i].PairID = ""
		if out[i].Ambiguous() {
			e.log.Debug().Int("index", i).
				Str("debit", out[i].Debit.String()).
				Str("credit", out[i].Credit.String()).
				Msg("record has both debit and credit")
		}
	}

	rows := Join(DebitCandidates(out, e.policy), CreditCandidates(out, e.policy))

	seq := id.NewSequence()
	consumed := make([]bool, len(out))
	for _, row := range rows {
		if !row.Complete() {
			continue
		}
		d, c := row.Debit, row.Credit
		if consumed[d.Index] || consumed[c.Index] {
			continue
		}
		if d.Account == c.Account {
			continue
		}
		if !e.withinWindow(d.Date, c.Date) {
			e.log.Debug().Int("debit", d.Index).Int("credit", c.Index).Msg("legs outside date window")
			continue
		}

		pairID := seq.Next()
		for _, idx := range []int{d.Index, c.Index} {
			out[idx].Classification = model.Internal
			out[idx].PairID = pairID
			consumed[idx] = true
		}
	}

	for i := range out {
		if consumed[i] {
			continue
		}
		switch {
		case out[i].Debit.IsPositive():
			out[i].Classification = model.Outgoing
		case out[i].Credit.IsPositive():
			out[i].Classification = model.Incoming
		default:
			out[i].Classification = model.Unclassified
		}
	}

	e.log.Debug().Int("records", len(out)).Int("pairs", seq.Issued()).Msg("classified batch")
	return out
}

func (e *Engine) withinWindow(a, b time.Time) bool {
	if e.window == 0 {
		return true
	}
	if a.IsZero() || b.IsZero() {
		return false
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.window
}
