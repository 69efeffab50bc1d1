package matching

import (
	"fmt"
	"sort"

	"github.com/cleared-dev/recon/internal/model"
)

// InvariantError describes a classified batch that breaks a pairing rule.
type InvariantError struct {
	Index  int    // record index, or -1 for pair-level problems
	PairID string // empty for record-level problems
	Reason string
}

func (e InvariantError) Error() string {
	if e.PairID != "" {
		return fmt.Sprintf("pair %s: %s", e.PairID, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Pair is two records linked by one pair ID.
type Pair struct {
	ID     string
	Debit  int
	Credit int
}

// Pairs groups an already classified batch by pair ID, ordered by ID.
// Records that do not form a clean debit/credit pair are left out; Validate
// reports them.
func Pairs(records []model.Record) []Pair {
	groups := groupPairs(records)
	ids := make([]string, 0, len(groups))
	for pid := range groups {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	var pairs []Pair
	for _, pid := range ids {
		members := groups[pid]
		if len(members) != 2 {
			continue
		}
		if d, c, ok := orient(records, members[0], members[1]); ok {
			pairs = append(pairs, Pair{ID: pid, Debit: d, Credit: c})
		}
	}
	return pairs
}

// Validate checks a classified batch:
//  1. every classification is one of the four known values;
//  2. pair ID is set exactly on Internal records;
//  3. each pair ID is shared by exactly two records;
//  4. the two records of a pair have opposite roles and equal amounts;
//  5. the two records of a pair sit on different accounts.
func Validate(records []model.Record) []InvariantError {
	var errs []InvariantError

	for i, r := range records {
		if !r.Classification.Valid() {
			errs = append(errs, InvariantError{Index: i, Reason: fmt.Sprintf("unknown classification %q", r.Classification)})
		}
		isInternal := r.Classification == model.Internal
		if isInternal && r.PairID == "" {
			errs = append(errs, InvariantError{Index: i, Reason: "internal record without pair ID"})
		}
		if !isInternal && r.PairID != "" {
			errs = append(errs, InvariantError{Index: i, Reason: fmt.Sprintf("%s record carries pair ID %s", r.Classification, r.PairID)})
		}
	}

	groups := groupPairs(records)
	ids := make([]string, 0, len(groups))
	for pid := range groups {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	for _, pid := range ids {
		members := groups[pid]
		if len(members) != 2 {
			errs = append(errs, InvariantError{Index: -1, PairID: pid, Reason: fmt.Sprintf("shared by %d records", len(members))})
			continue
		}
		d, c, ok := orient(records, members[0], members[1])
		if !ok {
			errs = append(errs, InvariantError{Index: -1, PairID: pid, Reason: "records do not form a debit/credit pair of equal amount"})
			continue
		}
		if records[d].Account == records[c].Account {
			errs = append(errs, InvariantError{Index: -1, PairID: pid, Reason: fmt.Sprintf("both legs on account %q", records[d].Account)})
		}
	}

	return errs
}

func groupPairs(records []model.Record) map[string][]int {
	groups := make(map[string][]int)
	for i, r := range records {
		if r.PairID != "" {
			groups[r.PairID] = append(groups[r.PairID], i)
		}
	}
	return groups
}

// orient returns which of a and b is the debit leg and which the credit leg.
func orient(records []model.Record, a, b int) (debit, credit int, ok bool) {
	if legsMatch(records[a], records[b]) {
		return a, b, true
	}
	if legsMatch(records[b], records[a]) {
		return b, a, true
	}
	return 0, 0, false
}

func legsMatch(debit, credit model.Record) bool {
	if debit.Debit.IsZero() || credit.Credit.IsZero() {
		return false
	}
	return debit.Debit.Abs().Equal(credit.Credit.Abs())
}
