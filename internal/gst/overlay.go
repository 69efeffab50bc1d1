package gst

import (
	"errors"
	"sort"

	"github.com/cleared-dev/recon/internal/model"
)

// Overlay holds pending category edits keyed by record index, kept apart
// from the computed batch until they are applied. Setting an index twice
// keeps the last value.
type Overlay struct {
	changes map[int]model.GSTCategory
}

// NewOverlay returns an empty Overlay.
func NewOverlay() *Overlay {
	return &Overlay{changes: make(map[int]model.GSTCategory)}
}

// Set records a pending category for index.
func (o *Overlay) Set(index int, category model.GSTCategory) {
	o.changes[index] = category
}

// Get returns the pending category for index.
func (o *Overlay) Get(index int) (model.GSTCategory, bool) {
	c, ok := o.changes[index]
	return c, ok
}

// Delete drops any pending change for index.
func (o *Overlay) Delete(index int) {
	delete(o.changes, index)
}

// Len returns the number of pending changes.
func (o *Overlay) Len() int {
	return len(o.changes)
}

// Indexes returns the pending indexes in ascending order.
func (o *Overlay) Indexes() []int {
	idx := make([]int, 0, len(o.changes))
	for i := range o.changes {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// ApplyResult is the outcome of merging an Overlay into a batch.
type ApplyResult struct {
	Records  []model.Record
	Applied  []int
	Rejected []ValidationError
}

// Apply merges the overlay into a copy of records and recomputes GST for
// every touched row. Rejected rows keep their prior category and value.
// Neither records nor the overlay are modified.
func (o *Overlay) Apply(c *Calculator, records []model.Record) ApplyResult {
	out := make([]model.Record, len(records))
	copy(out, records)

	res := ApplyResult{Records: out}
	for _, idx := range o.Indexes() {
		category := o.changes[idx]
		if idx < 0 || idx >= len(out) {
			res.Rejected = append(res.Rejected, ValidationError{Index: idx, Category: category, Reason: "refers to no row"})
			continue
		}
		updated, err := c.Override(out[idx], category)
		if err != nil {
			var verr ValidationError
			if !errors.As(err, &verr) {
				verr = ValidationError{Category: category, Reason: err.Error()}
			}
			verr.Index = idx
			res.Rejected = append(res.Rejected, verr)
			continue
		}
		out[idx] = updated
		res.Applied = append(res.Applied, idx)
	}
	return res
}
