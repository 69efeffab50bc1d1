package gst

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// DefaultRate is the statutory GST rate.
var DefaultRate = decimal.New(1, -1)

// ErrUnknownCategory is returned for a category name outside model.GSTCategories.
var ErrUnknownCategory = errors.New("unknown GST category")

// ValidationError reports a category override that was refused.
type ValidationError struct {
	Index    int
	Category model.GSTCategory
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Index, e.Category, e.Reason)
}

// Calculator derives GST from GST-inclusive amounts at a fixed rate.
type Calculator struct {
	rate    decimal.Decimal
	divisor decimal.Decimal // 1 + rate
}

// NewCalculator returns a Calculator for rate. Non-positive rates fall back to DefaultRate.
func NewCalculator(rate decimal.Decimal) *Calculator {
	if !rate.IsPositive() {
		rate = DefaultRate
	}
	return &Calculator{rate: rate, divisor: decimal.NewFromInt(1).Add(rate)}
}

// Rate returns the calculator's GST rate.
func (c *Calculator) Rate() decimal.Decimal {
	return c.rate
}

// Value returns the GST contained in the relevant leg for category,
// rounded to cents. Exempt categories always yield zero.
func (c *Calculator) Value(debit, credit decimal.Decimal, category model.GSTCategory) decimal.Decimal {
	switch category {
	case model.GSTOnSale:
		if credit.IsPositive() {
			return c.extract(credit)
		}
	case model.GSTOnPurchase:
		if debit.IsPositive() {
			return c.extract(debit)
		}
	case model.Unknown:
		if debit.IsPositive() {
			return c.extract(debit)
		}
		if credit.IsPositive() {
			return c.extract(credit)
		}
	}
	return decimal.Zero
}

// extract returns the tax embedded in a GST-inclusive amount.
func (c *Calculator) extract(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.rate).Div(c.divisor).Round(2)
}

// Categorize returns a copy of records with GSTCategory and GST filled from
// each description.
func (c *Calculator) Categorize(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		r.GSTCategory = DetermineCategory(r.Description)
		r.GST = c.Value(r.Debit, r.Credit, r.GSTCategory)
		out[i] = r
	}
	return out
}

// Override moves rec to category and recomputes its GST from the record's
// current amounts. A category that needs a leg the record lacks is refused
// and rec is returned unchanged.
func (c *Calculator) Override(rec model.Record, category model.GSTCategory) (model.Record, error) {
	parsed, ok := model.ParseGSTCategory(string(category))
	if !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	category = parsed
	switch {
	case category == model.GSTOnSale && !rec.Credit.IsPositive():
		return rec, ValidationError{Index: rec.Index, Category: category, Reason: "requires a non-zero credit"}
	case category == model.GSTOnPurchase && !rec.Debit.IsPositive():
		return rec, ValidationError{Index: rec.Index, Category: category, Reason: "requires a non-zero debit"}
	}
	rec.GSTCategory = category
	rec.GST = c.Value(rec.Debit, rec.Credit, category)
	return rec, nil
}

var defaultCalculator = NewCalculator(DefaultRate)

// Value computes GST at DefaultRate.
func Value(debit, credit decimal.Decimal, category model.GSTCategory) decimal.Decimal {
	return defaultCalculator.Value(debit, credit, category)
}

// Categorize categorizes records at DefaultRate.
func Categorize(records []model.Record) []model.Record {
	return defaultCalculator.Categorize(records)
}

// Override applies a category override at DefaultRate.
func Override(rec model.Record, category model.GSTCategory) (model.Record, error) {
	return defaultCalculator.Override(rec, category)
}
