package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValue(t *testing.T) {
	tests := []struct {
		debit, credit string
		category      model.GSTCategory
		want          string
	}{
		{"0", "110.00", model.GSTOnSale, "10.00"},
		{"0", "50", model.GSTOnPurchase, "0.00"},
		{"110", "0", model.GSTOnPurchase, "10.00"},
		{"110", "0", model.GSTOnSale, "0.00"},
		{"0", "220", model.Unknown, "20.00"},
		{"55", "0", model.Unknown, "5.00"},
		{"55", "220", model.Unknown, "5.00"},
		{"0", "0", model.Unknown, "0.00"},
		{"0", "100", model.GSTOnSale, "9.09"},
		{"33.33", "0", model.GSTOnPurchase, "3.03"},
		{"0", "1100", model.GSTFreeSale, "0.00"},
		{"0", "1100", model.InputTaxedSales, "0.00"},
		{"1100", "0", model.BASExcluded, "0.00"},
		{"0", "1100", model.InterestIncome, "0.00"},
		{"0", "1100", model.OtherExemptIncome, "0.00"},
		{"0", "1100", model.GSTCategory("Bogus"), "0.00"},
	}
	for _, tt := range tests {
		got := Value(dec(tt.debit), dec(tt.credit), tt.category)
		assert.Equal(t, tt.want, got.StringFixed(2), "debit=%s credit=%s %s", tt.debit, tt.credit, tt.category)
		assert.False(t, got.IsNegative())
	}
}

func TestValue_InclusiveExtraction(t *testing.T) {
	// 1/11th of the inclusive amount, never 10% of it.
	got := Value(decimal.Zero, dec("1000"), model.GSTOnSale)
	assert.Equal(t, "90.91", got.StringFixed(2))
	assert.NotEqual(t, "100.00", got.StringFixed(2))
}

func TestValue_Pure(t *testing.T) {
	a := Value(decimal.Zero, dec("220"), model.GSTOnSale)
	b := Value(decimal.Zero, dec("220"), model.GSTOnSale)
	assert.True(t, a.Equal(b))
}

func TestCalculator_CustomRate(t *testing.T) {
	c := NewCalculator(dec("0.15"))
	assert.Equal(t, "15.00", c.Value(dec("115"), decimal.Zero, model.GSTOnPurchase).StringFixed(2))
	assert.True(t, c.Rate().Equal(dec("0.15")))

	fallback := NewCalculator(decimal.Zero)
	assert.True(t, fallback.Rate().Equal(DefaultRate))
}

func TestCategorize(t *testing.T) {
	in := []model.Record{
		{Description: "Invoice 77", Credit: dec("110")},
		{Description: "Supplier ACME", Debit: dec("220")},
		{Description: "Bank interest", Credit: dec("12.34")},
		{Description: "", Debit: dec("11")},
		{Description: "Coffee", Credit: dec("5.50")},
	}
	got := Categorize(in)

	require.Len(t, got, 5)
	assert.Equal(t, model.GSTOnSale, got[0].GSTCategory)
	assert.Equal(t, "10.00", got[0].GST.StringFixed(2))
	assert.Equal(t, model.GSTOnPurchase, got[1].GSTCategory)
	assert.Equal(t, "20.00", got[1].GST.StringFixed(2))
	assert.Equal(t, model.InterestIncome, got[2].GSTCategory)
	assert.True(t, got[2].GST.IsZero())
	assert.Equal(t, model.Unknown, got[3].GSTCategory)
	assert.Equal(t, "1.00", got[3].GST.StringFixed(2))
	assert.Equal(t, model.Unknown, got[4].GSTCategory)
	assert.Equal(t, "0.50", got[4].GST.StringFixed(2))

	// Input untouched.
	assert.Empty(t, in[0].GSTCategory)
}

func TestOverride_Sale(t *testing.T) {
	rec := model.Record{Index: 3, Credit: dec("220"), GSTCategory: model.Unknown, GST: dec("20.00")}

	got, err := Override(rec, model.GSTOnSale)
	require.NoError(t, err)
	assert.Equal(t, model.GSTOnSale, got.GSTCategory)
	assert.Equal(t, "20.00", got.GST.StringFixed(2))

	// Purchase needs a debit: refused, state unchanged.
	again, err := Override(got, model.GSTOnPurchase)
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Index)
	assert.Equal(t, model.GSTOnPurchase, verr.Category)
	assert.Contains(t, err.Error(), "non-zero debit")
	assert.Equal(t, model.GSTOnSale, again.GSTCategory)
	assert.Equal(t, "20.00", again.GST.StringFixed(2))
}

func TestOverride_SaleNeedsCredit(t *testing.T) {
	rec := model.Record{Debit: dec("50"), GSTCategory: model.Unknown, GST: dec("4.55")}
	got, err := Override(rec, model.GSTOnSale)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-zero credit")
	assert.Equal(t, rec, got)
}

func TestOverride_Idempotent(t *testing.T) {
	rec := model.Record{Debit: dec("330"), GSTCategory: model.Unknown}
	first, err := Override(rec, model.GSTOnPurchase)
	require.NoError(t, err)
	second, err := Override(first, model.GSTOnPurchase)
	require.NoError(t, err)
	assert.Equal(t, first.GSTCategory, second.GSTCategory)
	assert.True(t, first.GST.Equal(second.GST))
	assert.Equal(t, "30.00", second.GST.StringFixed(2))
}

func TestOverride_RecomputesFromAmounts(t *testing.T) {
	// A stale GST value is ignored.
	rec := model.Record{Debit: dec("110"), GSTCategory: model.GSTOnPurchase, GST: dec("999")}
	got, err := Override(rec, model.BASExcluded)
	require.NoError(t, err)
	assert.True(t, got.GST.IsZero())

	got, err = Override(got, model.Unknown)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.GST.StringFixed(2))
}

func TestOverride_CaseInsensitive(t *testing.T) {
	rec := model.Record{Credit: dec("110")}
	got, err := Override(rec, model.GSTCategory("gst on sale"))
	require.NoError(t, err)
	assert.Equal(t, model.GSTOnSale, got.GSTCategory)
}

func TestOverride_UnknownCategory(t *testing.T) {
	rec := model.Record{Credit: dec("110"), GSTCategory: model.Unknown}
	got, err := Override(rec, model.GSTCategory("GST on Lunch"))
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, model.Unknown, got.GSTCategory)
}
