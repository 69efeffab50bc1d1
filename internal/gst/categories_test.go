package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/recon/internal/model"
)

func TestDetermineCategory(t *testing.T) {
	tests := []struct {
		desc string
		want model.GSTCategory
	}{
		{"INVOICE 1042 ACME", model.GSTOnSale},
		{"Product return", model.GSTOnSale},
		{"Garage SALE proceeds", model.GSTOnSale},
		{"GST Free medical", model.GSTFreeSale},
		{"exempt supply", model.GSTFreeSale},
		{"Purchase of stock", model.GSTOnPurchase},
		{"Supplier payment", model.GSTOnPurchase},
		{"input taxed rent", model.InputTaxedSales},
		{"BAS EXCLUDED wages", model.BASExcluded},
		{"Bank interest", model.InterestIncome},
		{"Government grant", model.OtherExemptIncome},
		{"Compensation payout", model.OtherExemptIncome},
		{"Coffee", model.Unknown},
		{"", model.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetermineCategory(tt.desc), "description %q", tt.desc)
	}
}

func TestDetermineCategory_Priority(t *testing.T) {
	// Sale outranks every later rule.
	assert.Equal(t, model.GSTOnSale, DetermineCategory("supplier invoice"))
	assert.Equal(t, model.GSTOnSale, DetermineCategory("sale of exempt goods"))
	// GST Free outranks purchase.
	assert.Equal(t, model.GSTFreeSale, DetermineCategory("exempt purchase"))
	// Purchase outranks interest.
	assert.Equal(t, model.GSTOnPurchase, DetermineCategory("interest on purchase"))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"sale", "invoice", "product"}, Keywords(model.GSTOnSale))
	assert.Nil(t, Keywords(model.Unknown))

	kw := Keywords(model.BASExcluded)
	kw[0] = "mutated"
	assert.Equal(t, []string{"bas excluded"}, Keywords(model.BASExcluded))
}

func TestEveryCategoryButUnknownHasKeywords(t *testing.T) {
	for _, c := range model.GSTCategories() {
		if c == model.Unknown {
			continue
		}
		assert.NotEmpty(t, Keywords(c), "%s", c)
	}
}
