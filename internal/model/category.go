package model

import "strings"

// GSTCategory is an official tax category for a transaction.
type GSTCategory string

const (
	GSTOnSale         GSTCategory = "GST on Sale"
	GSTFreeSale       GSTCategory = "GST Free Sale"
	GSTOnPurchase     GSTCategory = "GST on Purchase"
	InputTaxedSales   GSTCategory = "Input Taxed Sales"
	BASExcluded       GSTCategory = "BAS Excluded"
	InterestIncome    GSTCategory = "Interest Income"
	OtherExemptIncome GSTCategory = "Other Exempt Income"
	Unknown           GSTCategory = "Unknown"
)

// GSTCategories lists every category in display order.
func GSTCategories() []GSTCategory {
	return []GSTCategory{
		GSTOnSale,
		GSTFreeSale,
		GSTOnPurchase,
		InputTaxedSales,
		BASExcluded,
		InterestIncome,
		OtherExemptIncome,
		Unknown,
	}
}

// ParseGSTCategory matches s against the known categories, ignoring case
// and surrounding whitespace.
func ParseGSTCategory(s string) (GSTCategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range GSTCategories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}
