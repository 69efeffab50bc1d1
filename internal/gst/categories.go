package gst

import (
	"strings"

	"github.com/cleared-dev/recon/internal/model"
)

// keywordRule maps description keywords to a category.
type keywordRule struct {
	Category model.GSTCategory
	Keywords []string // lower case
}

// keywordRules is evaluated top to bottom; the first rule with a keyword
// contained in the description wins.
var keywordRules = []keywordRule{
	{Category: model.GSTOnSale, Keywords: []string{"sale", "invoice", "product"}},
	{Category: model.GSTFreeSale, Keywords: []string{"gst free", "exempt"}},
	{Category: model.GSTOnPurchase, Keywords: []string{"purchase", "supplier"}},
	{Category: model.InputTaxedSales, Keywords: []string{"input taxed"}},
	{Category: model.BASExcluded, Keywords: []string{"bas excluded"}},
	{Category: model.InterestIncome, Keywords: []string{"interest", "bank interest"}},
	{Category: model.OtherExemptIncome, Keywords: []string{"grant", "donation", "compensation"}},
}

// DetermineCategory picks the tax category for a free-text description.
// An empty description, or one with no keyword match, is Unknown.
func DetermineCategory(description string) model.GSTCategory {
	desc := strings.ToLower(description)
	if desc == "" {
		return model.Unknown
	}
	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return model.Unknown
}

// Keywords returns the keywords that select category, or nil for Unknown.
func Keywords(category model.GSTCategory) []string {
	for _, rule := range keywordRules {
		if rule.Category == category {
			out := make([]string, len(rule.Keywords))
			copy(out, rule.Keywords)
			return out
		}
	}
	return nil
}
