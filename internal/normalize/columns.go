package normalize

import "strings"

// columnMap is the resolved position of each canonical field; -1 = absent.
type columnMap struct {
	date, desc, debit, credit, amount int
}

// resolveColumns maps header cells to canonical fields using the preset
// first and keyword heuristics for anything it does not cover.
func resolveColumns(header []string, preset Preset, hasPreset bool) columnMap {
	cols := columnMap{date: -1, desc: -1, debit: -1, credit: -1, amount: -1}
	if hasPreset {
		cols.date = exactColumn(header, preset.Date)
		cols.desc = exactColumn(header, preset.Description)
		cols.debit = exactColumn(header, preset.Debit)
		cols.credit = exactColumn(header, preset.Credit)
		cols.amount = exactColumn(header, preset.Amount)
	}
	if cols.date < 0 {
		cols.date = findColumn(header, dateKeywords)
	}
	if cols.desc < 0 {
		cols.desc = findColumn(header, descKeywords, cols.date)
	}
	if cols.debit < 0 {
		cols.debit = findColumn(header, debitKeywords, cols.date, cols.desc)
	}
	if cols.credit < 0 {
		cols.credit = findColumn(header, creditKeywords, cols.date, cols.desc, cols.debit)
	}
	if cols.amount < 0 {
		cols.amount = findColumn(header, amountKeywords, cols.date, cols.desc, cols.debit, cols.credit)
	}
	return cols
}

func cleanHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// exactColumn finds name in header ignoring case and surrounding spaces.
func exactColumn(header []string, name string) int {
	if name == "" {
		return -1
	}
	want := cleanHeader(name)
	for i, h := range header {
		if cleanHeader(h) == want {
			return i
		}
	}
	return -1
}

// findColumn returns the first header equal to, then containing, a keyword.
// Keywords are tried in order; columns already taken are skipped.
func findColumn(header []string, keywords []string, taken ...int) int {
	free := func(i int) bool {
		for _, t := range taken {
			if t == i {
				return false
			}
		}
		return true
	}
	for _, kw := range keywords {
		for i, h := range header {
			if free(i) && cleanHeader(h) == kw {
				return i
			}
		}
		for i, h := range header {
			if free(i) && strings.Contains(cleanHeader(h), kw) {
				return i
			}
		}
	}
	return -1
}

var headerAmountKeywords = []string{"amount", "credit", "debit", "withdrawal", "deposit", "money"}

// ValidateHeader reports whether a statement header has a date-like column
// and an amount-like column.
func ValidateHeader(header []string) bool {
	hasDate, hasAmount := false, false
	for _, h := range header {
		c := cleanHeader(h)
		if strings.Contains(c, "date") {
			hasDate = true
		}
		for _, kw := range headerAmountKeywords {
			if strings.Contains(c, kw) {
				hasAmount = true
			}
		}
	}
	return hasDate && hasAmount
}
