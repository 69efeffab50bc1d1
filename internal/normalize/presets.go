package normalize

import "strings"

// Preset names the statement columns a bank exports. A bank uses either
// Debit/Credit columns or one signed Amount column.
type Preset struct {
	Bank        string
	Date        string
	Description string
	Debit       string
	Credit      string
	Amount      string
	Balance     string
}

// Registry holds presets keyed by bank name, case-insensitively.
type Registry struct {
	presets map[string]Preset
}

// NewRegistry creates an empty preset registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]Preset)}
}

// Register adds a preset. Panics on duplicate bank.
func (r *Registry) Register(p Preset) {
	key := presetKey(p.Bank)
	if _, ok := r.presets[key]; ok {
		panic("duplicate bank preset: " + key)
	}
	r.presets[key] = p
}

// Get returns the preset for bank.
func (r *Registry) Get(bank string) (Preset, bool) {
	p, ok := r.presets[presetKey(bank)]
	return p, ok
}

// Banks returns the registered bank names.
func (r *Registry) Banks() []string {
	banks := make([]string, 0, len(r.presets))
	for _, p := range r.presets {
		banks = append(banks, p.Bank)
	}
	return banks
}

func presetKey(bank string) string {
	return strings.ToLower(strings.TrimSpace(bank))
}

// DefaultRegistry returns a registry with the built-in Australian bank presets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range australianPresets {
		r.Register(p)
	}
	return r
}

var australianPresets = []Preset{
	{Bank: "CBA", Date: "Date", Description: "Description", Amount: "Amount", Balance: "Balance"},
	{Bank: "ANZ", Date: "Transaction Date", Description: "Transaction Details", Amount: "Amount ($)", Balance: "Balance ($)"},
	{Bank: "Westpac", Date: "Date", Description: "Transaction Description", Debit: "Debit", Credit: "Credit", Balance: "Balance"},
	{Bank: "NAB", Date: "Date", Description: "Description", Debit: "Debit", Credit: "Credit", Balance: "Balance"},
	{Bank: "Macquarie", Date: "Date", Description: "Transaction Details", Amount: "Amount", Balance: "Balance"},
	{Bank: "HSBC", Date: "Date", Description: "Transaction Details", Debit: "Money Out", Credit: "Money In", Balance: "Balance"},
	{Bank: "BOQ", Date: "Transaction Date", Description: "Description", Amount: "Transaction Amount", Balance: "Balance"},
	{Bank: "ING", Date: "Date", Description: "Transaction Description", Amount: "Amount", Balance: "Balance"},
	{Bank: "Bendigo", Date: "Transaction Date", Description: "Particulars", Debit: "Withdrawal", Credit: "Deposit", Balance: "Balance"},
	{Bank: "Suncorp", Date: "Date", Description: "Transaction Description", Amount: "Transaction Amount", Balance: "Balance"},
	{Bank: "AMP", Date: "Date", Description: "Description", Debit: "Debit", Credit: "Credit", Balance: "Balance"},
	{Bank: "ME", Date: "Transaction Date", Description: "Description", Amount: "Amount", Balance: "Balance"},
}

// Heuristic keywords used when a bank has no preset or a preset column is missing.
var (
	dateKeywords   = []string{"date", "txn_date", "value_date"}
	descKeywords   = []string{"description", "details", "narrative", "memo"}
	debitKeywords  = []string{"debit", "withdrawal", "money out"}
	creditKeywords = []string{"credit", "deposit", "money in"}
	amountKeywords = []string{"amount", "transaction amount", "value"}
)
