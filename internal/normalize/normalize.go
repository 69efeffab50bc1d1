package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// ErrInvalidHeader is returned for statements without a date column and an amount column.
var ErrInvalidHeader = errors.New("statement needs a date column and an amount column")

// Source identifies whose statement is being normalized.
type Source struct {
	Bank    string
	Account string
	Preset  string // defaults to Bank
}

// Normalizer converts bank statement CSVs into canonical records.
type Normalizer struct {
	registry *Registry
	log      zerolog.Logger
}

// New creates a Normalizer. A nil registry means DefaultRegistry.
func New(registry *Registry, log zerolog.Logger) *Normalizer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Normalizer{registry: registry, log: log.With().Str("component", "normalize").Logger()}
}

// Normalize reads one statement. Unparseable amounts become zero and
// unparseable dates become empty; neither is an error.
func (n *Normalizer) Normalize(r io.Reader, src Source) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	if !ValidateHeader(header) {
		return nil, fmt.Errorf("%s %s: %w", src.Bank, src.Account, ErrInvalidHeader)
	}

	presetName := src.Preset
	if presetName == "" {
		presetName = src.Bank
	}
	preset, ok := n.registry.Get(presetName)
	if !ok {
		n.log.Info().Str("bank", src.Bank).Msg("no preset, using heuristic column mapping")
	}
	cols := resolveColumns(header, preset, ok)
	splitLegs := cols.debit >= 0 && cols.credit >= 0

	var records []model.Record
	malformed := 0
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := model.Record{
			Date:          parseDate(cell(row, cols.date)),
			Bank:          src.Bank,
			Account:       src.Account,
			TransactionID: strconv.Itoa(i),
			Description:   strings.TrimSpace(cell(row, cols.desc)),
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}

		switch {
		case splitLegs:
			d, okD := parseAmount(cell(row, cols.debit))
			c, okC := parseAmount(cell(row, cols.credit))
			if !okD || !okC {
				malformed++
			}
			rec.Debit, rec.Credit = d.Abs(), c.Abs()
		case cols.amount >= 0:
			a, okA := parseAmount(cell(row, cols.amount))
			if !okA {
				malformed++
			}
			if a.IsNegative() {
				rec.Debit = a.Abs()
			} else {
				rec.Credit = a
			}
		}
		records = append(records, rec)
	}

	if malformed > 0 {
		n.log.Debug().Str("bank", src.Bank).Str("account", src.Account).
			Int("rows", malformed).Msg("non-numeric amounts coerced to zero")
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseAmount reads a money cell. Blank cells are zero; cells that still
// fail after dropping currency symbols and thousands separators are zero
// and reported as malformed.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// dateLayouts are tried in order. Australian statements are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2/1/06",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 Jan 06",
	"2 Jan 06",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// parseDate returns the calendar date in s, or the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}
