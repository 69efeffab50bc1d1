package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/id"
	"github.com/cleared-dev/recon/internal/model"
)

// Header is the CSV header for a results file.
const Header = "index,date,bank,account,transaction_id,description,debit,credit,classification,pair_id,gst_category,gst,month,year"

const (
	numFields   = 14
	dateFormat  = "2006-01-02"
	colIndex    = 0
	colDate     = 1
	colBank     = 2
	colAccount  = 3
	colTxnID    = 4
	colDesc     = 5
	colDebit    = 6
	colCredit   = 7
	colClass    = 8
	colPairID   = 9
	colCategory = 10
	colGST      = 11
	colMonth    = 12
	colYear     = 13
)

// ReadRecords reads a decorated batch from a results CSV reader.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading results CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var records []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes a decorated batch to w, header first.
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, creating parent directories.
func WriteFile(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := WriteRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a results file.
func ReadFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}

// MarshalRecord converts a Record to a CSV row. Statement amounts are
// written exactly; gst is rounded to cents. Month and year are empty for
// undated records.
func MarshalRecord(rec model.Record) []string {
	row := make([]string, numFields)
	row[colIndex] = strconv.Itoa(rec.Index)
	if rec.HasDate() {
		row[colDate] = rec.Date.Format(dateFormat)
		row[colMonth] = strconv.Itoa(rec.Month())
		row[colYear] = strconv.Itoa(rec.Year())
	}
	row[colBank] = rec.Bank
	row[colAccount] = rec.Account
	row[colTxnID] = rec.TransactionID
	row[colDesc] = rec.Description
	row[colDebit] = rec.Debit.String()
	row[colCredit] = rec.Credit.String()
	row[colClass] = string(rec.Classification)
	row[colPairID] = rec.PairID
	row[colCategory] = string(rec.GSTCategory)
	row[colGST] = rec.GST.StringFixed(2)
	return row
}

// UnmarshalRecord converts a CSV row to a Record. Month and year are
// derived from the date and not read back.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	index, err := strconv.Atoi(row[colIndex])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing index %q: %w", row[colIndex], err)
	}

	var date time.Time
	if row[colDate] != "" {
		date, err = time.Parse(dateFormat, row[colDate])
		if err != nil {
			return model.Record{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
		}
	}

	debit, err := parseMoney("debit", row[colDebit])
	if err != nil {
		return model.Record{}, err
	}
	credit, err := parseMoney("credit", row[colCredit])
	if err != nil {
		return model.Record{}, err
	}
	gst, err := parseMoney("gst", row[colGST])
	if err != nil {
		return model.Record{}, err
	}

	class := model.Classification(row[colClass])
	if class != "" && !class.Valid() {
		return model.Record{}, fmt.Errorf("unknown classification %q", row[colClass])
	}

	if row[colPairID] != "" {
		if _, err := id.ParsePairID(row[colPairID]); err != nil {
			return model.Record{}, err
		}
	}

	var category model.GSTCategory
	if row[colCategory] != "" {
		c, ok := model.ParseGSTCategory(row[colCategory])
		if !ok {
			return model.Record{}, fmt.Errorf("unknown gst category %q", row[colCategory])
		}
		category = c
	}

	return model.Record{
		Index:          index,
		Date:           date,
		Bank:           row[colBank],
		Account:        row[colAccount],
		TransactionID:  row[colTxnID],
		Description:    row[colDesc],
		Debit:          debit,
		Credit:         credit,
		Classification: class,
		PairID:         row[colPairID],
		GSTCategory:    category,
		GST:            gst,
	}, nil
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
