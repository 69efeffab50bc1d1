package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one reconciliation run.
type Entry struct {
	RunID        string
	Timestamp    time.Time
	SessionID    string
	Records      int
	Pairs        int
	Incoming     int
	Outgoing     int
	Unclassified int
	SkippedFiles []string
}

// Header is the CSV header for the run log.
const Header = "run_id,timestamp,session_id,records,pairs,incoming,outgoing,unclassified,skipped_files"

const (
	numFields       = 9
	colRunID        = 0
	colTimestamp    = 1
	colSessionID    = 2
	colRecords      = 3
	colPairs        = 4
	colIncoming     = 5
	colOutgoing     = 6
	colUnclassified = 7
	colSkipped      = 8
)

// MarshalEntry converts an Entry to a CSV row. Skipped files are joined with ';'.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSessionID] = e.SessionID
	row[colRecords] = strconv.Itoa(e.Records)
	row[colPairs] = strconv.Itoa(e.Pairs)
	row[colIncoming] = strconv.Itoa(e.Incoming)
	row[colOutgoing] = strconv.Itoa(e.Outgoing)
	row[colUnclassified] = strconv.Itoa(e.Unclassified)
	row[colSkipped] = strings.Join(e.SkippedFiles, ";")
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 5)
	for _, col := range []int{colRecords, colPairs, colIncoming, colOutgoing, colUnclassified} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	var skipped []string
	if record[colSkipped] != "" {
		skipped = strings.Split(record[colSkipped], ";")
	}

	return Entry{
		RunID:        record[colRunID],
		Timestamp:    ts,
		SessionID:    record[colSessionID],
		Records:      counts[0],
		Pairs:        counts[1],
		Incoming:     counts[2],
		Outgoing:     counts[3],
		Unclassified: counts[4],
		SkippedFiles: skipped,
	}, nil
}

// Append writes entries to the log at path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
