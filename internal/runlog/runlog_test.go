package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		RunID:        "0b6f9a4e-8a61-4c1e-93f5-2d7c0e4f1a90",
		Timestamp:    testTime,
		SessionID:    "5f0c7e3a-2b7d-4a51-9a43-6f1e9d1c0b2e",
		Records:      10,
		Pairs:        1,
		Incoming:     3,
		Outgoing:     4,
		Unclassified: 1,
	}
}

func logPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "logs", "run-log.csv")
}

func TestAppend_NewFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, []Entry{testEntry()}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].Records)
	assert.Nil(t, entries[0].SkippedFiles)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), Header+"\n")
}

func TestAppend_ExistingFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.SessionID = "second"
	e2.SkippedFiles = []string{"in/bad.csv", "in/missing.csv"}
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[1].SessionID)
	assert.Equal(t, []string{"in/bad.csv", "in/missing.csv"}, entries[1].SkippedFiles)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(logPath(t))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-log.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalUnmarshal(t *testing.T) {
	e := testEntry()
	row := MarshalEntry(e)
	assert.Equal(t, []string{e.RunID, "2025-09-01T10:30:00Z", e.SessionID, "10", "1", "3", "4", "1", ""}, row)

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, e.RunID, got.RunID)
	assert.Equal(t, e.SessionID, got.SessionID)
	assert.Equal(t, e.Pairs, got.Pairs)
	assert.Equal(t, e.Outgoing, got.Outgoing)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 9 fields")

	row := MarshalEntry(testEntry())
	row[colPairs] = "many"
	_, err = UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing count")

	row = MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}
