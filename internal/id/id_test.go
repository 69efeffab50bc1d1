package id

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPairID(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{1, "PAIR00001"},
		{42, "PAIR00042"},
		{99999, "PAIR99999"},
		{123456, "PAIR123456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPairID(tt.seq))
	}
}

func TestParsePairID(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"PAIR00001", 1},
		{"PAIR00042", 42},
		{"PAIR123456", 123456},
	}
	for _, tt := range tests {
		got, err := ParsePairID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParsePairID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"PAIR",
		"pair00001",
		"PAIRxyz",
		"PAIR00000",
		"2025-01-001",
	}
	for _, input := range badInputs {
		_, err := ParsePairID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, 0, seq.Issued())
	assert.Equal(t, "PAIR00001", seq.Next())
	assert.Equal(t, "PAIR00002", seq.Next())
	assert.Equal(t, "PAIR00003", seq.Next())
	assert.Equal(t, 3, seq.Issued())
}

func TestSequence_Independent(t *testing.T) {
	// Concurrent runs each start from PAIR00001.
	var wg sync.WaitGroup
	firsts := make([]string, 8)
	for i := range firsts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seq := NewSequence()
			firsts[i] = seq.Next()
			seq.Next()
		}(i)
	}
	wg.Wait()
	for _, f := range firsts {
		assert.Equal(t, "PAIR00001", f)
	}
}
