package id

import (
	"fmt"
	"strconv"
	"strings"
)

// pairPrefix leads every pair ID.
const pairPrefix = "PAIR"

// FormatPairID returns a pair ID like "PAIR00001".
func FormatPairID(seq int) string {
	return fmt.Sprintf("%s%05d", pairPrefix, seq)
}

// ParsePairID parses "PAIR00001" into its sequence number.
func ParsePairID(pairID string) (int, error) {
	digits, ok := strings.CutPrefix(pairID, pairPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid pair ID format: %q", pairID)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in pair ID %q: %w", pairID, err)
	}
	if seq < 1 {
		return 0, fmt.Errorf("invalid sequence in pair ID %q: must be positive", pairID)
	}
	return seq, nil
}

// Sequence hands out monotonically increasing pair IDs. Each classification
// run owns its own Sequence; it is not safe for concurrent use.
type Sequence struct {
	last int
}

// NewSequence returns a Sequence whose first ID is PAIR00001.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next pair ID.
func (s *Sequence) Next() string {
	s.last++
	return FormatPairID(s.last)
}

// Issued returns how many IDs the sequence has handed out.
func (s *Sequence) Issued() int {
	return s.last
}
