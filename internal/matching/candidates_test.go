package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func TestCandidates(t *testing.T) {
	records := []model.Record{
		debit("X", "10"),
		credit("Y", "20"),
		{Account: "Z", Debit: dec("5"), Credit: dec("6")},
		{Account: "W"},
	}

	debits := DebitCandidates(records, AllowAmbiguous)
	require.Len(t, debits, 2)
	assert.Equal(t, 0, debits[0].Index)
	assert.Equal(t, 2, debits[1].Index)
	assert.True(t, debits[1].Amount.Equal(dec("5")))

	credits := CreditCandidates(records, AllowAmbiguous)
	require.Len(t, credits, 2)
	assert.Equal(t, 1, credits[0].Index)
	assert.Equal(t, 2, credits[1].Index)
	assert.Equal(t, "Y", credits[0].Account)

	assert.Len(t, DebitCandidates(records, ExcludeAmbiguous), 1)
	assert.Len(t, CreditCandidates(records, ExcludeAmbiguous), 1)
}

func TestJoin_FullOuter(t *testing.T) {
	debits := []Candidate{
		{Index: 0, Amount: dec("10")},
		{Index: 1, Amount: dec("30")},
		{Index: 2, Amount: dec("10")},
	}
	credits := []Candidate{
		{Index: 3, Amount: dec("10.00")},
		{Index: 4, Amount: dec("20")},
		{Index: 5, Amount: dec("10")},
	}

	rows := Join(debits, credits)

	type pair struct{ d, c int }
	var got []pair
	for _, r := range rows {
		p := pair{-1, -1}
		if r.Debit != nil {
			p.d = r.Debit.Index
		}
		if r.Credit != nil {
			p.c = r.Credit.Index
		}
		got = append(got, p)
	}

	assert.Equal(t, []pair{
		{0, 3}, {0, 5},
		{1, -1},
		{2, 3}, {2, 5},
		{-1, 4},
	}, got)
}

func TestJoin_Empty(t *testing.T) {
	assert.Empty(t, Join(nil, nil))

	rows := Join(nil, []Candidate{{Index: 0, Amount: dec("1")}})
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Complete())
	assert.Nil(t, rows[0].Debit)
}
