package matching

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func debit(account, amount string) model.Record {
	return model.Record{Bank: "CBA", Account: account, Debit: dec(amount)}
}

func credit(account, amount string) model.Record {
	return model.Record{Bank: "CBA", Account: account, Credit: dec(amount)}
}

func TestClassify_TransferBetweenAccounts(t *testing.T) {
	got := Classify([]model.Record{
		debit("X", "100"),
		credit("Y", "100"),
	})

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, model.Internal, r.Classification)
		assert.Equal(t, "PAIR00001", r.PairID)
	}
	assert.Empty(t, Validate(got))
}

func TestClassify_SameAccountIsExternal(t *testing.T) {
	got := Classify([]model.Record{
		debit("X", "100"),
		credit("X", "100"),
	})

	assert.Equal(t, model.Outgoing, got[0].Classification)
	assert.Equal(t, model.Incoming, got[1].Classification)
	assert.Empty(t, got[0].PairID)
	assert.Empty(t, got[1].PairID)
}

func TestClassify_CreditsWithoutDebits(t *testing.T) {
	got := Classify([]model.Record{
		credit("X", "50"),
		credit("Y", "50"),
		credit("Z", "50"),
	})

	for i, r := range got {
		assert.Equal(t, model.Incoming, r.Classification, "record %d", i)
		assert.Empty(t, r.PairID, "record %d", i)
	}
}

func TestClassify_DegenerateRow(t *testing.T) {
	got := Classify([]model.Record{
		{Account: "X"},
		{Account: "X", Debit: dec("0.00"), Credit: dec("0")},
	})

	assert.Equal(t, model.Unclassified, got[0].Classification)
	assert.Equal(t, model.Unclassified, got[1].Classification)
}

func TestClassify_EmptyBatch(t *testing.T) {
	got := Classify(nil)
	assert.Empty(t, got)
	assert.Empty(t, Validate(got))
}

func TestClassify_EqualAmountsAcrossScales(t *testing.T) {
	got := Classify([]model.Record{
		debit("X", "100.00"),
		credit("Y", "100"),
	})
	assert.Equal(t, "PAIR00001", got[0].PairID)
	assert.Equal(t, "PAIR00001", got[1].PairID)
}

func TestClassify_JoinOrderDecidesTies(t *testing.T) {
	got := Classify([]model.Record{
		debit("A", "50"),
		debit("B", "50"),
		credit("C", "50"),
		credit("D", "50"),
	})

	assert.Equal(t, "PAIR00001", got[0].PairID)
	assert.Equal(t, "PAIR00001", got[2].PairID)
	assert.Equal(t, "PAIR00002", got[1].PairID)
	assert.Equal(t, "PAIR00002", got[3].PairID)
}

func TestClassify_SkipsSameAccountThenPairsNext(t *testing.T) {
	got := Classify([]model.Record{
		debit("X", "100"),
		credit("X", "100"),
		credit("Y", "100"),
	})

	assert.Equal(t, model.Internal, got[0].Classification)
	assert.Equal(t, model.Incoming, got[1].Classification)
	assert.Equal(t, model.Internal, got[2].Classification)
	assert.Equal(t, got[0].PairID, got[2].PairID)
}

func TestClassify_NoDoubleCounting(t *testing.T) {
	// One debit, two eligible credits: only the first credit pairs.
	got := Classify([]model.Record{
		debit("X", "75"),
		credit("Y", "75"),
		credit("Z", "75"),
	})

	assert.Equal(t, "PAIR00001", got[1].PairID)
	assert.Equal(t, model.Incoming, got[2].Classification)
	assert.Len(t, Pairs(got), 1)
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	in := []model.Record{
		debit("X", "100"),
		credit("Y", "100"),
	}
	_ = Classify(in)

	for _, r := range in {
		assert.Empty(t, r.Classification)
		assert.Empty(t, r.PairID)
	}
}

func TestClassify_ReclassifyClearsStaleDecorations(t *testing.T) {
	in := []model.Record{
		{Account: "X", Credit: dec("10"), Classification: model.Internal, PairID: "PAIR00009"},
	}
	got := Classify(in)
	assert.Equal(t, model.Incoming, got[0].Classification)
	assert.Empty(t, got[0].PairID)
}

func TestClassify_SetsIndex(t *testing.T) {
	got := Classify([]model.Record{debit("X", "1"), credit("Y", "2"), debit("Z", "3")})
	for i, r := range got {
		assert.Equal(t, i, r.Index)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	batch := randomBatch(rand.New(rand.NewSource(7)), 200)
	first := Classify(batch)
	second := Classify(batch)
	assert.Equal(t, first, second)

	again := Classify(first)
	assert.Equal(t, first, again)
}

func TestClassify_RandomBatchesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 25; run++ {
		batch := randomBatch(rng, 1+rng.Intn(120))
		got := Classify(batch)
		require.Len(t, got, len(batch))
		assert.Empty(t, Validate(got), "run %d", run)

		internal := 0
		for _, r := range got {
			if r.Classification == model.Internal {
				internal++
			}
		}
		assert.Equal(t, internal, 2*len(Pairs(got)), "run %d", run)
	}
}

func TestClassify_AmbiguousAllowed(t *testing.T) {
	in := []model.Record{
		{Account: "X", Debit: dec("100"), Credit: dec("40")},
		credit("Y", "100"),
		debit("Z", "40"),
	}
	got := NewEngine(Options{AmbiguousRows: AllowAmbiguous}).Classify(in)

	assert.Equal(t, model.Internal, got[0].Classification)
	assert.Equal(t, got[0].PairID, got[1].PairID)
	// The ambiguous row already joined a pair, so the 40 debit stays external.
	assert.Equal(t, model.Outgoing, got[2].Classification)
	assert.Empty(t, Validate(got))
}

func TestClassify_AmbiguousExcluded(t *testing.T) {
	in := []model.Record{
		{Account: "X", Debit: dec("100"), Credit: dec("40")},
		credit("Y", "100"),
		debit("Z", "40"),
	}
	got := NewEngine(Options{AmbiguousRows: ExcludeAmbiguous}).Classify(in)

	assert.Equal(t, model.Outgoing, got[0].Classification)
	assert.Equal(t, model.Incoming, got[1].Classification)
	assert.Equal(t, model.Outgoing, got[2].Classification)
}

func TestClassify_AmbiguousSelfMatchIgnored(t *testing.T) {
	got := Classify([]model.Record{
		{Account: "X", Debit: dec("10"), Credit: dec("10")},
	})
	assert.Equal(t, model.Outgoing, got[0].Classification)
	assert.Empty(t, got[0].PairID)
}

func TestClassify_DateWindow(t *testing.T) {
	in := []model.Record{
		{Account: "X", Debit: dec("100"), Date: date(2025, 1, 1)},
		{Account: "Y", Credit: dec("100"), Date: date(2025, 1, 5)},
		{Account: "Z", Credit: dec("100"), Date: date(2025, 1, 3)},
	}

	got := NewEngine(Options{DateWindow: 2}).Classify(in)
	assert.Equal(t, model.Internal, got[0].Classification)
	assert.Equal(t, model.Incoming, got[1].Classification)
	assert.Equal(t, got[0].PairID, got[2].PairID)

	// Without a window the first credit in join order wins.
	got = NewEngine(Options{}).Classify(in)
	assert.Equal(t, got[0].PairID, got[1].PairID)
	assert.Equal(t, model.Incoming, got[2].Classification)
}

func TestClassify_DateWindowNeedsDates(t *testing.T) {
	in := []model.Record{
		{Account: "X", Debit: dec("100")},
		{Account: "Y", Credit: dec("100"), Date: date(2025, 1, 1)},
	}
	got := NewEngine(Options{DateWindow: 2}).Classify(in)
	assert.Equal(t, model.Outgoing, got[0].Classification)
	assert.Equal(t, model.Incoming, got[1].Classification)
}

func TestClassify_LogsAmbiguousRows(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	NewEngine(Options{Logger: &log}).Classify([]model.Record{
		{Account: "X", Debit: dec("5"), Credit: dec("6")},
	})
	assert.Contains(t, buf.String(), "record has both debit and credit")
}

func TestParseAmbiguousPolicy(t *testing.T) {
	p, err := ParseAmbiguousPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AllowAmbiguous, p)

	p, err = ParseAmbiguousPolicy("exclude")
	require.NoError(t, err)
	assert.Equal(t, ExcludeAmbiguous, p)

	_, err = ParseAmbiguousPolicy("forbid")
	assert.Error(t, err)
}

func randomBatch(rng *rand.Rand, n int) []model.Record {
	accounts := []string{"A", "B", "C"}
	amounts := []string{"10", "20", "20.50", "100", "999.99"}
	batch := make([]model.Record, n)
	for i := range batch {
		r := model.Record{Account: accounts[rng.Intn(len(accounts))]}
		amount := dec(amounts[rng.Intn(len(amounts))])
		switch rng.Intn(10) {
		case 0:
			// degenerate
		case 1:
			r.Debit = amount
			r.Credit = dec(amounts[rng.Intn(len(amounts))])
		case 2, 3, 4, 5:
			r.Debit = amount
		default:
			r.Credit = amount
		}
		batch[i] = r
	}
	return batch
}
