package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/matching"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/normalize"
)

// maxParallelFiles bounds concurrent statement parsing.
const maxParallelFiles = 4

// Input is one bank statement file to reconcile.
type Input struct {
	Bank    string
	Account string
	Preset  string
	Path    string
}

// SkippedFile is an input that contributed no records.
type SkippedFile struct {
	Path   string
	Reason string
}

// Stats counts the outcome of a run.
type Stats struct {
	Records      int
	Pairs        int
	Incoming     int
	Outgoing     int
	Unclassified int
}

// Result is a fully decorated batch.
type Result struct {
	Records   []model.Record
	Skipped   []SkippedFile
	Stats     Stats
	Liability gst.Liability
}

// Service runs statements through normalization, matching and GST categorization.
type Service struct {
	normalizer *normalize.Normalizer
	engine     *matching.Engine
	calc       *gst.Calculator
	log        zerolog.Logger
}

// NewService creates a reconcile Service.
func NewService(n *normalize.Normalizer, e *matching.Engine, c *gst.Calculator, log zerolog.Logger) *Service {
	return &Service{
		normalizer: n,
		engine:     e,
		calc:       c,
		log:        log.With().Str("component", "reconcile").Logger(),
	}
}

// Run normalizes every input concurrently, concatenates the records in input
// order and decorates the batch. Unreadable or malformed files are skipped
// and reported in the result; only cancellation is an error.
func (s *Service) Run(ctx context.Context, inputs []Input) (*Result, error) {
	type slot struct {
		records []model.Record
		err     error
	}
	slots := make([]slot, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i].records, slots[i].err = s.readFile(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("normalizing statements: %w", err)
	}

	var batch []model.Record
	var skipped []SkippedFile
	for i, sl := range slots {
		in := inputs[i]
		if sl.err != nil {
			s.log.Warn().Str("path", in.Path).Err(sl.err).Msg("skipping statement")
			skipped = append(skipped, SkippedFile{Path: in.Path, Reason: sl.err.Error()})
			continue
		}
		s.log.Info().Str("path", in.Path).Str("bank", in.Bank).Str("account", in.Account).
			Int("records", len(sl.records)).Msg("statement normalized")
		batch = append(batch, sl.records...)
	}

	res := s.Process(batch)
	res.Skipped = skipped
	s.log.Info().Int("records", res.Stats.Records).Int("pairs", res.Stats.Pairs).
		Int("skipped", len(skipped)).Msg("reconciliation complete")
	return res, nil
}

// Process decorates an already normalized batch.
func (s *Service) Process(records []model.Record) *Result {
	decorated := s.calc.Categorize(s.engine.Classify(records))
	return &Result{
		Records:   decorated,
		Stats:     Count(decorated),
		Liability: gst.Compute(decorated),
	}
}

func (s *Service) readFile(in Input) ([]model.Record, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	recs, err := s.normalizer.Normalize(f, normalize.Source{Bank: in.Bank, Account: in.Account, Preset: in.Preset})
	if err != nil {
		if errors.Is(err, normalize.ErrInvalidHeader) {
			return nil, err
		}
		return nil, fmt.Errorf("normalizing %s: %w", in.Path, err)
	}
	return recs, nil
}

// Count tallies classifications in a decorated batch.
func Count(records []model.Record) Stats {
	st := Stats{Records: len(records)}
	internal := 0
	for _, r := range records {
		switch r.Classification {
		case model.Internal:
			internal++
		case model.Incoming:
			st.Incoming++
		case model.Outgoing:
			st.Outgoing++
		case model.Unclassified:
			st.Unclassified++
		}
	}
	st.Pairs = internal / 2
	return st
}
