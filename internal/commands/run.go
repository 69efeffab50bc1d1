package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/logger"
	"github.com/cleared-dev/recon/internal/matching"
	"github.com/cleared-dev/recon/internal/normalize"
	"github.com/cleared-dev/recon/internal/reconcile"
	"github.com/cleared-dev/recon/internal/results"
	"github.com/cleared-dev/recon/internal/runlog"
)

// statementsDir is scanned for <bank>_<account>.csv files when neither
// arguments nor configured accounts name any inputs.
const statementsDir = "statements"

func newRunCommand(opts *globalOptions) *cobra.Command {
	var archive bool

	cmd := &cobra.Command{
		Use:   "run [bank:account:file ...]",
		Short: "Reconcile bank statements into a new session",
		Long: `Reconcile bank statements into a new session.

Inputs come from the arguments, else from the accounts in recon.yaml that
name a file, else from every <bank>_<account>.csv in the statements directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			inputs, scanned, err := r.inputs(args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("no statements to reconcile")
			}
			res, err := runReconcile(cmd.Context(), cmd.OutOrStdout(), r, inputs)
			if err != nil {
				return err
			}
			if archive && scanned {
				return archiveStatements(cmd.OutOrStdout(), r.path(statementsDir), inputs, res.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&archive, "archive", false, "move reconciled files from the statements directory to statements/processed")

	return cmd
}

// archiveStatements moves every scanned statement that was not skipped
// into the processed directory.
func archiveStatements(out io.Writer, dir string, inputs []reconcile.Input, skipped []reconcile.SkippedFile) error {
	skip := make(map[string]bool, len(skipped))
	for _, s := range skipped {
		skip[s.Path] = true
	}
	for _, in := range inputs {
		if skip[in.Path] {
			continue
		}
		if err := normalize.MarkProcessed(dir, filepath.Base(in.Path)); err != nil {
			return err
		}
		fmt.Fprintf(out, "  archived %s\n", filepath.Base(in.Path))
	}
	return nil
}

// inputs resolves the statement files for a run. scanned reports whether
// they came from the statements directory.
func (r *repo) inputs(args []string) (inputs []reconcile.Input, scanned bool, err error) {
	if len(args) > 0 {
		for _, arg := range args {
			parts := strings.SplitN(arg, ":", 3)
			if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
				return nil, false, fmt.Errorf("input %q: want bank:account:file", arg)
			}
			inputs = append(inputs, reconcile.Input{Bank: parts[0], Account: parts[1], Path: r.path(parts[2])})
		}
		return inputs, false, nil
	}

	for _, a := range r.cfg.Accounts {
		if a.File == "" {
			continue
		}
		inputs = append(inputs, reconcile.Input{Bank: a.Bank, Account: a.Account, Preset: a.Preset, Path: r.path(a.File)})
	}
	if len(inputs) > 0 {
		return inputs, false, nil
	}

	files, err := normalize.Scan(r.path(statementsDir))
	if err != nil {
		return nil, false, err
	}
	for _, f := range files {
		bank, account := splitStatementName(f.Name)
		inputs = append(inputs, reconcile.Input{Bank: bank, Account: account, Path: f.Path})
	}
	return inputs, true, nil
}

// splitStatementName reads "cba_1234.csv" as bank "cba", account "1234".
func splitStatementName(name string) (bank, account string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	bank, account, ok := strings.Cut(stem, "_")
	if !ok || account == "" {
		return stem, stem
	}
	return bank, account
}

func runReconcile(ctx context.Context, out io.Writer, r *repo, inputs []reconcile.Input) (*reconcile.Result, error) {
	log := logger.FromContext(ctx)

	mopts, err := r.cfg.MatchingOptions()
	if err != nil {
		return nil, err
	}
	mopts.Logger = &log

	calc, err := r.calculator()
	if err != nil {
		return nil, err
	}

	svc := reconcile.NewService(normalize.New(nil, log), matching.NewEngine(mopts), calc, log)
	res, err := svc.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if errs := matching.Validate(res.Records); len(errs) > 0 {
		return nil, fmt.Errorf("classification self-check: %w", errs[0])
	}

	store, err := r.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sess, err := store.Create(ctx, r.cfg.Owner.Name)
	if err != nil {
		return nil, err
	}
	if err := store.SaveResults(ctx, sess.ID, res.Records); err != nil {
		return nil, err
	}

	resultsPath := r.resultsPath(sess.ID)
	if err := results.WriteFile(resultsPath, res.Records); err != nil {
		return nil, err
	}

	skipped := make([]string, len(res.Skipped))
	for i, s := range res.Skipped {
		skipped[i] = s.Path
	}
	entry := runlog.Entry{
		RunID:        uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		SessionID:    sess.ID,
		Records:      res.Stats.Records,
		Pairs:        res.Stats.Pairs,
		Incoming:     res.Stats.Incoming,
		Outgoing:     res.Stats.Outgoing,
		Unclassified: res.Stats.Unclassified,
		SkippedFiles: skipped,
	}
	if err := runlog.Append(r.path(r.cfg.RunLog.Path), []runlog.Entry{entry}); err != nil {
		log.Warn().Err(err).Msg("failed to write run log")
	} else {
		log.Debug().Str("run_id", entry.RunID).Str("session", sess.ID).Msg("run logged")
	}

	fmt.Fprintf(out, "Session %s\n", sess.ID)
	fmt.Fprintf(out, "  %d records: %d internal pairs, %d incoming, %d outgoing, %d unclassified\n",
		res.Stats.Records, res.Stats.Pairs, res.Stats.Incoming, res.Stats.Outgoing, res.Stats.Unclassified)
	fmt.Fprintf(out, "  GST collected %s, paid %s, net %s\n",
		res.Liability.Collected.StringFixed(2), res.Liability.Paid.StringFixed(2), res.Liability.Net().StringFixed(2))
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "  skipped %s: %s\n", s.Path, s.Reason)
	}
	fmt.Fprintf(out, "  results written to %s\n", resultsPath)
	return res, nil
}
