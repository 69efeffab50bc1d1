package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cleared-dev/recon/internal/config"
	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/results"
	"github.com/cleared-dev/recon/internal/session"
)

// repo is an initialized recon directory and its loaded config.
type repo struct {
	root string
	cfg  *config.Config
}

func openRepo(dir string) (*repo, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run 'recon init' first?)", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}
	return &repo{root: root, cfg: cfg}, nil
}

func (r *repo) path(p string) string {
	return config.Resolve(r.root, p)
}

func (r *repo) openStore() (*session.Store, error) {
	return session.Open(r.path(r.cfg.Storage.DBPath))
}

func (r *repo) calculator() (*gst.Calculator, error) {
	rate, err := r.cfg.Rate()
	if err != nil {
		return nil, err
	}
	return gst.NewCalculator(rate), nil
}

func (r *repo) resultsPath(sessionID string) string {
	return filepath.Join(r.path(r.cfg.Storage.ResultsDir), sessionID+".csv")
}

// resolveSession returns the given session id, or the owner's newest session.
func (r *repo) resolveSession(ctx context.Context, store *session.Store, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	latest, err := store.Latest(ctx, r.cfg.Owner.Name)
	if errors.Is(err, session.ErrNotFound) {
		return "", errors.New("no sessions yet (run 'recon run' first)")
	}
	if err != nil {
		return "", err
	}
	return latest.ID, nil
}

// exportResults rewrites the results CSV for a session.
func (r *repo) exportResults(snap *session.Snapshot) error {
	return results.WriteFile(r.resultsPath(snap.Session.ID), snap.Records)
}
