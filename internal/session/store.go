package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

const dateFormat = "2006-01-02"

// Session is the header of a stored reconciliation.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Records   int
	Pending   int
}

// Snapshot is a session with its base results and pending overrides.
type Snapshot struct {
	Session Session
	Records []model.Record
	Pending *gst.Overlay
}

// Store persists sessions in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the session database at path and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create starts a new empty session for owner.
func (s *Store) Create(ctx context.Context, owner string) (Session, error) {
	now := s.now().UTC()
	sess := Session{ID: uuid.NewString(), Owner: owner, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, owner, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Owner, now.UnixNano(), now.UnixNano())
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// SaveResults replaces the base results of session id.
func (s *Store) SaveResults(ctx context.Context, id string, records []model.Record) error {
	return s.inTx(ctx, id, func(tx *sql.Tx) error {
		return writeRecords(ctx, tx, id, records)
	})
}

// SavePending replaces the pending overrides of session id with overlay.
func (s *Store) SavePending(ctx context.Context, id string, overlay *gst.Overlay) error {
	return s.inTx(ctx, id, func(tx *sql.Tx) error {
		return writePending(ctx, tx, id, overlay)
	})
}

// Submit replaces both the base results and the pending overrides of
// session id in one transaction. A nil records slice leaves the base
// results as they are.
func (s *Store) Submit(ctx context.Context, id string, records []model.Record, pending *gst.Overlay) error {
	return s.inTx(ctx, id, func(tx *sql.Tx) error {
		if records != nil {
			if err := writeRecords(ctx, tx, id, records); err != nil {
				return err
			}
		}
		return writePending(ctx, tx, id, pending)
	})
}

func writeRecords(ctx context.Context, tx *sql.Tx, id string, records []model.Record) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records
		(session_id, idx, date, bank, account, transaction_id, description,
		 debit, credit, classification, pair_id, gst_category, gst)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var date string
		if r.HasDate() {
			date = r.Date.Format(dateFormat)
		}
		_, err := stmt.ExecContext(ctx, id, r.Index, date, r.Bank, r.Account, r.TransactionID,
			r.Description, r.Debit.String(), r.Credit.String(), string(r.Classification),
			r.PairID, string(r.GSTCategory), r.GST.String())
		if err != nil {
			return fmt.Errorf("insert record %d: %w", r.Index, err)
		}
	}
	return nil
}

func writePending(ctx context.Context, tx *sql.Tx, id string, overlay *gst.Overlay) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_changes WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	if overlay == nil {
		return nil
	}
	for _, idx := range overlay.Indexes() {
		cat, _ := overlay.Get(idx)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO pending_changes (session_id, idx, gst_category) VALUES (?, ?, ?)`,
			id, idx, string(cat))
		if err != nil {
			return fmt.Errorf("insert pending %d: %w", idx, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction after checking the session exists, and
// bumps the session's updated_at on success.
func (s *Store) inTx(ctx context.Context, id string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, s.now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const sessionColumns = `s.id, s.owner, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM records r WHERE r.session_id = s.id),
	(SELECT COUNT(*) FROM pending_changes p WHERE p.session_id = s.id)`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var sess Session
	var created, updated int64
	if err := row.Scan(&sess.ID, &sess.Owner, &created, &updated, &sess.Records, &sess.Pending); err != nil {
		return Session{}, err
	}
	sess.CreatedAt = time.Unix(0, created).UTC()
	sess.UpdatedAt = time.Unix(0, updated).UTC()
	return sess, nil
}

// Get returns the header of session id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Load returns session id with its base results in index order and its
// pending overrides.
func (s *Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.loadRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	pending, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Session: sess, Records: records, Pending: pending}, nil
}

func (s *Store) loadRecords(ctx context.Context, id string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, date, bank, account, transaction_id, description,
		debit, credit, classification, pair_id, gst_category, gst
		FROM records WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var date, debit, credit, class, category, gstValue string
		if err := rows.Scan(&r.Index, &date, &r.Bank, &r.Account, &r.TransactionID, &r.Description,
			&debit, &credit, &class, &r.PairID, &category, &gstValue); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if date != "" {
			if r.Date, err = time.Parse(dateFormat, date); err != nil {
				return nil, fmt.Errorf("record %d: parsing date %q: %w", r.Index, date, err)
			}
		}
		if r.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("record %d: parsing debit %q: %w", r.Index, debit, err)
		}
		if r.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("record %d: parsing credit %q: %w", r.Index, credit, err)
		}
		if r.GST, err = decimal.NewFromString(gstValue); err != nil {
			return nil, fmt.Errorf("record %d: parsing gst %q: %w", r.Index, gstValue, err)
		}
		r.Classification = model.Classification(class)
		r.GSTCategory = model.GSTCategory(category)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) loadPending(ctx context.Context, id string) (*gst.Overlay, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, gst_category FROM pending_changes WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	overlay := gst.NewOverlay()
	for rows.Next() {
		var idx int
		var category string
		if err := rows.Scan(&idx, &category); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		overlay.Set(idx, model.GSTCategory(category))
	}
	return overlay, rows.Err()
}

// List returns the sessions of owner, newest first. An empty owner lists all.
func (s *Store) List(ctx context.Context, owner string) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s`
	var args []any
	if owner != "" {
		query += ` WHERE s.owner = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY s.created_at DESC, s.rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Latest returns the newest session of owner.
func (s *Store) Latest(ctx context.Context, owner string) (Session, error) {
	sessions, err := s.List(ctx, owner)
	if err != nil {
		return Session{}, err
	}
	if len(sessions) == 0 {
		return Session{}, ErrNotFound
	}
	return sessions[0], nil
}

// Delete removes session id with its results and pending overrides.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_changes WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete pending: %w", err)
	}
	return tx.Commit()
}
