package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store keeps the download ledger in a local SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

var _ ports.Ledger = (*Store)(nil)

// Open creates the database file and schema when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, &domain.OpError{Op: "ledger.open", Kind: domain.KindExecution, Path: path, Err: fmt.Errorf("create dirs: %w", err)}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.OpError{Op: "ledger.open", Kind: domain.KindExecution, Path: path, Err: err}
	}
	// Download workers share one connection so writes serialize instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS downloads (
		path TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		project TEXT NOT NULL,
		run TEXT NOT NULL,
		size INTEGER NOT NULL,
		checksum TEXT NOT NULL DEFAULT '',
		completed_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, &domain.OpError{Op: "ledger.schema", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts or replaces the entry for e.Path.
func (s *Store) Record(ctx context.Context, e domain.LedgerEntry) error {
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO downloads (path, source, project, run, size, checksum, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			source = excluded.source,
			project = excluded.project,
			run = excluded.run,
			size = excluded.size,
			checksum = excluded.checksum,
			completed_at = excluded.completed_at`,
		e.Path, string(e.Source), e.Project, e.Run, e.Size, e.Checksum, e.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &domain.OpError{Op: "ledger.record", Kind: domain.KindExecution, Path: e.Path, Err: err}
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, path string) (domain.LedgerEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT path, source, project, run, size, checksum, completed_at
		FROM downloads WHERE path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LedgerEntry{}, false, nil
	}
	if err != nil {
		return domain.LedgerEntry{}, false, &domain.OpError{Op: "ledger.lookup", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return e, true, nil
}

// List returns entries ordered by completion time. An empty source lists all.
func (s *Store) List(ctx context.Context, source domain.Source) ([]domain.LedgerEntry, error) {
	query := `SELECT path, source, project, run, size, checksum, completed_at FROM downloads`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY completed_at, path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.OpError{Op: "ledger.list", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	out := []domain.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, &domain.OpError{Op: "ledger.list", Kind: domain.KindExecution, Path: s.path, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.OpError{Op: "ledger.list", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (domain.LedgerEntry, error) {
	var (
		e         domain.LedgerEntry
		source    string
		completed string
	)
	if err := sc.Scan(&e.Path, &source, &e.Project, &e.Run, &e.Size, &e.Checksum, &completed); err != nil {
		return domain.LedgerEntry{}, err
	}
	e.Source = domain.Source(source)
	t, err := time.Parse(time.RFC3339Nano, completed)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("decode completed_at: %w", err)
	}
	e.CompletedAt = t
	return e, nil
}
