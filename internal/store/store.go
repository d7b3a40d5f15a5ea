// Package store keeps a SQLite catalog of imported module metadata. Each
// import is a batch of emitted documents identified by a UUID.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cameronsjo/modulemd/internal/codec"
	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/lock"
	"github.com/cameronsjo/modulemd/internal/modulemd"
	"github.com/cameronsjo/modulemd/internal/trace"
)

// ErrBatchNotFound is returned when a batch id is unknown or the catalog
// holds no batches.
var ErrBatchNotFound = errors.New("batch not found")

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	module TEXT NOT NULL,
	doctype TEXT NOT NULL,
	mdversion INTEGER NOT NULL,
	stream TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL,
	PRIMARY KEY (batch_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_documents_module ON documents(module);
CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);
`

// Batch describes one import.
type Batch struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Documents int
}

// Store is a catalog backed by one SQLite database file.
type Store struct {
	db       *sql.DB
	path     string
	logger   *slog.Logger
	observer trace.Observer
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the observer notified of store operations.
func WithObserver(observer trace.Observer) Option {
	return func(s *Store) {
		s.observer = observer
	}
}

// Open opens or creates the catalog at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   path,
		logger: trace.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	s.logger.Debug("catalog opened", "path", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import writes every document of idx as a new batch and returns its id.
// The catalog file is locked for the duration of the write.
func (s *Store) Import(ctx context.Context, source string, idx *index.Index) (id string, err error) {
	span := trace.Begin(s.logger, s.observer, "store.import", "source", source)
	defer span.End(&err)

	docs := idx.Documents()
	if len(docs) == 0 {
		return "", modulemd.InvalidArgumentf(modulemd.DomainIndex, "nothing to import from %s", source)
	}

	id = uuid.NewString()
	err = lock.WithLock(s.path, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback() // no-op after commit

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, source, created_at) VALUES (?, ?, ?)`,
			id, source, s.now().UnixNano(),
		); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO documents (batch_id, seq, module, doctype, mdversion, stream, body)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		// seq keeps Dump order so Export reproduces it
		for seq, doc := range docs {
			body, err := codec.EmitString(doc)
			if err != nil {
				return fmt.Errorf("emit %s of module %q: %w", doc.DocumentType(), doc.ModuleName(), err)
			}
			if _, err := stmt.ExecContext(ctx,
				id, seq, doc.ModuleName(), doc.DocumentType().String(),
				doc.DocumentVersion(), streamOf(doc), body,
			); err != nil {
				return fmt.Errorf("insert document %d: %w", seq, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}

	span.Logger().Info("imported batch", "batch", id, "documents", len(docs))
	return id, nil
}

func streamOf(doc modulemd.Document) string {
	switch v := doc.(type) {
	case *modulemd.ModuleStream:
		return v.StreamName()
	case *modulemd.Translation:
		return v.StreamName()
	}
	return ""
}

// Latest returns the id of the most recent batch.
func (s *Store) Latest(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM batches ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBatchNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query latest batch: %w", err)
	}
	return id, nil
}

// Export returns the YAML stream of batch id, or of the latest batch when
// id is empty.
func (s *Store) Export(ctx context.Context, id string) (string, error) {
	if id == "" {
		latest, err := s.Latest(ctx)
		if err != nil {
			return "", err
		}
		id = latest
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE batch_id = ? ORDER BY seq`, id)
	if err != nil {
		return "", fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	n := 0
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return "", fmt.Errorf("scan document: %w", err)
		}
		// The emitter leaves out the marker of a lone document
		b.WriteString("---\n")
		b.WriteString(body)
		n++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read documents: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%s: %w", id, ErrBatchNotFound)
	}
	return b.String(), nil
}

// Load rebuilds the index stored as batch id, or the latest batch when id
// is empty.
func (s *Store) Load(ctx context.Context, id string, opts ...index.Option) (*index.Index, error) {
	text, err := s.Export(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := index.New(opts...)
	failures, err := idx.UpdateFromString(text)
	if err != nil {
		return nil, err
	}
	if err := index.FailuresError(failures); err != nil {
		return nil, fmt.Errorf("stored batch is unreadable: %w", err)
	}
	return idx, nil
}

// Batches lists every batch, newest first.
func (s *Store) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.source, b.created_at, COUNT(d.seq)
		FROM batches b LEFT JOIN documents d ON d.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var (
			b       Batch
			created int64
		)
		if err := rows.Scan(&b.ID, &b.Source, &created, &b.Documents); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.CreatedAt = time.Unix(0, created)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes batch id and its documents.
func (s *Store) Delete(ctx context.Context, id string) error {
	return lock.WithLock(s.path, func() error {
		// documents go with it through ON DELETE CASCADE
		res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%s: %w", id, ErrBatchNotFound)
		}
		return nil
	})
}
