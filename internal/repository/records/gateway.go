// Package records implements the structured financial-record store on
// SQLite. Records are stored as opaque JSON rows; predicates compile to
// parameterized json_extract expressions, so the gateway stays
// schema-agnostic like the rest of the core.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/auditscope/auditscope/internal/domain"
	"github.com/auditscope/auditscope/internal/domain/query"
	"github.com/auditscope/auditscope/internal/domain/record"
)

// Config holds record store settings.
type Config struct {
	Path string // SQLite database file, ":memory:" for tests
}

// Gateway is the record store collaborator. Construction is cheap and
// never touches the database; the connection is opened on first use and
// the outcome (success or failure) is memoized for the lifetime of the
// instance.
type Gateway struct {
	cfg Config

	openOnce sync.Once
	db       *sql.DB
	openErr  error

	mu      sync.Mutex
	handles map[string]struct{} // collections verified against sqlite_master
}

// New creates a gateway. No connection is opened here.
func New(cfg Config) *Gateway {
	return &Gateway{
		cfg:     cfg,
		handles: make(map[string]struct{}),
	}
}

// conn opens the database exactly once, concurrent first callers share
// the same attempt. A failed open is not retried.
func (g *Gateway) conn(ctx context.Context) (*sql.DB, error) {
	g.openOnce.Do(func() {
		g.db, g.openErr = open(ctx, g.cfg.Path)
	})
	if g.openErr != nil {
		return nil, fmt.Errorf("record store open: %w: %w", domain.ErrStoreUnavailable, g.openErr)
	}
	return g.db, nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("record store path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return db, nil
}

// handle verifies the collection table exists and caches the result.
// Each collection is checked against sqlite_master at most once.
func (g *Gateway) handle(ctx context.Context, collection string) error {
	if !validCollection(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.handles[collection]; ok {
		return nil
	}

	db, err := g.conn(ctx)
	if err != nil {
		return err
	}

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, collection,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("collection %q: %w: table does not exist", collection, domain.ErrStoreUnavailable)
	}
	if err != nil {
		return fmt.Errorf("collection %q: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}

	g.handles[collection] = struct{}{}
	return nil
}

// GetByKey returns the single record matching (engagement_id, key) in the
// collection. Zero rows map to domain.ErrNotFound; if more than one row
// matches, the first in native order wins.
func (g *Gateway) GetByKey(ctx context.Context, ent record.Entity, engagementID, key string) (record.Record, error) {
	if err := g.handle(ctx, ent.Collection); err != nil {
		return nil, err
	}
	db, err := g.conn(ctx)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(
		`SELECT data FROM %s WHERE %s = ? AND %s = ? LIMIT 1`,
		ent.Collection, extractExpr(record.TenantField), extractExpr(ent.KeyField),
	)

	var data []byte
	err = db.QueryRowContext(ctx, stmt, engagementID, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %s/%s: %w", ent.Collection, engagementID, key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s/%s: %w: %w",
			ent.Collection, engagementID, key, domain.ErrStoreUnavailable, err)
	}

	return decodeRecord(data)
}

// Query runs a compiled predicate against the collection. The limit must
// be positive; the builder never emits one, so the caller owns it.
func (g *Gateway) Query(ctx context.Context, ent record.Entity, q query.Query, limit int) ([]record.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0, got %d", limit)
	}
	if err := g.handle(ctx, ent.Collection); err != nil {
		return nil, err
	}
	db, err := g.conn(ctx)
	if err != nil {
		return nil, err
	}

	stmt, args := compile(ent.Collection, q, limit)

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", ent.Collection, domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("query %s: %w: %w", ent.Collection, domain.ErrStoreUnavailable, err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", ent.Collection, domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

// EnsureCollection creates the collection table if it does not exist.
// Used by the seeder; readers expect tables to already be present.
func (g *Gateway) EnsureCollection(ctx context.Context, collection string) error {
	if !validCollection(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	db, err := g.conn(ctx)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, data TEXT NOT NULL)`,
		collection,
	)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure collection %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}

	g.mu.Lock()
	g.handles[collection] = struct{}{}
	g.mu.Unlock()
	return nil
}

// InsertBatch stores records in one transaction. Seeder path only.
func (g *Gateway) InsertBatch(ctx context.Context, collection string, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := g.handle(ctx, collection); err != nil {
		return err
	}
	db, err := g.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (data) VALUES (?)`, collection))
	if err != nil {
		return fmt.Errorf("insert %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record for %s: %w", collection, err)
		}
		if _, err := stmt.ExecContext(ctx, data); err != nil {
			return fmt.Errorf("insert %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Ping verifies the store is reachable, opening it if needed.
func (g *Gateway) Ping(ctx context.Context) error {
	db, err := g.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("record store ping: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the connection if one was opened.
func (g *Gateway) Close() error {
	g.openOnce.Do(func() {
		g.openErr = fmt.Errorf("record store closed before first use")
	})
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}

// --- predicate compilation ---

// compile renders a predicate list into a parameterized SELECT. Field
// names were validated by the builder; collection names by the handle
// check. Values travel only as bound parameters.
func compile(collection string, q query.Query, limit int) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT data FROM ")
	sb.WriteString(collection)

	if len(q.Clauses) > 0 {
		sb.WriteString(" WHERE ")
		for i, c := range q.Clauses {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(extractExpr(c.Field))
			sb.WriteString(" ")
			sb.WriteString(string(c.Op))
			sb.WriteString(" ?")
		}
	}

	sb.WriteString(" LIMIT ?")
	args := make([]any, 0, len(q.Args)+1)
	args = append(args, q.Args...)
	args = append(args, limit)
	return sb.String(), args
}

func extractExpr(field string) string {
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

func decodeRecord(data []byte) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return rec, nil
}

var collectionRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validCollection(name string) bool {
	return collectionRe.MatchString(name)
}
