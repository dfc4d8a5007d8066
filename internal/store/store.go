package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/migrations"
)

// RawGroupName is the group holding dataset metadata and session groups
const RawGroupName = "Raw_datas"

// Extension is the default container file extension
const Extension = ".bee"

var (
	// ErrLocked is returned when another process holds the container
	ErrLocked = errors.New("container is locked by another process")
	// ErrNotFound is returned when a group or series does not exist
	ErrNotFound = errors.New("node not found")
	// ErrExists is returned when a sibling with the same name exists
	ErrExists = errors.New("node already exists")
	// ErrTypeMismatch is returned when appending a value of the wrong type
	ErrTypeMismatch = errors.New("series type mismatch")
	// ErrClosed is returned by operations on a closed container
	ErrClosed = errors.New("container is closed")
)

// DType is the element type of a series
type DType string

const (
	DTypeFloat  DType = "float"
	DTypeInt    DType = "int"
	DTypeString DType = "string"
)

// Group is a node that contains other nodes
type Group struct {
	ID        int64
	Name      string
	Title     string
	CreatedAt time.Time
}

// Series is an append-only typed array node
type Series struct {
	ID    int64
	Name  string
	Title string
	DType DType
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Container is a hierarchical data file backed by SQLite
// A container is held by one writer process at a time.
type Container struct {
	db      *sql.DB
	path    string
	lock    *flock.Flock
	created bool
	root    Group
	raw     Group
	logger  *slog.Logger
}

// Open opens the container at path, creating it if needed
func Open(ctx context.Context, path string, logger *slog.Logger) (*Container, error) {
	ctx = ensureContext(ctx)
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create container directory: %w", err)
	}

	created := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		created = true
	} else if err != nil {
		return nil, fmt.Errorf("stat container: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock container: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps per-connection pragmas in force.
	db.SetMaxOpenConns(1)

	c := &Container{db: db, path: path, lock: lock, created: created, logger: logger.With("component", "store")}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = c.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := migrations.InitSchema(db); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.ensureRoot(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Info("container opened", "path", path, "created", created)
	return c, nil
}

func (c *Container) ensureRoot(ctx context.Context) error {
	return c.Update(ctx, func(tx *Tx) error {
		root, err := findGroup(tx.ctx, tx.tx, 0, "/")
		if errors.Is(err, ErrNotFound) {
			root, err = insertGroup(tx.ctx, tx.tx, 0, "/", "")
		}
		if err != nil {
			return err
		}

		raw, err := findGroup(tx.ctx, tx.tx, root.ID, RawGroupName)
		if errors.Is(err, ErrNotFound) {
			raw, err = insertGroup(tx.ctx, tx.tx, root.ID, RawGroupName, "Raw data")
		}
		if err != nil {
			return err
		}

		c.root, c.raw = root, raw
		return nil
	})
}

// Path returns the container file path
func (c *Container) Path() string {
	return c.path
}

// Created reports whether this Open created the file
func (c *Container) Created() bool {
	return c.created
}

// Root returns the root group
func (c *Container) Root() Group {
	return c.root
}

// RawGroup returns the group holding dataset metadata and session groups
func (c *Container) RawGroup() Group {
	return c.raw
}

// Close flushes and releases the container. It is safe to call more than once.
func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	var errs []error
	if _, err := c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs = append(errs, fmt.Errorf("checkpoint: %w", err))
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	c.db = nil

	if c.lock != nil {
		if err := c.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock: %w", err))
		}
		_ = os.Remove(c.lock.Path())
	}

	c.logger.Info("container closed", "path", c.path)
	return errors.Join(errs...)
}

// Flush forces committed data into the main container file
func (c *Container) Flush(ctx context.Context) error {
	if c.db == nil {
		return ErrClosed
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, "PRAGMA wal_checkpoint(FULL)")
		return err
	})
}

// Update runs fn in a single transaction
// Nothing fn writes is visible unless it returns nil and the commit succeeds.
func (c *Container) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if c.db == nil {
		return ErrClosed
	}
	ctx = ensureContext(ctx)

	var sqlTx *sql.Tx
	if err := retryOnBusy(ctx, func() error {
		var beginErr error
		sqlTx, beginErr = c.db.BeginTx(ctx, nil)
		return beginErr
	}); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, ctx: ctx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Groups returns the child groups of parent ordered by name
func (c *Container) Groups(ctx context.Context, parent Group) ([]Group, error) {
	if c.db == nil {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ensureContext(ctx), `
		SELECT id, name, title, created_at FROM nodes
		WHERE parent_id = ? AND kind = 'group'
		ORDER BY name
	`, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Title, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// FindGroup returns the child group of parent with the given name
func (c *Container) FindGroup(ctx context.Context, parent Group, name string) (Group, error) {
	if c.db == nil {
		return Group{}, ErrClosed
	}
	return findGroup(ensureContext(ctx), c.db, parent.ID, name)
}

// SeriesIn returns the series under parent in creation order
func (c *Container) SeriesIn(ctx context.Context, parent Group) ([]Series, error) {
	if c.db == nil {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ensureContext(ctx), `
		SELECT id, name, title, dtype FROM nodes
		WHERE parent_id = ? AND kind = 'series'
		ORDER BY id
	`, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []Series
	for rows.Next() {
		var s Series
		var dtype string
		if err := rows.Scan(&s.ID, &s.Name, &s.Title, &dtype); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		s.DType = DType(dtype)
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindSeries returns the series under parent with the given name
func (c *Container) FindSeries(ctx context.Context, parent Group, name string) (Series, error) {
	if c.db == nil {
		return Series{}, ErrClosed
	}
	var s Series
	var dtype string
	err := c.db.QueryRowContext(ensureContext(ctx), `
		SELECT id, name, title, dtype FROM nodes
		WHERE parent_id = ? AND name = ? AND kind = 'series'
	`, parent.ID, name).Scan(&s.ID, &s.Name, &s.Title, &dtype)
	if errors.Is(err, sql.ErrNoRows) {
		return Series{}, fmt.Errorf("%w: series %s", ErrNotFound, name)
	}
	if err != nil {
		return Series{}, fmt.Errorf("find series: %w", err)
	}
	s.DType = DType(dtype)
	return s, nil
}

// Attributes returns the attributes of a group or series
func (c *Container) Attributes(ctx context.Context, nodeID int64) (Attributes, error) {
	if c.db == nil {
		return nil, ErrClosed
	}
	rows, err := c.db.QueryContext(ensureContext(ctx),
		"SELECT key, kind, value FROM attributes WHERE node_id = ?", nodeID)
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	defer rows.Close()

	attrs := make(Attributes)
	for rows.Next() {
		var key, kind, value string
		if err := rows.Scan(&key, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		attrs[key] = Attr{Kind: AttrKind(kind), Value: value}
	}
	return attrs, rows.Err()
}

// Len returns the number of elements in a series
func (c *Container) Len(ctx context.Context, s Series) (int, error) {
	if c.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := c.db.QueryRowContext(ensureContext(ctx),
		"SELECT COUNT(*) FROM series_values WHERE node_id = ?", s.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count series %s: %w", s.Name, err)
	}
	return n, nil
}

// Floats reads a float series
func (c *Container) Floats(ctx context.Context, s Series) ([]float64, error) {
	if s.DType != DTypeFloat {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	var out []float64
	err := c.readValues(ctx, s, "float_value", func(rows *sql.Rows) error {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// Ints reads an integer series
func (c *Container) Ints(ctx context.Context, s Series) ([]int64, error) {
	if s.DType != DTypeInt {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	var out []int64
	err := c.readValues(ctx, s, "int_value", func(rows *sql.Rows) error {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// Strings reads a string series
func (c *Container) Strings(ctx context.Context, s Series) ([]string, error) {
	if s.DType != DTypeString {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	var out []string
	err := c.readValues(ctx, s, "str_value", func(rows *sql.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func (c *Container) readValues(ctx context.Context, s Series, column string, scan func(*sql.Rows) error) error {
	if c.db == nil {
		return ErrClosed
	}
	rows, err := c.db.QueryContext(ensureContext(ctx),
		"SELECT "+column+" FROM series_values WHERE node_id = ? ORDER BY idx", s.ID)
	if err != nil {
		return fmt.Errorf("read series %s: %w", s.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan series %s: %w", s.Name, err)
		}
	}
	return rows.Err()
}

// NextGroupName returns prefix followed by a three-digit index one above the highest existing
func (c *Container) NextGroupName(ctx context.Context, parent Group, prefix string) (string, error) {
	if c.db == nil {
		return "", ErrClosed
	}
	return nextGroupName(ensureContext(ctx), c.db, parent.ID, prefix)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
