package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tx is a write transaction on a container
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
}

// CreateGroup creates a child group of parent
func (t *Tx) CreateGroup(parent Group, name, title string) (Group, error) {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return Group{}, fmt.Errorf("invalid group name %q", name)
	}
	if _, err := findNode(t.ctx, t.tx, parent.ID, name); err == nil {
		return Group{}, fmt.Errorf("%w: %s", ErrExists, name)
	} else if !errors.Is(err, ErrNotFound) {
		return Group{}, err
	}
	return insertGroup(t.ctx, t.tx, parent.ID, name, title)
}

// CreateSeries creates an empty series under parent
func (t *Tx) CreateSeries(parent Group, name, title string, dtype DType) (Series, error) {
	switch dtype {
	case DTypeFloat, DTypeInt, DTypeString:
	default:
		return Series{}, fmt.Errorf("unsupported series type %q", dtype)
	}
	if _, err := findNode(t.ctx, t.tx, parent.ID, name); err == nil {
		return Series{}, fmt.Errorf("%w: %s", ErrExists, name)
	} else if !errors.Is(err, ErrNotFound) {
		return Series{}, err
	}

	res, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO nodes (parent_id, name, kind, dtype, title) VALUES (?, ?, 'series', ?, ?)",
		parent.ID, name, string(dtype), title)
	if err != nil {
		return Series{}, fmt.Errorf("create series %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Series{}, fmt.Errorf("create series %s: %w", name, err)
	}
	return Series{ID: id, Name: name, Title: title, DType: dtype}, nil
}

// SetAttrs sets attributes on a node, replacing existing values
func (t *Tx) SetAttrs(nodeID int64, attrs Attributes) error {
	for _, key := range attrs.Keys() {
		attr := attrs[key]
		if _, err := t.tx.ExecContext(t.ctx, `
			INSERT INTO attributes (node_id, key, kind, value) VALUES (?, ?, ?, ?)
			ON CONFLICT(node_id, key) DO UPDATE SET kind = excluded.kind, value = excluded.value
		`, nodeID, key, string(attr.Kind), attr.Value); err != nil {
			return fmt.Errorf("set attribute %s: %w", key, err)
		}
	}
	return nil
}

// AppendFloat appends to a float series and returns the new element index
func (t *Tx) AppendFloat(s Series, v float64) (int, error) {
	if s.DType != DTypeFloat {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	return t.appendValue(s, "float_value", v)
}

// AppendInt appends to an integer series and returns the new element index
func (t *Tx) AppendInt(s Series, v int64) (int, error) {
	if s.DType != DTypeInt {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	return t.appendValue(s, "int_value", v)
}

// AppendString appends to a string series and returns the new element index
func (t *Tx) AppendString(s Series, v string) (int, error) {
	if s.DType != DTypeString {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, s.Name, s.DType)
	}
	return t.appendValue(s, "str_value", v)
}

func (t *Tx) appendValue(s Series, column string, v any) (int, error) {
	var idx int
	if err := t.tx.QueryRowContext(t.ctx,
		"SELECT COALESCE(MAX(idx) + 1, 0) FROM series_values WHERE node_id = ?", s.ID).Scan(&idx); err != nil {
		return 0, fmt.Errorf("append to %s: %w", s.Name, err)
	}
	if _, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO series_values (node_id, idx, "+column+") VALUES (?, ?, ?)", s.ID, idx, v); err != nil {
		return 0, fmt.Errorf("append to %s: %w", s.Name, err)
	}
	return idx, nil
}

// NextGroupName returns the next free sequential name under parent
func (t *Tx) NextGroupName(parent Group, prefix string) (string, error) {
	return nextGroupName(t.ctx, t.tx, parent.ID, prefix)
}

// FindGroup returns the child group of parent with the given name
func (t *Tx) FindGroup(parent Group, name string) (Group, error) {
	return findGroup(t.ctx, t.tx, parent.ID, name)
}

// Attributes returns the attributes of a node as seen by this transaction
func (t *Tx) Attributes(nodeID int64) (Attributes, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT key, kind, value FROM attributes WHERE node_id = ?", nodeID)
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

func parentArg(parentID int64) any {
	if parentID == 0 {
		return nil
	}
	return parentID
}

func findNode(ctx context.Context, q queryer, parentID int64, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM nodes WHERE IFNULL(parent_id, 0) = ? AND name = ?", parentID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("find %s: %w", name, err)
	}
	return id, nil
}

func findGroup(ctx context.Context, q queryer, parentID int64, name string) (Group, error) {
	var g Group
	err := q.QueryRowContext(ctx, `
		SELECT id, name, title, created_at FROM nodes
		WHERE IFNULL(parent_id, 0) = ? AND name = ? AND kind = 'group'
	`, parentID, name).Scan(&g.ID, &g.Name, &g.Title, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Group{}, fmt.Errorf("%w: group %s", ErrNotFound, name)
	}
	if err != nil {
		return Group{}, fmt.Errorf("find group %s: %w", name, err)
	}
	return g, nil
}

func insertGroup(ctx context.Context, q queryer, parentID int64, name, title string) (Group, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO nodes (parent_id, name, kind, title) VALUES (?, ?, 'group', ?)",
		parentArg(parentID), name, title)
	if err != nil {
		return Group{}, fmt.Errorf("create group %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Group{}, fmt.Errorf("create group %s: %w", name, err)
	}
	return findGroupByID(ctx, q, id)
}

func findGroupByID(ctx context.Context, q queryer, id int64) (Group, error) {
	var g Group
	err := q.QueryRowContext(ctx,
		"SELECT id, name, title, created_at FROM nodes WHERE id = ?", id).Scan(&g.ID, &g.Name, &g.Title, &g.CreatedAt)
	if err != nil {
		return Group{}, fmt.Errorf("read group %d: %w", id, err)
	}
	return g, nil
}

func nextGroupName(ctx context.Context, q queryer, parentID int64, prefix string) (string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT name FROM nodes WHERE IFNULL(parent_id, 0) = ? AND kind = 'group'", parentID)
	if err != nil {
		return "", fmt.Errorf("list group names: %w", err)
	}
	defer rows.Close()

	next := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("scan group name: %w", err)
		}
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok || suffix == "" {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%03d", prefix, next), nil
}
