package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
	"github.com/roach88/qom/internal/repository"
)

// GetValue implements qom.ValueSource. A missing property is Null; a
// missing node wraps repository.ErrNodeNotFound.
func (s *Store) GetValue(ctx context.Context, node ir.NodeRef, property string) (qom.Result, error) {
	id := node.ID.String()

	var typeName string
	var multiple bool
	err := s.db.QueryRowContext(ctx, `
		SELECT type, multiple FROM properties
		WHERE node_id = ? AND name = ?
	`, id, property).Scan(&typeName, &multiple)
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := s.nodeExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", repository.ErrNodeNotFound, node)
		}
		return qom.Null{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get value %s/%s: %w", node.Path, property, err)
	}

	p, err := s.readProperty(ctx, id, property, typeName, multiple)
	if err != nil {
		return nil, fmt.Errorf("get value %s/%s: %w", node.Path, property, err)
	}
	return qom.PropertyResult(p), nil
}

func (s *Store) nodeExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query node: %w", err)
	}
	return true, nil
}

// readProperty loads the values of one property ordered by idx.
func (s *Store) readProperty(ctx context.Context, nodeID, name, typeName string, multiple bool) (ir.Property, error) {
	t, err := ir.ParsePropertyType(typeName)
	if err != nil {
		return ir.Property{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM property_values
		WHERE node_id = ? AND name = ?
		ORDER BY idx ASC
	`, nodeID, name)
	if err != nil {
		return ir.Property{}, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	p := ir.Property{Name: name, Type: t, Multiple: multiple, Values: []ir.Value{}}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return ir.Property{}, fmt.Errorf("scan value: %w", err)
		}
		v, err := ir.ParseValue(t, text)
		if err != nil {
			return ir.Property{}, fmt.Errorf("property %q: %w", name, err)
		}
		p.Values = append(p.Values, v)
	}
	if err := rows.Err(); err != nil {
		return ir.Property{}, fmt.Errorf("iterate values: %w", err)
	}
	return p, nil
}

// Node reads one node with all of its properties.
func (s *Store) Node(ctx context.Context, id uuid.UUID) (ir.Node, error) {
	var path string
	err := s.db.QueryRowContext(ctx, `SELECT path FROM nodes WHERE id = ?`, id.String()).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Node{}, fmt.Errorf("%w: %s", repository.ErrNodeNotFound, id)
	}
	if err != nil {
		return ir.Node{}, fmt.Errorf("read node: %w", err)
	}
	return s.readNode(ctx, id, path)
}

// Nodes returns every stored node ordered by path.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Nodes(ctx context.Context) ([]ir.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path FROM nodes
		ORDER BY path COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}

	type ref struct {
		id   uuid.UUID
		path string
	}
	var refs []ref
	for rows.Next() {
		var idText, path string
		if err := rows.Scan(&idText, &path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan node: %w", err)
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("node %s: invalid id: %w", path, err)
		}
		refs = append(refs, ref{id: id, path: path})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	// Single connection: release it before the per-node queries.
	rows.Close()

	nodes := make([]ir.Node, 0, len(refs))
	for _, r := range refs {
		n, err := s.readNode(ctx, r.id, r.path)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (s *Store) readNode(ctx context.Context, id uuid.UUID, path string) (ir.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type, multiple FROM properties
		WHERE node_id = ?
		ORDER BY pos ASC
	`, id.String())
	if err != nil {
		return ir.Node{}, fmt.Errorf("query properties: %w", err)
	}

	type header struct {
		name, typeName string
		multiple       bool
	}
	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.name, &h.typeName, &h.multiple); err != nil {
			rows.Close()
			return ir.Node{}, fmt.Errorf("scan property: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return ir.Node{}, fmt.Errorf("iterate properties: %w", err)
	}
	rows.Close()

	node := ir.Node{ID: id, Path: path}
	for _, h := range headers {
		p, err := s.readProperty(ctx, id.String(), h.name, h.typeName, h.multiple)
		if err != nil {
			return ir.Node{}, fmt.Errorf("node %s: %w", path, err)
		}
		node.Properties = append(node.Properties, p)
	}
	return node, nil
}
