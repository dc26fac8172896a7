package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/qom/internal/ir"
)

// PutNode stores node, replacing the properties of any node with the same
// ID. The node is validated first. A different node already stored at the
// same path is a constraint error.
func (s *Store) PutNode(ctx context.Context, node ir.Node) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("put node: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put node: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	id := node.ID.String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes (id, path) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET path = excluded.path
	`, id, node.Path)
	if err != nil {
		return fmt.Errorf("put node %s: %w", node.Path, err)
	}

	// Cascades to property_values.
	if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE node_id = ?`, id); err != nil {
		return fmt.Errorf("put node %s: clear properties: %w", node.Path, err)
	}

	for pos, p := range node.Properties {
		if err := writeProperty(ctx, tx, id, pos, p); err != nil {
			return fmt.Errorf("put node %s: %w", node.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put node %s: commit: %w", node.Path, err)
	}

	s.logger.Debug("node stored", "path", node.Path, "id", id, "properties", len(node.Properties))
	return nil
}

func writeProperty(ctx context.Context, tx *sql.Tx, nodeID string, pos int, p ir.Property) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO properties (node_id, name, pos, type, multiple)
		VALUES (?, ?, ?, ?, ?)
	`, nodeID, p.Name, pos, p.Type.String(), p.Multiple)
	if err != nil {
		return fmt.Errorf("property %q: %w", p.Name, err)
	}

	for idx, v := range p.Values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO property_values (node_id, name, idx, value)
			VALUES (?, ?, ?, ?)
		`, nodeID, p.Name, idx, v.String())
		if err != nil {
			return fmt.Errorf("property %q value[%d]: %w", p.Name, idx, err)
		}
	}
	return nil
}

// DeleteNode removes a node and its properties. Deleting a missing node
// is not an error.
func (s *Store) DeleteNode(ctx context.Context, node ir.NodeRef) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, node.ID.String()); err != nil {
		return fmt.Errorf("delete node %s: %w", node, err)
	}
	return nil
}
