package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// ErrNodeNotFound is returned by GetValue when the referenced node is not
// stored. Stores wrap it with the node reference.
var ErrNodeNotFound = errors.New("node not found")

// Repository is a ValueSource that can also store and enumerate nodes.
type Repository interface {
	qom.ValueSource

	// PutNode stores node, replacing any node with the same ID. A path
	// held by a different ID is an error.
	PutNode(ctx context.Context, node ir.Node) error

	// DeleteNode removes node and its properties. Deleting a node that is
	// not stored is a no-op.
	DeleteNode(ctx context.Context, node ir.NodeRef) error

	// Node returns the node with id, or an error wrapping ErrNodeNotFound.
	Node(ctx context.Context, id uuid.UUID) (ir.Node, error)

	// Nodes returns every stored node ordered by path.
	Nodes(ctx context.Context) ([]ir.Node, error)

	// Close releases the repository's resources.
	Close() error
}
