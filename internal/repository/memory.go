package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// Memory is an in-memory Repository. It is safe for concurrent use.
// Nodes are copied on the way in and results are copied on the way out,
// so callers never share slices with the store.
type Memory struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]ir.Node
	paths map[string]uuid.UUID
}

// NewMemory creates an empty Memory repository.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[uuid.UUID]ir.Node),
		paths: make(map[string]uuid.UUID),
	}
}

// Compile-time interface check.
var _ Repository = (*Memory)(nil)

// PutNode validates and stores a copy of node. Storing an existing ID at a
// new path moves it.
func (m *Memory) PutNode(ctx context.Context, node ir.Node) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("put node %s: %w", node.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, ok := m.paths[node.Path]; ok && owner != node.ID {
		return fmt.Errorf("put node %s: path already stored for %s", node.Path, owner)
	}
	if old, ok := m.nodes[node.ID]; ok {
		delete(m.paths, old.Path)
	}
	m.nodes[node.ID] = cloneNode(node)
	m.paths[node.Path] = node.ID
	return nil
}

// DeleteNode removes node. Unknown nodes are ignored.
func (m *Memory) DeleteNode(ctx context.Context, node ir.NodeRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.nodes[node.ID]; ok {
		delete(m.paths, old.Path)
		delete(m.nodes, node.ID)
	}
	return nil
}

// Node returns a copy of the node with id.
func (m *Memory) Node(ctx context.Context, id uuid.UUID) (ir.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return ir.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return cloneNode(n), nil
}

// Nodes returns copies of every node ordered by path.
func (m *Memory) Nodes(ctx context.Context) ([]ir.Node, error) {
	m.mu.RLock()
	out := make([]ir.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, cloneNode(n))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// GetValue implements qom.ValueSource. A missing property is Null; a
// missing node is ErrNodeNotFound.
func (m *Memory) GetValue(ctx context.Context, node ir.NodeRef, property string) (qom.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[node.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, node)
	}
	p, ok := n.Property(property)
	if !ok {
		return qom.Null{}, nil
	}
	return qom.PropertyResult(p), nil
}

// LengthOf implements qom.ValueSource with the repository-wide metric.
func (m *Memory) LengthOf(v ir.Value) int64 {
	return ir.Length(v)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cloneNode(n ir.Node) ir.Node {
	props := make([]ir.Property, len(n.Properties))
	for i, p := range n.Properties {
		p.Values = append([]ir.Value(nil), p.Values...)
		props[i] = p
	}
	n.Properties = props
	return n
}
