package ir

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NodeRef identifies a repository node without carrying its properties.
// It is what selectors bind to during evaluation.
type NodeRef struct {
	ID   uuid.UUID
	Path string
}

// Name returns the last segment of the node path including any namespace
// prefix. The root node has the empty name.
func (r NodeRef) Name() string {
	p := strings.TrimSuffix(r.Path, "/")
	if p == "" {
		return ""
	}
	name := p[strings.LastIndex(p, "/")+1:]
	// Same-name sibling index, e.g. "item[2]".
	if i := strings.IndexByte(name, '['); i > 0 && strings.HasSuffix(name, "]") {
		name = name[:i]
	}
	return name
}

// LocalName returns the node name without its namespace prefix.
func (r NodeRef) LocalName() string {
	name := r.Name()
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s (%s)", r.Path, r.ID)
}

// Node is a repository node with its properties in stored order.
type Node struct {
	ID         uuid.UUID
	Path       string
	Properties []Property
}

// Ref returns the node's reference.
func (n *Node) Ref() NodeRef {
	return NodeRef{ID: n.ID, Path: n.Path}
}

// Property returns the named property, or false if the node has none.
func (n *Node) Property(name string) (Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Validate checks node and property invariants.
func (n *Node) Validate() error {
	if n.ID == uuid.Nil {
		return fmt.Errorf("node %q: id is required", n.Path)
	}
	if !strings.HasPrefix(n.Path, "/") {
		return fmt.Errorf("node %q: path must be absolute", n.Path)
	}
	seen := make(map[string]bool, len(n.Properties))
	for _, p := range n.Properties {
		if seen[p.Name] {
			return fmt.Errorf("node %q: duplicate property %q", n.Path, p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.Path, err)
		}
	}
	return nil
}
