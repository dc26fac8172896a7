package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestNode creates a node with a fixed ID derived from path.
func createTestNode(path string, props ...ir.Property) ir.Node {
	return ir.Node{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)),
		Path:       path,
		Properties: props,
	}
}

func singleProp(name string, v ir.Value) ir.Property {
	return ir.Property{Name: name, Type: v.Type(), Values: []ir.Value{v}}
}

func multiProp(name string, t ir.PropertyType, values ...ir.Value) ir.Property {
	return ir.Property{Name: name, Type: t, Multiple: true, Values: values}
}
