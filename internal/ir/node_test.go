package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRefNames(t *testing.T) {
	tests := []struct {
		path      string
		name      string
		localName string
	}{
		{"/", "", ""},
		{"", "", ""},
		{"/content", "content", "content"},
		{"/content/jcr:content", "jcr:content", "content"},
		{"/content/item[2]", "item", "item"},
		{"/a/b/", "b", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ref := NodeRef{Path: tt.path}
			assert.Equal(t, tt.name, ref.Name())
			assert.Equal(t, tt.localName, ref.LocalName())
		})
	}
}

func TestNodeProperty(t *testing.T) {
	n := &Node{
		ID:   uuid.New(),
		Path: "/a",
		Properties: []Property{
			{Name: "title", Type: TypeString, Values: []Value{String("x")}},
		},
	}

	p, ok := n.Property("title")
	require.True(t, ok)
	assert.Equal(t, "title", p.Name)

	_, ok = n.Property("missing")
	assert.False(t, ok)

	assert.Equal(t, NodeRef{ID: n.ID, Path: "/a"}, n.Ref())
}

func TestNodeValidate(t *testing.T) {
	valid := &Node{ID: uuid.New(), Path: "/a"}
	assert.NoError(t, valid.Validate())

	noID := &Node{Path: "/a"}
	assert.ErrorContains(t, noID.Validate(), "id is required")

	relative := &Node{ID: uuid.New(), Path: "a"}
	assert.ErrorContains(t, relative.Validate(), "absolute")

	dup := &Node{
		ID:   uuid.New(),
		Path: "/a",
		Properties: []Property{
			{Name: "x", Type: TypeLong, Values: []Value{Long(1)}},
			{Name: "x", Type: TypeLong, Values: []Value{Long(2)}},
		},
	}
	assert.ErrorContains(t, dup.Validate(), "duplicate property")
}
