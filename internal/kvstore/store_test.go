package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
	"github.com/roach88/qom/internal/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testNode(path string, props ...ir.Property) ir.Node {
	return ir.Node{ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)), Path: path, Properties: props}
}

func single(name string, v ir.Value) ir.Property {
	return ir.Property{Name: name, Type: v.Type(), Values: []ir.Value{v}}
}

func multi(name string, t ir.PropertyType, values ...ir.Value) ir.Property {
	return ir.Property{Name: name, Type: t, Multiple: true, Values: values}
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("018f3a52-7c00-7000-8000-000000000001")

	assert.Len(t, nodeKey(id), 17)
	assert.Equal(t, prefixNode, nodeKey(id)[0])
	assert.Equal(t, append(propertyPrefix(id), "title"...), propertyKey(id, "title"))
	assert.Equal(t, []byte{prefixPath, '/', 'a'}, pathKey("/a"))
}

func TestPutNode_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	node := testNode("/content/jcr:article",
		single("title", ir.String("Café")),
		single("published", ir.Date(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))),
		single("data", ir.Binary{1, 2, 3}),
		multi("tags", ir.TypeName, ir.Name("b"), ir.Name("a")),
		single("ratio", ir.Double(2.5)),
	)
	require.NoError(t, s.PutNode(ctx, node))

	got, err := s.Node(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, got.Properties, 5)
	for i, want := range node.Properties {
		p := got.Properties[i]
		assert.Equal(t, want.Name, p.Name, "properties keep stored order")
		assert.Equal(t, want.Multiple, p.Multiple)
		require.Len(t, p.Values, len(want.Values))
		for j := range want.Values {
			assert.True(t, ir.Equal(want.Values[j], p.Values[j]), "%s[%d]", want.Name, j)
		}
	}
}

func TestGetValue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	node := testNode("/a",
		single("title", ir.String("hello")),
		multi("tags", ir.TypeString, ir.String("x"), ir.String("yy")),
		multi("none", ir.TypeString),
	)
	require.NoError(t, s.PutNode(ctx, node))

	res, err := s.GetValue(ctx, node.Ref(), "title")
	require.NoError(t, err)
	assert.Equal(t, qom.Scalar{Value: ir.String("hello")}, res)

	res, err = s.GetValue(ctx, node.Ref(), "tags")
	require.NoError(t, err)
	assert.Equal(t, qom.NewVector(ir.String("x"), ir.String("yy")), res)

	res, err = s.GetValue(ctx, node.Ref(), "none")
	require.NoError(t, err)
	assert.Equal(t, qom.KindVector, res.Kind())
	assert.Empty(t, qom.Values(res))

	res, err = s.GetValue(ctx, node.Ref(), "missing")
	require.NoError(t, err)
	assert.Equal(t, qom.Null{}, res)

	_, err = s.GetValue(ctx, ir.NodeRef{ID: uuid.New(), Path: "/gone"}, "title")
	assert.True(t, errors.Is(err, repository.ErrNodeNotFound))
}

func TestPutNode_ReplacesAndMoves(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	node := testNode("/a", single("title", ir.String("old")), single("stale", ir.Long(1)))
	require.NoError(t, s.PutNode(ctx, node))

	node.Path = "/b"
	node.Properties = []ir.Property{single("title", ir.String("new"))}
	require.NoError(t, s.PutNode(ctx, node))

	res, err := s.GetValue(ctx, node.Ref(), "stale")
	require.NoError(t, err)
	assert.Equal(t, qom.Null{}, res)

	nodes, err := s.Nodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "/b", nodes[0].Path)

	// The old path is free again.
	require.NoError(t, s.PutNode(ctx, ir.Node{ID: uuid.New(), Path: "/a"}))
}

func TestPutNode_PathConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.PutNode(ctx, testNode("/a")))
	err := s.PutNode(ctx, ir.Node{ID: uuid.New(), Path: "/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already stored")
}

func TestDeleteNode(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	node := testNode("/a", single("title", ir.String("x")))
	require.NoError(t, s.PutNode(ctx, node))
	require.NoError(t, s.DeleteNode(ctx, node.Ref()))
	require.NoError(t, s.DeleteNode(ctx, node.Ref()))

	_, err := s.GetValue(ctx, node.Ref(), "title")
	assert.ErrorIs(t, err, repository.ErrNodeNotFound)

	nodes, err := s.Nodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestNodes_OrderedByPath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, p := range []string{"/c", "/a", "/b"} {
		require.NoError(t, s.PutNode(ctx, testNode(p, single("p", ir.String(p)))))
	}

	nodes, err := s.Nodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"/a", "/b", "/c"}, []string{nodes[0].Path, nodes[1].Path, nodes[2].Path})
}

func TestClosedStore(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.GetValue(context.Background(), ir.NodeRef{ID: uuid.New(), Path: "/a"}, "p")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.PutNode(context.Background(), testNode("/a")), ErrClosed)
}

func TestOpen_OnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	node := testNode("/a", single("title", ir.String("persisted")))
	require.NoError(t, s.PutNode(ctx, node))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	res, err := s.GetValue(ctx, node.Ref(), "title")
	require.NoError(t, err)
	assert.Equal(t, qom.Scalar{Value: ir.String("persisted")}, res)
}

func TestConcurrentEvaluation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	node := testNode("/a", multi("tags", ir.TypeString, ir.String("a"), ir.String("bb")))
	require.NoError(t, s.PutNode(ctx, node))

	pv, err := qom.NewPropertyValue("", "tags")
	require.NoError(t, err)
	length, err := qom.NewLength(pv)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := qom.Evaluate(ctx, length, s, qom.SingleRow(node.Ref()))
			assert.NoError(t, err)
			assert.Equal(t, qom.NewVector(ir.Long(1), ir.Long(2)), res)
		}()
	}
	wg.Wait()
}
