package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(file, name string, kind ItemKind) *Item {
	return &Item{
		Kind:          kind,
		Name:          name,
		QualifiedName: name,
		File:          file,
		StartLine:     1,
		EndLine:       1,
		Visibility:    VisibilityPublic,
	}
}

func TestGraph_AddItem(t *testing.T) {
	t.Run("registers items and updates counters", func(t *testing.T) {
		g := NewGraph(RepositoryRef{Owner: "o", Name: "r"})

		require.NoError(t, g.AddItem(newTestItem("src/lib.rs", "Foo", KindStruct)))
		require.NoError(t, g.AddItem(newTestItem("src/lib.rs", "bar", KindFunction)))

		assert.Len(t, g.Items, 2)
		assert.Equal(t, 1, g.Summary.ItemsByKind[KindStruct])
		assert.Equal(t, 1, g.Summary.ItemsByKind[KindFunction])
		assert.Equal(t, 2, g.Summary.ItemsByFile["src/lib.rs"])
	})

	t.Run("duplicate identity is an invariant violation", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})

		require.NoError(t, g.AddItem(newTestItem("src/lib.rs", "Foo", KindStruct)))
		err := g.AddItem(newTestItem("src/lib.rs", "Foo", KindStruct))

		assert.ErrorIs(t, err, ErrInvariantViolation)
	})

	t.Run("same name different file is distinct", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})

		require.NoError(t, g.AddItem(newTestItem("src/a.rs", "Foo", KindStruct)))
		require.NoError(t, g.AddItem(newTestItem("src/b.rs", "Foo", KindStruct)))

		assert.Len(t, g.Items, 2)
	})
}

func TestGraph_AddEdge(t *testing.T) {
	t.Run("unknown source is an invariant violation", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})

		err := g.AddEdge(Edge{Kind: EdgeDependsOn, Source: "nope", Target: "x", External: true})

		assert.ErrorIs(t, err, ErrInvariantViolation)
	})

	t.Run("unknown internal target is an invariant violation", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})
		item := newTestItem("src/a.rs", "Foo", KindStruct)
		require.NoError(t, g.AddItem(item))

		err := g.AddEdge(Edge{Kind: EdgeDependsOn, Source: item.ID(), Target: "missing"})

		assert.ErrorIs(t, err, ErrInvariantViolation)
	})

	t.Run("insertion is idempotent", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})
		item := newTestItem("src/a.rs", "Foo", KindStruct)
		require.NoError(t, g.AddItem(item))

		edge := Edge{Kind: EdgeDependsOn, Source: item.ID(), Target: "HashMap", External: true}
		require.NoError(t, g.AddEdge(edge))
		require.NoError(t, g.AddEdge(edge))

		assert.Len(t, g.Edges, 1)
	})

	t.Run("external names collapse to one placeholder", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})
		a := newTestItem("src/a.rs", "Foo", KindStruct)
		b := newTestItem("src/b.rs", "Bar", KindStruct)
		require.NoError(t, g.AddItem(a))
		require.NoError(t, g.AddItem(b))

		require.NoError(t, g.AddEdge(Edge{Kind: EdgeDependsOn, Source: a.ID(), Target: "HashMap", External: true}))
		require.NoError(t, g.AddEdge(Edge{Kind: EdgeDependsOn, Source: b.ID(), Target: "HashMap", External: true}))

		assert.Len(t, g.Edges, 2)
		assert.Equal(t, []string{"HashMap"}, g.Externals)
		assert.Equal(t, 1, g.Summary.ExternalRefs)
	})

	t.Run("external flag is part of the edge identity", func(t *testing.T) {
		edge := Edge{Kind: EdgeDependsOn, Source: "src/a.rs#struct#Foo", Target: "Bar"}
		external := edge
		external.External = true

		assert.NotEqual(t, edge.Key(), external.Key())
	})

	t.Run("implements edges update the summary", func(t *testing.T) {
		g := NewGraph(RepositoryRef{})
		item := newTestItem("src/a.rs", "Foo", KindStruct)
		require.NoError(t, g.AddItem(item))

		require.NoError(t, g.AddEdge(Edge{Kind: EdgeImplements, Source: item.ID(), Target: "Display", External: true}))

		assert.Equal(t, 1, g.Summary.Implementations)
	})
}

func TestGraph_AddFeature(t *testing.T) {
	g := NewGraph(RepositoryRef{})

	g.AddFeature("tls")
	g.AddFeature("metrics")
	g.AddFeature("tls")

	assert.Equal(t, []string{"tls", "metrics"}, g.Features)
}

func TestGraph_EdgesFrom(t *testing.T) {
	g := NewGraph(RepositoryRef{})
	a := newTestItem("src/a.rs", "Foo", KindStruct)
	b := newTestItem("src/b.rs", "Bar", KindStruct)
	require.NoError(t, g.AddItem(a))
	require.NoError(t, g.AddItem(b))
	require.NoError(t, g.AddEdge(Edge{Kind: EdgeDependsOn, Source: a.ID(), Target: b.ID()}))
	require.NoError(t, g.AddEdge(Edge{Kind: EdgeDependsOn, Source: a.ID(), Target: "Vec", External: true}))

	edges := g.EdgesFrom(a.ID())

	require.Len(t, edges, 2)
	assert.Equal(t, b.ID(), edges[0].Target)
	assert.Equal(t, "Vec", edges[1].Target)
	assert.Empty(t, g.EdgesFrom(b.ID()))
}
