package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repolens/internal/analysis"
	"github.com/custodia-labs/repolens/internal/core/domain"
)

func buildGraph(t *testing.T) *domain.Graph {
	t.Helper()
	repo := domain.RepositoryRef{Host: "github.com", Owner: "octo", Name: "demo", Ref: "main"}
	files := []domain.SourceFile{
		{
			Path:     "a.rs",
			Language: "rust",
			Order:    0,
			Content: []byte(`pub trait Greeter {
    fn greet(&self) -> String;
}
`),
		},
		{
			Path:     "b.rs",
			Language: "rust",
			Order:    1,
			Content: []byte(`pub struct Person {
    pal: Friend,
}

impl Greeter for Person {
    fn greet(&self) -> String {
        unimplemented!()
    }
}

#[cfg(feature = "async")]
pub fn greet_async() {}
`),
		},
	}
	graph, err := analysis.Analyze(repo, files)
	require.NoError(t, err)
	graph.AddWarning("skipped/dir", "skipping inaccessible directory")
	return graph
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(buildGraph(t))

	t.Run("files keep traversal order", func(t *testing.T) {
		require.Len(t, doc.Files, 2)
		assert.Equal(t, "a.rs", doc.Files[0].Path)
		assert.Equal(t, "b.rs", doc.Files[1].Path)
	})

	t.Run("items carry relationships", func(t *testing.T) {
		require.NotEmpty(t, doc.Files[1].Items)
		person := doc.Files[1].Items[0]
		assert.Equal(t, "struct", person.Kind)
		assert.Equal(t, "Person", person.QualifiedName)
		assert.Equal(t, []string{"Greeter"}, person.Implements)

		var kinds []string
		for _, e := range person.Edges {
			kinds = append(kinds, e.Kind)
		}
		assert.Contains(t, kinds, "implements")
		assert.Contains(t, kinds, "depends_on")
	})

	t.Run("summary and warnings are carried", func(t *testing.T) {
		assert.Equal(t, 2, doc.Summary.TotalFiles)
		assert.Equal(t, 1, doc.Summary.Implementations)
		assert.Equal(t, "octo/demo", doc.Repository)
		assert.Equal(t, "main", doc.Ref)
		require.Len(t, doc.Warnings, 1)
		assert.Contains(t, doc.Warnings[0], "skipped/dir")
	})

	t.Run("feature gates are carried", func(t *testing.T) {
		assert.Equal(t, []string{"async"}, doc.Features)
	})

	t.Run("run id is assigned", func(t *testing.T) {
		assert.NotEmpty(t, doc.RunID)
	})
}

func TestRenderText(t *testing.T) {
	doc := BuildDocument(buildGraph(t))
	text := RenderText(doc)

	t.Run("wraps each file in document delimiters", func(t *testing.T) {
		assert.Contains(t, text, "<document>\n<source>a.rs</source>\n<document_content>\n")
		assert.Contains(t, text, "<document>\n<source>b.rs</source>\n<document_content>\n")
		assert.Equal(t, strings.Count(text, "<document>"), strings.Count(text, "</document>"))
	})

	t.Run("renders item records", func(t *testing.T) {
		assert.Contains(t, text, "[trait] Greeter (public)")
		assert.Contains(t, text, "[struct] Person (public)")
		assert.Contains(t, text, "implements: Greeter")
		assert.Contains(t, text, "Friend (external)")
	})

	t.Run("ends with the summary section", func(t *testing.T) {
		assert.Contains(t, text, "<source>summary</source>")
		assert.Contains(t, text, "repository: octo/demo")
		assert.Contains(t, text, "features: async")
		assert.Contains(t, text, "warnings:")
	})

	t.Run("rendering is deterministic", func(t *testing.T) {
		assert.Equal(t, text, RenderText(doc))
	})
}

func TestSplitChunks(t *testing.T) {
	t.Run("concatenation reproduces the flat text", func(t *testing.T) {
		doc := BuildDocument(buildGraph(t))
		blocks := RenderBlocks(doc)

		chunks := SplitChunks(blocks, 64)
		require.NotEmpty(t, chunks)

		var joined strings.Builder
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Index)
			assert.NotEmpty(t, chunk.ID)
			joined.WriteString(chunk.Content)
		}
		assert.Equal(t, RenderText(doc), joined.String())
	})

	t.Run("respects the byte limit between blocks", func(t *testing.T) {
		blocks := []string{
			strings.Repeat("a", 30),
			strings.Repeat("b", 30),
			strings.Repeat("c", 30),
		}

		chunks := SplitChunks(blocks, 64)

		require.Len(t, chunks, 2)
		assert.Equal(t, 60, chunks[0].Size())
		assert.Equal(t, 30, chunks[1].Size())
	})

	t.Run("a block larger than the limit becomes its own chunk", func(t *testing.T) {
		blocks := []string{
			strings.Repeat("a", 10),
			strings.Repeat("b", 200),
			strings.Repeat("c", 10),
		}

		chunks := SplitChunks(blocks, 64)

		require.Len(t, chunks, 3)
		assert.Equal(t, 10, chunks[0].Size())
		assert.Equal(t, 200, chunks[1].Size(), "oversized block is never split")
		assert.Equal(t, 10, chunks[2].Size())
	})

	t.Run("empty input yields no chunks", func(t *testing.T) {
		assert.Empty(t, SplitChunks(nil, 64))
	})

	t.Run("zero limit falls back to the default", func(t *testing.T) {
		chunks := SplitChunks([]string{"hello"}, 0)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0].Content)
	})
}
