package export

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// DefaultChunkMaxBytes is the default chunk size limit.
const DefaultChunkMaxBytes = 256 * 1024

// RenderBlocks renders the document as a sequence of text blocks, one
// file header, one per item record, one file footer. Blocks are the
// chunker's unit: chunk boundaries fall only between blocks, so an item
// record is never split.
func RenderBlocks(doc *Document) []string {
	var blocks []string
	for _, file := range doc.Files {
		var header strings.Builder
		fmt.Fprintf(&header, "\n<document>\n<source>%s</source>\n<document_content>\n", file.Path)
		fmt.Fprintf(&header, "language: %s\nitems: %d\n", file.Language, len(file.Items))
		blocks = append(blocks, header.String())

		for _, item := range file.Items {
			blocks = append(blocks, renderItem(item))
		}

		blocks = append(blocks, "</document_content>\n</document>\n")
	}

	if doc.Summary.TotalFiles > 0 || len(doc.Warnings) > 0 {
		blocks = append(blocks, renderSummary(doc))
	}
	return blocks
}

// RenderText returns the full flat report text.
func RenderText(doc *Document) string {
	return strings.Join(RenderBlocks(doc), "")
}

func renderItem(item ItemRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] %s (%s) lines %d-%d\n",
		item.Kind, item.QualifiedName, item.Visibility, item.StartLine, item.EndLine)
	if item.Signature != "" {
		fmt.Fprintf(&b, "  signature: %s\n", item.Signature)
	}
	if len(item.Implements) > 0 {
		fmt.Fprintf(&b, "  implements: %s\n", strings.Join(item.Implements, ", "))
	}
	for _, edge := range item.Edges {
		marker := ""
		if edge.External {
			marker = " (external)"
		}
		fmt.Fprintf(&b, "  %s: %s%s\n", edge.Kind, edge.Target, marker)
	}
	return b.String()
}

func renderSummary(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n<document>\n<source>summary</source>\n<document_content>\n")
	fmt.Fprintf(&b, "repository: %s\n", doc.Repository)
	if doc.Ref != "" {
		fmt.Fprintf(&b, "ref: %s\n", doc.Ref)
	}
	fmt.Fprintf(&b, "files: %d\nitems: %d\nimplementations: %d\nexternal refs: %d\n",
		doc.Summary.TotalFiles, doc.Summary.TotalItems,
		doc.Summary.Implementations, doc.Summary.ExternalRefs)
	if len(doc.Features) > 0 {
		fmt.Fprintf(&b, "features: %s\n", strings.Join(doc.Features, ", "))
	}
	if len(doc.Warnings) > 0 {
		fmt.Fprintf(&b, "warnings:\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	fmt.Fprintf(&b, "</document_content>\n</document>\n")
	return b.String()
}

// SplitChunks packs blocks into chunks of at most maxBytes, greedily
// and in order. A single block larger than maxBytes becomes its own
// oversized chunk; blocks are never split, so concatenating the chunks
// reproduces the joined blocks exactly.
func SplitChunks(blocks []string, maxBytes int) []domain.Chunk {
	if maxBytes <= 0 {
		maxBytes = DefaultChunkMaxBytes
	}

	var chunks []domain.Chunk
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:      uuid.New().String(),
			Index:   len(chunks),
			Content: current.String(),
		})
		current.Reset()
	}

	for _, block := range blocks {
		if block == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(block) > maxBytes {
			flush()
		}
		current.WriteString(block)
		if current.Len() >= maxBytes {
			flush()
		}
	}
	flush()

	return chunks
}
