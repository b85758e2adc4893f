// Package output writes the analysis artifacts to disk, one directory
// per analysed repository:
//
//	<dir>/<repo>/analysis.json        structured report
//	<dir>/<repo>/chunks/chunk_N.txt   size-bounded text chunks
//	<dir>/<repo>/complete_analysis.txt report + chunks in one file
//	<dir>/<repo>/README.md            format description
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driven"
	"github.com/custodia-labs/repolens/internal/logger"
)

// DefaultBaseDir is the artifact directory used when none is given.
const DefaultBaseDir = "output"

// Ensure Writer implements the interface.
var _ driven.ReportWriter = (*Writer)(nil)

// Writer persists analysis artifacts under a per-repository directory.
type Writer struct {
	dir string
}

// NewWriter creates the repository's artifact directory under baseDir
// and returns a writer rooted there.
func NewWriter(baseDir string, repo domain.RepositoryRef) (*Writer, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	dir := filepath.Join(baseDir, repo.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the repository's artifact directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteReport writes analysis.json.
func (w *Writer) WriteReport(report []byte) error {
	path := filepath.Join(w.dir, "analysis.json")
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Debug("wrote %s (%d bytes)", path, len(report))
	return nil
}

// WriteChunks writes chunks/chunk_N.txt, one file per chunk in index
// order. A stale chunks directory from a previous run is replaced.
func (w *Writer) WriteChunks(chunks []domain.Chunk) error {
	chunksDir := filepath.Join(w.dir, "chunks")
	if err := os.RemoveAll(chunksDir); err != nil {
		return fmt.Errorf("clear chunks directory: %w", err)
	}
	if err := os.MkdirAll(chunksDir, 0o755); err != nil {
		return fmt.Errorf("create chunks directory: %w", err)
	}

	for _, chunk := range chunks {
		path := filepath.Join(chunksDir, fmt.Sprintf("chunk_%d.txt", chunk.Index))
		if err := os.WriteFile(path, []byte(chunk.Content), 0o644); err != nil {
			return fmt.Errorf("write chunk %d: %w", chunk.Index, err)
		}
	}
	logger.Debug("wrote %d chunk files to %s", len(chunks), chunksDir)
	return nil
}

// WriteCombined writes complete_analysis.txt, the report followed by
// the full chunk text, and refreshes the README describing the layout.
func (w *Writer) WriteCombined(text string) error {
	report, err := os.ReadFile(filepath.Join(w.dir, "analysis.json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read report for combined output: %w", err)
	}

	var combined strings.Builder
	combined.WriteString("\n<document>\n<source>analysis.json</source>\n<document_content>\n")
	combined.Write(report)
	combined.WriteString("\n</document_content>\n</document>\n")
	combined.WriteString(text)

	path := filepath.Join(w.dir, "complete_analysis.txt")
	if err := os.WriteFile(path, []byte(combined.String()), 0o644); err != nil {
		return fmt.Errorf("write combined output: %w", err)
	}

	if err := os.WriteFile(filepath.Join(w.dir, "README.md"), []byte(readmeText), 0o644); err != nil {
		return fmt.Errorf("write readme: %w", err)
	}
	return nil
}

const readmeText = `# Repository Analysis Output

This directory contains the analysis results for the repository.

## Files
- ` + "`complete_analysis.txt`" + `: single file containing everything, ready to paste into an LLM conversation
- ` + "`analysis.json`" + `: structured analysis report
- ` + "`chunks/`" + `: the report text split into size-bounded chunks

## Format
Sections are wrapped in XML-style tags:

` + "```" + `
<document>
<source>filename</source>
<document_content>
...
</document_content>
</document>
` + "```" + `

Concatenating the chunk files in numeric order reproduces the full
report text.
`
