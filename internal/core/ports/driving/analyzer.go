package driving

import (
	"context"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// AnalysisResult is what a completed run hands back to the caller.
type AnalysisResult struct {
	// Graph is the immutable analysis graph, including warnings.
	Graph *domain.Graph

	// Report is the structured document serialization (JSON).
	Report []byte

	// Text is the flat rendered report.
	Text string

	// Chunks are the size-bounded segments of Text.
	Chunks []domain.Chunk
}

// Analyzer runs a complete analysis of one repository: fetch, parse,
// export. Cancellation of ctx stops the run and surfaces
// context.Canceled; a run that merely hit skippable fetch errors still
// succeeds and carries warnings in the graph.
type Analyzer interface {
	Analyze(ctx context.Context, repo domain.RepositoryRef) (*AnalysisResult, error)
}
