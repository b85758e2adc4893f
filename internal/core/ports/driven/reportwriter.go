package driven

import (
	"github.com/custodia-labs/repolens/internal/core/domain"
)

// ReportWriter persists the exported artifacts: the structured report,
// the flat text and the chunk files. Implementations decide the layout
// on disk; the core only hands them finished values.
type ReportWriter interface {
	// WriteReport persists the structured document serialization.
	WriteReport(report []byte) error

	// WriteChunks persists the ordered chunk sequence.
	WriteChunks(chunks []domain.Chunk) error

	// WriteCombined persists the single concatenated text document.
	WriteCombined(text string) error
}
