package driven

import (
	"context"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// SourceCollector yields a repository's source files for analysis.
type SourceCollector interface {
	// Collect walks the tree rooted at root and yields source files in
	// traversal order. Both channels close when the walk finishes; the
	// error channel carries at most one fatal error. Per-path failures
	// are recorded as warnings instead.
	Collect(ctx context.Context, repo domain.RepositoryRef, root string) (<-chan domain.SourceFile, <-chan error)

	// Warnings returns the problems recorded during the last Collect.
	// Valid once the files channel has closed.
	Warnings() []domain.Warning
}
