package driven

import (
	"context"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// RepoClient is read-only access to a remote repository tree.
//
// Implementations own the rate-limit and retry protocol: callers see a
// blocking call that either returns a result or a classified error,
// never a raw quota response. Both operations are idempotent and
// side-effect-free on the target.
type RepoClient interface {
	// ListDirectory returns the immediate entries at path for the
	// given revision, in the order the host API lists them.
	// Paginated listings are concatenated transparently.
	ListDirectory(ctx context.Context, repo domain.RepositoryRef, path string) ([]domain.TreeEntry, error)

	// FetchFile returns the decoded content of a single file.
	FetchFile(ctx context.Context, repo domain.RepositoryRef, path string) ([]byte, error)
}

// TokenProvider supplies the bearer credential attached to API calls.
// Returning an empty token is valid and simply yields the
// unauthenticated quota ceiling.
type TokenProvider interface {
	// GetToken returns the access token, or empty for anonymous access.
	GetToken(ctx context.Context) (string, error)
}
