package domain

import (
	"fmt"
	"strings"
)

// DefaultHost is the API host used when a reference does not name one.
const DefaultHost = "github.com"

// RepositoryRef is the immutable identity of an analysis target.
// It is created once when an analysis starts and never mutated.
type RepositoryRef struct {
	// Host is the repository hosting service (e.g., "github.com").
	Host string

	// Owner is the user or organisation that owns the repository.
	Owner string

	// Name is the repository name.
	Name string

	// Ref is the revision to analyse: a branch, tag or commit SHA.
	// Empty means the repository's default branch.
	Ref string
}

// String returns the canonical owner/name[@ref] form.
func (r RepositoryRef) String() string {
	if r.Ref == "" {
		return fmt.Sprintf("%s/%s", r.Owner, r.Name)
	}
	return fmt.Sprintf("%s/%s@%s", r.Owner, r.Name, r.Ref)
}

// ParseRepoRef parses a repository reference from user input.
//
// Accepted forms:
//
//	owner/name
//	owner/name@ref
//	https://github.com/owner/name
//	https://github.com/owner/name/tree/ref
//
// A malformed reference is an unrecoverable configuration error and
// returns ErrInvalidRepoRef.
func ParseRepoRef(input string) (RepositoryRef, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return RepositoryRef{}, fmt.Errorf("%w: empty reference", ErrInvalidRepoRef)
	}

	ref := RepositoryRef{Host: DefaultHost}

	// Strip URL scheme and host.
	if strings.Contains(s, "://") {
		parts := strings.SplitN(s, "://", 2)
		s = parts[1]
		segments := strings.Split(strings.Trim(s, "/"), "/")
		if len(segments) < 3 {
			return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, input)
		}
		ref.Host = segments[0]
		ref.Owner = segments[1]
		ref.Name = strings.TrimSuffix(segments[2], ".git")
		// URL form may carry /tree/<ref>.
		if len(segments) >= 5 && segments[3] == "tree" {
			ref.Ref = strings.Join(segments[4:], "/")
		}
	} else {
		if at := strings.LastIndex(s, "@"); at != -1 {
			ref.Ref = s[at+1:]
			s = s[:at]
		}
		segments := strings.Split(strings.Trim(s, "/"), "/")
		if len(segments) != 2 {
			return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, input)
		}
		ref.Owner = segments[0]
		ref.Name = strings.TrimSuffix(segments[1], ".git")
	}

	if ref.Owner == "" || ref.Name == "" {
		return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, input)
	}
	return ref, nil
}
