package domain

// EntryKind distinguishes files from directories in a listing.
type EntryKind string

const (
	// EntryFile is a regular file entry.
	EntryFile EntryKind = "file"

	// EntryDir is a directory entry.
	EntryDir EntryKind = "dir"
)

// TreeEntry is one immediate entry of a directory listing.
// Entries are returned in the order the host API lists them.
type TreeEntry struct {
	// Name is the entry's base name.
	Name string

	// Path is the slash-separated path relative to the repository root.
	Path string

	// Kind is file or dir.
	Kind EntryKind

	// Size is the file size in bytes; zero for directories.
	Size int64
}

// SourceFile is a fetched source file handed from the scanner to the
// analysis engine. It is immutable once yielded.
type SourceFile struct {
	// Path is the slash-separated path relative to the repository root.
	// Unique within one RepositoryRef.
	Path string

	// Size is the content length in bytes as reported by the listing.
	Size int64

	// Content is the decoded raw file content.
	Content []byte

	// Language is the detected source language tag (e.g., "rust", "go").
	Language string

	// Order is the file's position in the scanner's depth-first
	// traversal. The engine sorts by it so concurrent fetches cannot
	// perturb downstream ordering.
	Order int
}
