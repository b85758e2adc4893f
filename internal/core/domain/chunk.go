package domain

// Chunk is one size-bounded segment of the rendered report text.
// Chunks are derived, disposable artifacts: regenerating them from the
// same graph and size limit yields the identical sequence.
//
// Concatenating a chunk sequence in Index order reproduces the flat
// report text exactly. A chunk may exceed the configured maximum when
// a single item block alone is larger than the limit; blocks are never
// split across chunks.
type Chunk struct {
	// ID is a unique identifier for the chunk.
	ID string

	// Index is the zero-based emission order.
	Index int

	// Content is the chunk text.
	Content string
}

// Size returns the chunk's content length in bytes.
func (c Chunk) Size() int {
	return len(c.Content)
}
