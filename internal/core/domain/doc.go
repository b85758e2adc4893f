// Package domain defines the core business entities for repolens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepositoryRef: The immutable identity of an analysis target
//   - SourceFile: A fetched source file with detected language
//   - Item: A parsed declaration (type, trait, function, module, ...)
//   - Edge: A directed relationship between items
//   - Graph: The complete analysis result handed to the exporter
//   - Chunk: A size-bounded segment of the rendered report
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
