// Package analysis turns fetched source files into a relationship
// graph. It is pure: no I/O, no goroutines, deterministic output for a
// given input.
//
// Parsing is per language through a registry. Parsers are lexical, not
// full grammars: they recover the declaration structure (types, traits,
// functions, modules) and the type names referenced around those
// declarations. Over-approximating references is acceptable; missing a
// declaration is not.
package analysis
