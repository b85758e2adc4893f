// Package export turns an analysis graph into its two consumable
// forms: a structured document for JSON serialization and a flat text
// rendering split into byte-bounded chunks for LLM consumption.
//
// Rendering is deterministic: the same graph always produces the same
// document, text and chunk boundaries. Concatenating the chunks in
// index order reproduces the flat text byte for byte.
package export
