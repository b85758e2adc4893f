package domain

import "fmt"

// ItemKind is the syntactic kind of a parsed declaration.
type ItemKind string

const (
	KindStruct    ItemKind = "struct"
	KindEnum      ItemKind = "enum"
	KindTrait     ItemKind = "trait"
	KindTypeAlias ItemKind = "typealias"
	KindFunction  ItemKind = "function"
	KindMethod    ItemKind = "method"
	KindModule    ItemKind = "module"
	KindConst     ItemKind = "const"
)

// IsType reports whether the kind declares a nameable type that can
// implement traits.
func (k ItemKind) IsType() bool {
	switch k {
	case KindStruct, KindEnum, KindTypeAlias:
		return true
	default:
		return false
	}
}

// Visibility is the declared visibility of an item.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityCrate   Visibility = "crate"
	VisibilityPrivate Visibility = "private"
)

// Item is a single parsed declaration. Items are created by the
// analysis engine while parsing one file and never mutated after the
// parse completes.
type Item struct {
	// Kind is the declaration kind.
	Kind ItemKind

	// Name is the local declared name.
	Name string

	// QualifiedName is the module path joined with the local name
	// (e.g., "api::client::Client").
	QualifiedName string

	// File is the defining file's repository-relative path.
	File string

	// StartLine and EndLine delimit the declaration (1-based,
	// inclusive). EndLine equals StartLine for single-line items.
	StartLine int
	EndLine   int

	// Visibility is the declared visibility.
	Visibility Visibility

	// Signature is the declaration's signature text, verbatim.
	Signature string

	// References are type names referenced by the item, as written
	// and unresolved. Sorted, duplicate-free.
	References []string

	// Implements are trait names this item declares an implementation
	// for. Only populated for type items. Sorted, duplicate-free.
	Implements []string
}

// ID returns the item's identity. No two items in a graph may share it.
func (i *Item) ID() string {
	return fmt.Sprintf("%s#%s#%s", i.File, i.Kind, i.QualifiedName)
}
