package domain

// EdgeKind is the kind of relationship an Edge records.
type EdgeKind string

const (
	// EdgeImplements links a type item to a trait it implements.
	EdgeImplements EdgeKind = "implements"

	// EdgeDependsOn links an item to another item or external name
	// it references.
	EdgeDependsOn EdgeKind = "depends_on"

	// EdgeContains links a module item to an item it contains.
	EdgeContains EdgeKind = "contains"
)

// Edge is a directed relationship between two items, or between an
// item and an external (unresolved) name.
//
// The source must always identify an Item present in the graph. The
// target identifies either an Item or an external placeholder; External
// is true in the latter case and Target then holds the raw referenced
// name. Edges have set semantics: inserting the same (source, target,
// kind) twice retains one edge.
type Edge struct {
	// Kind is the relationship kind.
	Kind EdgeKind

	// Source is the item ID of the edge's origin.
	Source string

	// Target is an item ID, or the raw name of an external reference
	// when External is true.
	Target string

	// External marks targets not resolvable within the fetched tree
	// (standard-library or third-party names).
	External bool
}

// Key returns the edge's set-identity. The external flag is part of
// the identity: item IDs contain '#' and raw Rust names cannot, but
// the key does not rely on that.
func (e Edge) Key() string {
	key := string(e.Kind) + "\x00" + e.Source + "\x00" + e.Target
	if e.External {
		key += "\x00external"
	}
	return key
}
