package domain

import "fmt"

// Warning is a non-fatal problem recorded during analysis, such as a
// skipped directory or an unparseable file. The final report always
// carries the warnings list; an empty list means the traversal was
// complete.
type Warning struct {
	// Path is the repository-relative path the warning concerns.
	Path string

	// Message describes what went wrong.
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Summary holds the aggregate counters of a completed analysis.
type Summary struct {
	// TotalFiles is the number of files the scanner yielded.
	TotalFiles int

	// FilesByLanguage counts yielded files per detected language.
	FilesByLanguage map[string]int

	// ItemsByKind counts items per kind.
	ItemsByKind map[ItemKind]int

	// ItemsByFile counts items per defining file.
	ItemsByFile map[string]int

	// Implementations is the number of implements relationships.
	Implementations int

	// ExternalRefs is the number of distinct external placeholders.
	ExternalRefs int
}

// Graph is the complete analysis result: every parsed item, every
// relationship between them, and the run's summary counters. It is
// built once by the analysis engine and immutable afterwards; the
// exporter shares it by read-only reference.
type Graph struct {
	// Repo identifies the analysed repository.
	Repo RepositoryRef

	// Files are the analysed files in scanner traversal order.
	Files []SourceFile

	// Items are all parsed declarations, in file order then source
	// order within a file.
	Items []*Item

	// Edges are the deduplicated relationship edges.
	Edges []Edge

	// Externals are the distinct unresolved names referenced by the
	// items, in first-reference order.
	Externals []string

	// Features are the distinct cfg feature gate names seen in the
	// sources, in first-occurrence order.
	Features []string

	// Summary holds the aggregate counters.
	Summary Summary

	// Warnings are the non-fatal problems encountered.
	Warnings []Warning

	itemIndex map[string]*Item
	edgeIndex map[string]struct{}
	externals map[string]struct{}
	features  map[string]struct{}
}

// NewGraph creates an empty graph for the given repository.
func NewGraph(repo RepositoryRef) *Graph {
	return &Graph{
		Repo: repo,
		Summary: Summary{
			FilesByLanguage: make(map[string]int),
			ItemsByKind:     make(map[ItemKind]int),
			ItemsByFile:     make(map[string]int),
		},
		itemIndex: make(map[string]*Item),
		edgeIndex: make(map[string]struct{}),
		externals: make(map[string]struct{}),
		features:  make(map[string]struct{}),
	}
}

// AddItem registers a parsed item. A duplicate identity (same file,
// kind, qualified name) is a contract violation between the scanner
// and the engine, surfaced as ErrInvariantViolation.
func (g *Graph) AddItem(item *Item) error {
	id := item.ID()
	if _, exists := g.itemIndex[id]; exists {
		return fmt.Errorf("%w: duplicate item %s", ErrInvariantViolation, id)
	}
	g.itemIndex[id] = item
	g.Items = append(g.Items, item)
	g.Summary.ItemsByKind[item.Kind]++
	g.Summary.ItemsByFile[item.File]++
	return nil
}

// Item returns the item with the given ID, or nil.
func (g *Graph) Item(id string) *Item {
	return g.itemIndex[id]
}

// AddEdge inserts an edge with set semantics. The source must be a
// registered item; an unknown source is a contract violation. External
// targets are interned so repeated references to the same unresolved
// name share one placeholder.
func (g *Graph) AddEdge(edge Edge) error {
	if _, ok := g.itemIndex[edge.Source]; !ok {
		return fmt.Errorf("%w: edge source %q is not an item", ErrInvariantViolation, edge.Source)
	}
	if !edge.External {
		if _, ok := g.itemIndex[edge.Target]; !ok {
			return fmt.Errorf("%w: edge target %q is not an item", ErrInvariantViolation, edge.Target)
		}
	}
	if _, dup := g.edgeIndex[edge.Key()]; dup {
		return nil
	}
	g.edgeIndex[edge.Key()] = struct{}{}
	g.Edges = append(g.Edges, edge)

	if edge.External {
		if _, seen := g.externals[edge.Target]; !seen {
			g.externals[edge.Target] = struct{}{}
			g.Externals = append(g.Externals, edge.Target)
			g.Summary.ExternalRefs++
		}
	}
	if edge.Kind == EdgeImplements {
		g.Summary.Implementations++
	}
	return nil
}

// AddFeature interns a cfg feature gate name; repeats are kept once.
func (g *Graph) AddFeature(name string) {
	if _, seen := g.features[name]; seen {
		return
	}
	g.features[name] = struct{}{}
	g.Features = append(g.Features, name)
}

// AddWarning records a non-fatal problem.
func (g *Graph) AddWarning(path, message string) {
	g.Warnings = append(g.Warnings, Warning{Path: path, Message: message})
}

// EdgesFrom returns the outbound edges of an item, in insertion order.
func (g *Graph) EdgesFrom(itemID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == itemID {
			out = append(out, e)
		}
	}
	return out
}
