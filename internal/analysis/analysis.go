package analysis

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/logger"
)

// ImplRecord is a trait implementation found while parsing: the type
// and trait are recorded by name, resolved later against the whole
// project.
type ImplRecord struct {
	// File is where the implementation was declared.
	File string

	// TypeName is the implementing type, as written.
	TypeName string

	// TraitName is the implemented trait, as written.
	TraitName string
}

// Containment links a module item to an item declared inside it. Both
// items belong to the same file.
type Containment struct {
	Module *domain.Item
	Child  *domain.Item
}

// FileResult is everything a parser extracts from one file.
type FileResult struct {
	Items       []*domain.Item
	Impls       []ImplRecord
	Containment []Containment

	// Features are the cfg feature gate names seen in the file, in
	// source order, duplicates included.
	Features []string
}

// Parser extracts declarations from a single source file.
type Parser interface {
	// Parse analyses the file content. Items appear in source order.
	Parse(file domain.SourceFile) (*FileResult, error)
}

// Registry maps language tags to parsers. Languages without a parser
// are fetched and counted but contribute no items.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a registry with the built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register("rust", NewRustParser())
	return r
}

// Register adds a parser for a language tag, replacing any previous one.
func (r *Registry) Register(language string, p Parser) {
	r.parsers[language] = p
}

// Get returns the parser for a language, or nil.
func (r *Registry) Get(language string) Parser {
	return r.parsers[language]
}

// Analyze parses every file with the default registry and builds the
// relationship graph. See [Build].
func Analyze(repo domain.RepositoryRef, files []domain.SourceFile) (*domain.Graph, error) {
	return Build(repo, files, NewRegistry())
}

// Build parses every file and assembles the graph: items indexed by
// identity, references resolved project-wide into depends_on edges,
// trait implementations into implements edges, module structure into
// contains edges. Unresolvable names become external placeholders, one
// per distinct raw name.
//
// A file whose parser fails contributes no items and a warning. A
// duplicate item identity means the same file was yielded twice and
// fails the build; within one file the parser keeps identities unique.
func Build(repo domain.RepositoryRef, files []domain.SourceFile, registry *Registry) (*domain.Graph, error) {
	ordered := make([]domain.SourceFile, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	graph := domain.NewGraph(repo)
	graph.Files = ordered
	graph.Summary.TotalFiles = len(ordered)

	var impls []ImplRecord
	var contains []Containment

	for _, file := range ordered {
		graph.Summary.FilesByLanguage[file.Language]++

		parser := registry.Get(file.Language)
		if parser == nil {
			continue
		}

		result, err := parser.Parse(file)
		if err != nil {
			logger.Warn("parse %s: %v", file.Path, err)
			graph.AddWarning(file.Path, fmt.Sprintf("parse failed: %v", err))
			continue
		}

		for _, item := range result.Items {
			if err := graph.AddItem(item); err != nil {
				return nil, err
			}
		}
		impls = append(impls, result.Impls...)
		contains = append(contains, result.Containment...)
		for _, feature := range result.Features {
			graph.AddFeature(feature)
		}
		logger.Debug("parsed %s: %d items", file.Path, len(result.Items))
	}

	resolver := newResolver(graph)

	for _, item := range graph.Items {
		for _, ref := range item.References {
			target := resolver.resolve(ref, item.File)
			if target != nil {
				if target.ID() == item.ID() {
					continue
				}
				if err := graph.AddEdge(domain.Edge{
					Kind:   domain.EdgeDependsOn,
					Source: item.ID(),
					Target: target.ID(),
				}); err != nil {
					return nil, err
				}
				continue
			}
			if err := graph.AddEdge(domain.Edge{
				Kind:     domain.EdgeDependsOn,
				Source:   item.ID(),
				Target:   ref,
				External: true,
			}); err != nil {
				return nil, err
			}
		}
	}

	for _, impl := range impls {
		typeItem := resolver.resolve(impl.TypeName, impl.File)
		if typeItem == nil || !typeItem.Kind.IsType() {
			continue
		}
		addImplementedTrait(typeItem, impl.TraitName)

		edge := domain.Edge{Kind: domain.EdgeImplements, Source: typeItem.ID()}
		if traitItem := resolver.resolve(impl.TraitName, impl.File); traitItem != nil && traitItem.Kind == domain.KindTrait {
			edge.Target = traitItem.ID()
		} else {
			edge.Target = impl.TraitName
			edge.External = true
		}
		if err := graph.AddEdge(edge); err != nil {
			return nil, err
		}
	}

	for _, c := range contains {
		if err := graph.AddEdge(domain.Edge{
			Kind:   domain.EdgeContains,
			Source: c.Module.ID(),
			Target: c.Child.ID(),
		}); err != nil {
			return nil, err
		}
	}

	return graph, nil
}

// addImplementedTrait inserts a trait name keeping the slice sorted and
// duplicate-free.
func addImplementedTrait(item *domain.Item, trait string) {
	i := sort.SearchStrings(item.Implements, trait)
	if i < len(item.Implements) && item.Implements[i] == trait {
		return
	}
	item.Implements = append(item.Implements, "")
	copy(item.Implements[i+1:], item.Implements[i:])
	item.Implements[i] = trait
}

// resolver answers "which item does this name mean" using two tables:
// fully qualified names and bare local names. Same-file declarations
// win over other files; remaining ties resolve to the earliest
// declaration, keeping resolution deterministic.
type resolver struct {
	byQualified map[string][]*domain.Item
	byName      map[string][]*domain.Item
}

func newResolver(graph *domain.Graph) *resolver {
	r := &resolver{
		byQualified: make(map[string][]*domain.Item),
		byName:      make(map[string][]*domain.Item),
	}
	for _, item := range graph.Items {
		r.byQualified[item.QualifiedName] = append(r.byQualified[item.QualifiedName], item)
		r.byName[item.Name] = append(r.byName[item.Name], item)
	}
	return r
}

// resolve maps a referenced name to an item, or nil when the name is
// external to the fetched tree.
func (r *resolver) resolve(name, fromFile string) *domain.Item {
	if candidates := r.byQualified[name]; len(candidates) > 0 {
		return pick(candidates, fromFile)
	}
	if candidates := r.byName[name]; len(candidates) > 0 {
		return pick(candidates, fromFile)
	}
	return nil
}

func pick(candidates []*domain.Item, fromFile string) *domain.Item {
	for _, c := range candidates {
		if c.File == fromFile {
			return c
		}
	}
	return candidates[0]
}
