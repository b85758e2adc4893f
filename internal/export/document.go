package export

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// Document is the structured analysis report, shaped for JSON
// serialization by the output adapter.
type Document struct {
	RunID      string        `json:"run_id"`
	Repository string        `json:"repository"`
	Ref        string        `json:"ref,omitempty"`
	Files      []FileSection `json:"files"`
	Externals  []string      `json:"externals,omitempty"`
	Features   []string      `json:"features,omitempty"`
	Summary    SummaryRecord `json:"summary"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// FileSection groups the items of one analysed file, in source order.
type FileSection struct {
	Path     string       `json:"path"`
	Language string       `json:"language"`
	Size     int64        `json:"size"`
	Items    []ItemRecord `json:"items,omitempty"`
}

// ItemRecord is one declaration with its resolved relationships.
type ItemRecord struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	QualifiedName string       `json:"qualified_name"`
	Visibility    string       `json:"visibility"`
	StartLine     int          `json:"start_line"`
	EndLine       int          `json:"end_line"`
	Signature     string       `json:"signature"`
	Implements    []string     `json:"implements,omitempty"`
	Edges         []EdgeRecord `json:"edges,omitempty"`
}

// EdgeRecord is one outbound relationship of an item.
type EdgeRecord struct {
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	External bool   `json:"external,omitempty"`
}

// SummaryRecord carries the aggregate counters.
type SummaryRecord struct {
	TotalFiles      int            `json:"total_files"`
	TotalItems      int            `json:"total_items"`
	FilesByLanguage map[string]int `json:"files_by_language,omitempty"`
	ItemsByKind     map[string]int `json:"items_by_kind,omitempty"`
	Implementations int            `json:"implementations"`
	ExternalRefs    int            `json:"external_refs"`
}

// BuildDocument shapes a graph into the report document. Files keep
// their traversal order, items their source order.
func BuildDocument(graph *domain.Graph) *Document {
	doc := &Document{
		RunID:      uuid.New().String(),
		Repository: graph.Repo.Owner + "/" + graph.Repo.Name,
		Ref:        graph.Repo.Ref,
		Externals:  graph.Externals,
		Features:   graph.Features,
		Summary: SummaryRecord{
			TotalFiles:      graph.Summary.TotalFiles,
			TotalItems:      len(graph.Items),
			FilesByLanguage: graph.Summary.FilesByLanguage,
			ItemsByKind:     make(map[string]int, len(graph.Summary.ItemsByKind)),
			Implementations: graph.Summary.Implementations,
			ExternalRefs:    graph.Summary.ExternalRefs,
		},
	}
	for kind, n := range graph.Summary.ItemsByKind {
		doc.Summary.ItemsByKind[string(kind)] = n
	}
	for _, w := range graph.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}

	itemsByFile := make(map[string][]*domain.Item, len(graph.Files))
	for _, item := range graph.Items {
		itemsByFile[item.File] = append(itemsByFile[item.File], item)
	}

	for _, file := range graph.Files {
		section := FileSection{
			Path:     file.Path,
			Language: file.Language,
			Size:     file.Size,
		}
		for _, item := range itemsByFile[file.Path] {
			record := ItemRecord{
				Kind:          string(item.Kind),
				Name:          item.Name,
				QualifiedName: item.QualifiedName,
				Visibility:    string(item.Visibility),
				StartLine:     item.StartLine,
				EndLine:       item.EndLine,
				Signature:     item.Signature,
				Implements:    item.Implements,
			}
			for _, edge := range graph.EdgesFrom(item.ID()) {
				record.Edges = append(record.Edges, EdgeRecord{
					Kind:     string(edge.Kind),
					Target:   edge.Target,
					External: edge.External,
				})
			}
			section.Items = append(section.Items, record)
		}
		doc.Files = append(doc.Files, section)
	}

	return doc
}
