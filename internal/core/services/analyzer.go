package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/repolens/internal/analysis"
	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driven"
	"github.com/custodia-labs/repolens/internal/core/ports/driving"
	"github.com/custodia-labs/repolens/internal/export"
	"github.com/custodia-labs/repolens/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.Analyzer = (*AnalysisService)(nil)

// AnalysisService coordinates one analysis run: drain the collector,
// build the graph, render the report and its chunks. Skippable fetch
// problems surface as warnings on the graph; only an unreadable root or
// cancellation fails the run.
type AnalysisService struct {
	collector     driven.SourceCollector
	registry      *analysis.Registry
	chunkMaxBytes int
}

// ServiceOption configures an AnalysisService.
type ServiceOption func(*AnalysisService)

// WithChunkMaxBytes sets the chunk size limit.
func WithChunkMaxBytes(n int) ServiceOption {
	return func(s *AnalysisService) {
		if n > 0 {
			s.chunkMaxBytes = n
		}
	}
}

// WithRegistry replaces the default parser registry.
func WithRegistry(r *analysis.Registry) ServiceOption {
	return func(s *AnalysisService) {
		if r != nil {
			s.registry = r
		}
	}
}

// NewAnalysisService creates the orchestrator over a source collector.
func NewAnalysisService(collector driven.SourceCollector, opts ...ServiceOption) *AnalysisService {
	s := &AnalysisService{
		collector:     collector,
		registry:      analysis.NewRegistry(),
		chunkMaxBytes: export.DefaultChunkMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline for one repository.
func (s *AnalysisService) Analyze(
	ctx context.Context, repo domain.RepositoryRef,
) (*driving.AnalysisResult, error) {
	logger.Info("Analyzing %s/%s", repo.Owner, repo.Name)

	filesCh, errsCh := s.collector.Collect(ctx, repo, "")
	var files []domain.SourceFile
	for file := range filesCh {
		files = append(files, file)
	}
	if err := <-errsCh; err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analysis cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("scan repository: %w", err)
	}
	logger.Info("Collected %d source files", len(files))

	graph, err := analysis.Build(repo, files, s.registry)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	for _, w := range s.collector.Warnings() {
		graph.AddWarning(w.Path, w.Message)
	}
	logger.Info("Graph built: %d items, %d edges, %d warnings",
		len(graph.Items), len(graph.Edges), len(graph.Warnings))

	doc := export.BuildDocument(graph)
	report, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}

	blocks := export.RenderBlocks(doc)
	return &driving.AnalysisResult{
		Graph:  graph,
		Report: report,
		Text:   strings.Join(blocks, ""),
		Chunks: export.SplitChunks(blocks, s.chunkMaxBytes),
	}, nil
}
