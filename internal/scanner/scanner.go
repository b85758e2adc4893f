// Package scanner walks a remote repository tree via the RepoClient
// port and yields decoded source files for analysis.
//
// The traversal is depth-first and deterministic: entries of each
// directory are visited in the order the client lists them. File
// contents are fetched with bounded concurrency behind the walk, but
// files are always yielded in traversal order, so downstream ordering
// never depends on network timing.
//
// Fetch failures are contained here: an inaccessible directory or file
// is recorded as a warning and skipped, never fatal. Partial trees are
// acceptable output.
package scanner

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driven"
	"github.com/custodia-labs/repolens/internal/logger"
)

const (
	// DefaultMaxFileSize is the largest file the scanner fetches.
	// Larger files are skipped with a warning (also the contents API
	// ceiling for inline content).
	DefaultMaxFileSize = 1 << 20

	// DefaultFetchConcurrency bounds concurrent content fetches.
	DefaultFetchConcurrency = 4
)

// DefaultExclusions are the path patterns skipped without fetching:
// build output, vendored trees and VCS internals. Matched against both
// the entry's base name and its full path.
var DefaultExclusions = []string{
	".git", "target", "vendor", "node_modules", "dist", "build", "third_party",
}

// extLanguages maps file extensions to source language tags.
var extLanguages = map[string]string{
	".rs":    "rust",
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".rb":    "ruby",
	".kt":    "kotlin",
	".swift": "swift",
}

// DetectLanguage returns the language tag for a path, or empty when
// the file is not a recognised source file.
func DetectLanguage(p string) string {
	return extLanguages[strings.ToLower(path.Ext(p))]
}

// Scanner walks a repository tree and yields source files.
type Scanner struct {
	client      driven.RepoClient
	exclusions  []glob.Glob
	maxFileSize int64
	concurrency int

	mu       sync.Mutex
	warnings []domain.Warning
}

// Option configures a Scanner.
type Option func(*config)

type config struct {
	exclusions  []string
	maxFileSize int64
	concurrency int
}

// WithExclusions replaces the default exclusion patterns.
func WithExclusions(patterns []string) Option {
	return func(c *config) {
		c.exclusions = patterns
	}
}

// WithMaxFileSize sets the largest file size the scanner fetches.
func WithMaxFileSize(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithFetchConcurrency bounds concurrent content fetches.
func WithFetchConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a scanner over the given client. Invalid exclusion
// patterns are a configuration error.
func New(client driven.RepoClient, opts ...Option) (*Scanner, error) {
	cfg := &config{
		exclusions:  DefaultExclusions,
		maxFileSize: DefaultMaxFileSize,
		concurrency: DefaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	compiled := make([]glob.Glob, 0, len(cfg.exclusions))
	for _, pattern := range cfg.exclusions {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclusion %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}

	return &Scanner{
		client:      client,
		exclusions:  compiled,
		maxFileSize: cfg.maxFileSize,
		concurrency: cfg.concurrency,
	}, nil
}

// Warnings returns the problems recorded during the last Collect.
// Valid once the files channel has closed.
func (s *Scanner) Warnings() []domain.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Scanner) warn(p, message string) {
	logger.Warn("scan %s: %s", p, message)
	s.mu.Lock()
	s.warnings = append(s.warnings, domain.Warning{Path: p, Message: message})
	s.mu.Unlock()
}

// excluded reports whether a path matches an exclusion pattern, by
// base name or full path.
func (s *Scanner) excluded(p string) bool {
	base := path.Base(p)
	for _, g := range s.exclusions {
		if g.Match(base) || g.Match(p) {
			return true
		}
	}
	return false
}

// fetchTask is one file queued for content fetch.
type fetchTask struct {
	entry domain.TreeEntry
	lang  string
	order int
}

// fetchResult carries a fetched file. A zero ok marks a hole left by a
// skipped fetch, keeping the ordered sequence contiguous.
type fetchResult struct {
	file domain.SourceFile
	ok   bool
}

// Collect walks the tree rooted at root and yields source files in
// traversal order. Both channels close when the walk finishes; the
// error channel carries at most one fatal error (an unreadable root or
// cancellation). Per-path failures become warnings instead.
//
// The sequence is lazy and finite; it is not restartable without
// re-issuing the fetches.
func (s *Scanner) Collect(
	ctx context.Context, repo domain.RepositoryRef, root string,
) (<-chan domain.SourceFile, <-chan error) {
	files := make(chan domain.SourceFile)
	errs := make(chan error, 1)

	s.mu.Lock()
	s.warnings = nil
	s.mu.Unlock()

	go func() {
		defer close(files)
		defer close(errs)

		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(s.concurrency)

		// The walker queues one slot per analysable file, in traversal
		// order; fetchers fill slots concurrently; the loop below
		// drains slots in queue order. Slot buffering keeps fetchers
		// from blocking on emission.
		pending := make(chan chan fetchResult, s.concurrency*2)
		walkDone := make(chan error, 1)

		go func() {
			defer close(pending)
			order := 0
			err := s.walk(gctx, repo, root, true, func(task fetchTask) {
				task.order = order
				order++
				slot := make(chan fetchResult, 1)
				select {
				case <-gctx.Done():
					return
				case pending <- slot:
				}
				group.Go(func() error {
					slot <- s.fetch(gctx, repo, task)
					return nil
				})
			})
			walkDone <- err
		}()

		for slot := range pending {
			var res fetchResult
			select {
			case <-ctx.Done():
				// Drain the walker so it can exit, then report.
				for range pending {
				}
				<-walkDone
				_ = group.Wait()
				errs <- ctx.Err()
				return
			case res = <-slot:
			}
			if !res.ok {
				continue
			}
			select {
			case <-ctx.Done():
				for range pending {
				}
				<-walkDone
				_ = group.Wait()
				errs <- ctx.Err()
				return
			case files <- res.file:
			}
		}

		walkErr := <-walkDone
		_ = group.Wait()

		switch {
		case ctx.Err() != nil:
			errs <- ctx.Err()
		case walkErr != nil:
			errs <- walkErr
		}
	}()

	return files, errs
}

// walk lists dir recursively, visiting entries in listing order and
// queueing a fetch task for every analysable file. Only the root
// listing may fail the walk; deeper failures downgrade to warnings.
func (s *Scanner) walk(
	ctx context.Context,
	repo domain.RepositoryRef,
	dir string,
	isRoot bool,
	queue func(fetchTask),
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	entries, err := s.client.ListDirectory(ctx, repo, dir)
	if err != nil {
		if isRoot || ctx.Err() != nil {
			return fmt.Errorf("list %q: %w", dir, err)
		}
		s.warn(dir, fmt.Sprintf("skipping inaccessible directory: %v", err))
		return nil
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.excluded(entry.Path) {
			logger.Debug("excluded: %s", entry.Path)
			continue
		}

		switch entry.Kind {
		case domain.EntryDir:
			if err := s.walk(ctx, repo, entry.Path, false, queue); err != nil {
				return err
			}

		case domain.EntryFile:
			lang := DetectLanguage(entry.Path)
			if lang == "" {
				continue
			}
			if entry.Size > s.maxFileSize {
				s.warn(entry.Path, fmt.Sprintf("skipping oversized file (%d bytes)", entry.Size))
				continue
			}
			queue(fetchTask{entry: entry, lang: lang})
		}
	}
	return nil
}

// fetch retrieves one file's content. Failures become warnings and a
// hole in the sequence.
func (s *Scanner) fetch(ctx context.Context, repo domain.RepositoryRef, task fetchTask) fetchResult {
	content, err := s.client.FetchFile(ctx, repo, task.entry.Path)
	if err != nil {
		if ctx.Err() == nil {
			s.warn(task.entry.Path, fmt.Sprintf("skipping unreadable file: %v", err))
		}
		return fetchResult{}
	}
	logger.Debug("fetched %s (%d bytes)", task.entry.Path, len(content))
	return fetchResult{
		file: domain.SourceFile{
			Path:     task.entry.Path,
			Size:     task.entry.Size,
			Content:  content,
			Language: task.lang,
			Order:    task.order,
		},
		ok: true,
	}
}
