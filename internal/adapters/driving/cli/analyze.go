package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repolens/internal/adapters/driven/auth"
	configfile "github.com/custodia-labs/repolens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repolens/internal/adapters/driven/output"
	"github.com/custodia-labs/repolens/internal/connectors/github"
	"github.com/custodia-labs/repolens/internal/core/domain"
	"github.com/custodia-labs/repolens/internal/core/ports/driven"
	"github.com/custodia-labs/repolens/internal/core/ports/driving"
	"github.com/custodia-labs/repolens/internal/core/services"
	"github.com/custodia-labs/repolens/internal/scanner"
)

var (
	outDirFlag        string
	chunkBytesFlag    int
	maxConcurrentFlag int
	retriesFlag       int
	excludeFlag       []string

	// Test seams. When nil, runAnalyze wires the real pipeline.
	analyzer     driving.Analyzer
	reportWriter driven.ReportWriter
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/repo[@ref] | URL>",
	Short: "Analyze a GitHub repository",
	Long: `Fetches the repository tree, analyses its source files and writes
the report artifacts to the output directory.

A GitHub token is read from the GITHUB_TOKEN environment variable when
present; without one the anonymous API quota applies.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outDirFlag, "out", "o", "", "output directory (default from settings)")
	analyzeCmd.Flags().IntVar(&chunkBytesFlag, "chunk-bytes", 0, "chunk size limit in bytes")
	analyzeCmd.Flags().IntVar(&maxConcurrentFlag, "max-concurrent", 0, "maximum concurrent API requests")
	analyzeCmd.Flags().IntVar(&retriesFlag, "retries", 0, "retry attempts for transient failures")
	analyzeCmd.Flags().StringArrayVar(&excludeFlag, "exclude", nil, "exclusion glob (repeatable, replaces defaults)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	repo, err := domain.ParseRepoRef(args[0])
	if err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	service := analyzer
	if service == nil {
		service, err = buildPipeline(settings)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Analyzing %s...\n", repo)
	result, err := service.Analyze(ctx, repo)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	writer := reportWriter
	if writer == nil {
		w, err := output.NewWriter(settings.OutputDir, repo)
		if err != nil {
			return err
		}
		defer func() { cmd.Printf("Artifacts written to %s\n", w.Dir()) }()
		writer = w
	}
	if err := writer.WriteReport(result.Report); err != nil {
		return err
	}
	if err := writer.WriteChunks(result.Chunks); err != nil {
		return err
	}
	if err := writer.WriteCombined(result.Text); err != nil {
		return err
	}

	summary := result.Graph.Summary
	cmd.Printf("Files analysed:  %d\n", summary.TotalFiles)
	cmd.Printf("Items found:     %d\n", len(result.Graph.Items))
	cmd.Printf("Relationships:   %d\n", len(result.Graph.Edges))
	cmd.Printf("Chunks written:  %d\n", len(result.Chunks))
	if n := len(result.Graph.Warnings); n > 0 {
		cmd.Printf("Warnings:        %d (see analysis.json)\n", n)
	}
	return nil
}

// loadSettings reads the persisted settings and applies flag overrides.
func loadSettings(cmd *cobra.Command) (configfile.Settings, error) {
	store, err := configfile.NewSettingsStore(configDirFlag)
	if err != nil {
		return configfile.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings := store.Settings()

	if cmd.Flags().Changed("out") {
		settings.OutputDir = outDirFlag
	}
	if cmd.Flags().Changed("chunk-bytes") {
		settings.ChunkMaxBytes = chunkBytesFlag
	}
	if cmd.Flags().Changed("max-concurrent") {
		settings.MaxConcurrentRequests = maxConcurrentFlag
	}
	if cmd.Flags().Changed("retries") {
		settings.RetryAttempts = retriesFlag
	}
	if cmd.Flags().Changed("exclude") {
		settings.ExclusionPatterns = excludeFlag
	}
	return settings, nil
}

// buildPipeline wires client, scanner and service from settings.
func buildPipeline(settings configfile.Settings) (driving.Analyzer, error) {
	client := github.NewClient(
		auth.NewEnvTokenProvider(),
		github.WithRetryAttempts(settings.RetryAttempts),
		github.WithMaxConcurrent(settings.MaxConcurrentRequests),
	)
	collector, err := scanner.New(
		client,
		scanner.WithExclusions(settings.ExclusionPatterns),
		scanner.WithFetchConcurrency(settings.MaxConcurrentRequests),
	)
	if err != nil {
		return nil, fmt.Errorf("configure scanner: %w", err)
	}
	return services.NewAnalysisService(
		collector,
		services.WithChunkMaxBytes(settings.ChunkMaxBytes),
	), nil
}
