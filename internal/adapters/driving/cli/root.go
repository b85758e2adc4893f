// Package cli implements the repolens command-line interface using
// cobra. Commands live in their own files and register themselves with
// the root command in init().
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/repolens/internal/logger"
)

var (
	version = "dev"

	verboseFlag   bool
	configDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "repolens",
	Short: "Static analysis reports for GitHub repositories",
	Long: `repolens fetches a repository tree over the GitHub API, runs a
lightweight static analysis of its source files and writes a structured
report plus size-bounded text chunks for LLM consumption.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "settings directory (default ~/.repolens)")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
