// Package main provides the bibextract CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/config"
	"github.com/gautierdag/bibextract/internal/survey"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	paperIDs   []string
	outputPath string
	bibPath    string
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, survey.ErrNoPaperIDs) {
			os.Exit(ExitUsageError)
		}
		var cfgErr *configError
		if errors.As(err, &cfgErr) {
			os.Exit(ExitConfigError)
		}
		os.Exit(ExitError)
	}
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "bibextract",
	Short: "Extract related-work surveys and verified bibliographies from arXiv papers",
	Long: `bibextract downloads the LaTeX source of one or more arXiv papers,
extracts their related-work sections and reference lists, cross-checks
every reference against the arXiv and DBLP catalogs, and writes a
consolidated survey with a deduplicated BibTeX bibliography.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&paperIDs, "paper-ids", "p", nil, "arXiv paper IDs (e.g. 2104.08653)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write survey text to this file (stdout if unset)")
	rootCmd.Flags().StringVarP(&bibPath, "bibtex", "b", "", "Write BibTeX to this file (stdout if unset)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Settings file (YAML)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Version = Version
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Pick up env overrides from a .env file when present.
	_ = godotenv.Load()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return &configError{err}
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pipeline, err := survey.NewPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer pipeline.Close()

	surveyText, bibtex, err := pipeline.Extract(cmd.Context(), paperIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if err := writeArtifact(outputPath, surveyText); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := writeArtifact(bibPath, bibtex); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

// writeArtifact writes content to a file, or to stdout when no path is set.
func writeArtifact(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
