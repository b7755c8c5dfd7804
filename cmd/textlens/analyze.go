package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document-id>",
	Short: "Compute word statistics for a document",
	Long: `Analyze tokenizes a document, optionally drops stop words, and stores the
top words, first-letter counts, punctuation counts and word lengths.

A document can be analyzed once. Delete and re-add the document to analyze
it again.`,
	Args: exactArgs(1, "analyze <document-id>"),
	RunE: runAnalyze,
}

var analysisCmd = &cobra.Command{
	Use:   "analysis <document-id>",
	Short: "Show the stored analysis of a document",
	Args:  exactArgs(1, "analysis <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			a, ok, err := e.GetAnalysis(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("analysis for %s: %w", args[0], internalerr.ErrNotFound)
			}
			return printJSON(cmd.OutOrStdout(), newAnalysisView(a))
		})
	},
}

func init() {
	analyzeCmd.Flags().Int("top", 0, fmt.Sprintf("number of top words, 1..%d (default from config)", config.MaxTopN))
	analyzeCmd.Flags().Bool("exclude-stopwords", false, "drop configured stop words before counting")

	rootCmd.AddCommand(analyzeCmd, analysisCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")
	exclude, _ := cmd.Flags().GetBool("exclude-stopwords")

	return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, cfg config.Config) error {
		if !cmd.Flags().Changed("top") {
			top = cfg.DefaultTopN
		}
		if top > config.MaxTopN {
			return fmt.Errorf("--top %d exceeds %d: %w", top, config.MaxTopN, internalerr.ErrInvalidArgument)
		}
		a, err := e.CreateAnalysis(ctx, args[0], top, exclude)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), newAnalysisView(a))
	})
}
