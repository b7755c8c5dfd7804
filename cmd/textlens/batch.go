package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/textlens/internal/corpus"
	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/maintenance"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Add every document in a JSON Lines file",
	Long: `Import reads one JSON object per line with "filename", "content_type" and
"text" fields and stores each as a document. Malformed lines are skipped.`,
	Args: exactArgs(1, "import <file.jsonl>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := corpus.LoadFromJSONL(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			added := make([]store.Document, 0, len(items))
			for _, it := range items {
				d, err := e.AddDocument(ctx, it.Filename, it.ContentType, []byte(it.Text))
				if err != nil {
					slog.Warn("import skipped", slog.String("filename", it.Filename), slog.Any("error", err))
					continue
				}
				added = append(added, d)
			}
			return printJSON(cmd.OutOrStdout(), added)
		})
	},
}

var reextractCmd = &cobra.Command{
	Use:   "reextract",
	Short: "Re-run extraction over every stored document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, _ := cmd.Flags().GetStringSlice("tags")
		tags, err := patterns.ParseTags(names)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			r := &maintenance.Reextractor{Engine: e, Tags: tags, Logger: slog.Default()}
			res, err := r.Run(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	reextractCmd.Flags().StringSlice("tags", nil, "comma-separated pattern tags (default: all)")

	rootCmd.AddCommand(importCmd, reextractCmd)
}
