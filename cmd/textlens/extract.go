package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
)

var extractCmd = &cobra.Command{
	Use:   "extract <document-id>",
	Short: "Extract e-mails, phones, IPs and dates from a document",
	Long: `Extract runs the requested patterns over a document and stores the distinct
matches per tag, replacing any earlier extraction of the same document.

Tags: EMAIL, PHONE, IP, DATE (case-insensitive). Default: all of them.`,
	Args: exactArgs(1, "extract <document-id>"),
	RunE: runExtract,
}

var extractionCmd = &cobra.Command{
	Use:   "extraction <document-id>",
	Short: "Show or delete the stored extraction of a document",
	Args:  exactArgs(1, "extraction <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		del, _ := cmd.Flags().GetBool("delete")
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			if del {
				return e.DeleteExtraction(ctx, args[0])
			}
			x, ok, err := e.GetExtraction(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("extraction for %s: %w", args[0], internalerr.ErrNotFound)
			}
			return printJSON(cmd.OutOrStdout(), newExtractionView(x))
		})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches <document-id> <tag>",
	Short: "Print the stored matches of one tag, one per line",
	Args:  exactArgs(2, "matches <document-id> <tag>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := patterns.ParseTag(args[1])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			m, err := e.GetMatchesByTag(ctx, args[0], tag)
			if err != nil {
				return err
			}
			for _, s := range m {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	extractCmd.Flags().StringSlice("tags", nil, "comma-separated pattern tags (default: all)")
	extractionCmd.Flags().Bool("delete", false, "delete the extraction instead of showing it")

	rootCmd.AddCommand(extractCmd, extractionCmd, matchesCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("tags")

	tags := patterns.Tags()
	if len(names) > 0 {
		parsed, err := patterns.ParseTags(names)
		if err != nil {
			return fmt.Errorf("--tags %s: %w", strings.Join(names, ","), err)
		}
		tags = parsed
	}

	return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
		x, err := e.CreateExtraction(ctx, args[0], tags)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), newExtractionView(x))
	})
}
