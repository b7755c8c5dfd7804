package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
)

var addCmd = &cobra.Command{
	Use:   "add <file|->",
	Short: "Store a TXT or HTML document",
	Long: `Add reads a file (or standard input with "-") and stores it as a document.
HTML is reduced to its visible text. The content type is detected from the
file extension unless --type is given.`,
	Args: exactArgs(1, "add <file|->"),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			docs, err := e.ListDocuments(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), docs)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document's metadata",
	Args:  exactArgs(1, "show <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			d, ok, err := e.GetDocument(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("document %s: %w", args[0], internalerr.ErrNotFound)
			}
			if text, _ := cmd.Flags().GetBool("text"); text {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), d.RawText)
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document with its analysis and extraction",
	Args:  exactArgs(1, "delete <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			return e.DeleteDocument(ctx, args[0])
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <document-id>",
	Short: "Show a document with whatever has been derived from it",
	Args:  exactArgs(1, "stats <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			st, err := e.Stats(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newStatsView(st))
		})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <document-id>",
	Short: "List lifecycle events recorded for a document",
	Args:  exactArgs(1, "events <document-id>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
			evs, err := e.Events(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), evs)
		})
	},
}

func init() {
	addCmd.Flags().String("type", "", "content type: TXT or HTML (default: from extension)")
	addCmd.Flags().String("name", "", "filename to record (default: base name of the file)")
	showCmd.Flags().Bool("text", false, "print the extracted text instead of metadata")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, deleteCmd, statsCmd, eventsCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	path := args[0]
	body, err := readBody(cmd, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	contentType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(path)
		if path == "-" {
			name = "stdin.txt"
		}
	}

	return withEngine(cmd, func(ctx context.Context, e *textlens.Engine, _ config.Config) error {
		d, err := e.AddDocument(ctx, name, contentType, body)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), d)
	})
}
