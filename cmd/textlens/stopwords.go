package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/stoplist"
)

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords",
	Short: "Show or replace the stop-word list",
}

var stopwordsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stop words currently in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := loadComponents()
		if err != nil {
			return err
		}
		for _, w := range comp.StopWords.Words().All() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), w); err != nil {
				return err
			}
		}
		return nil
	},
}

var stopwordsSetCmd = &cobra.Command{
	Use:   "set <comma-delimited-words>",
	Short: "Replace the stop-word list in the config file",
	Long: `Set replaces the stop-word list and writes it to the config file in use,
creating ./textlens.yaml when there is none. An empty string clears the list.

The whole list is stored under "stopwords"; any stoplist_file in the config
file is cleared so that its terms are not merged back in. Only these two keys
are written; other settings in the file are kept as they are.`,
	Args: exactArgs(1, "stopwords set <comma-delimited-words>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		words := stoplist.NewHolder(raw).Words()

		path := configPath(cmd)
		if err := saveStopWords(path, raw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d stop words saved to %s\n", len(words), path)
		return nil
	},
}

func init() {
	stopwordsCmd.AddCommand(stopwordsShowCmd, stopwordsSetCmd)
	rootCmd.AddCommand(stopwordsCmd)
}

// configPath is the file stopwords set writes to: --config, else the file
// viper found, else ./textlens.yaml.
func configPath(cmd *cobra.Command) string {
	if f, _ := cmd.Flags().GetString("config"); strings.TrimSpace(f) != "" {
		return f
	}
	if f := viper.ConfigFileUsed(); strings.TrimSpace(f) != "" {
		return f
	}
	return "textlens.yaml"
}

// saveStopWords rewrites the stop-word keys of the config file at path. It
// reads the file into its own viper instance, so flag and environment
// values of this run never reach the file.
func saveStopWords(path, raw string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	v.Set("stopwords", raw)
	v.Set("stoplist_file", "")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
