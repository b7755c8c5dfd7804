// Package main is the entry point for the textlens CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/textlens/pkg/textlens/config"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the textlens CLI.
var rootCmd = &cobra.Command{
	Use:   "textlens",
	Short: "Word statistics and pattern extraction for text documents",
	Long: `textlens stores plain-text and HTML documents, computes word frequency
and character statistics over them, and extracts e-mail addresses, phone
numbers, IPv4 addresses and dates.

Each document has at most one analysis. Extractions can be re-run and replace
the previous result.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./textlens.yaml or ~/.config/textlens/textlens.yaml)")
	pf.String("db", "", "SQLite database path, or :memory: (default "+config.DefaultDatabase+")")
	pf.String("stopwords", "", "comma-delimited stop words, overrides the config file")
	pf.String("stoplist-file", "", "YAML stoplist file with a terms list")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.BoolP("verbose", "v", false, "debug logging")
}

func initConfig() {
	def := config.Default()
	viper.SetDefault("database", def.Database)
	viper.SetDefault("stopwords", def.StopWords)
	viper.SetDefault("stoplist_file", def.StoplistPath)
	viper.SetDefault("event_buffer", def.EventBuffer)
	viper.SetDefault("default_top_n", def.DefaultTopN)
	viper.SetDefault("log_level", def.LogLevel)

	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("database", pf.Lookup("db"))
	_ = viper.BindPFlag("stopwords", pf.Lookup("stopwords"))
	_ = viper.BindPFlag("stoplist_file", pf.Lookup("stoplist-file"))
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))

	cfgFile, _ := pf.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("textlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "textlens"))
		}
	}

	viper.SetEnvPrefix("TEXTLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCode maps error kinds to process exit statuses.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, internalerr.ErrInvalidArgument), errors.Is(err, internalerr.ErrInvalidConfig):
		return 2
	case errors.Is(err, internalerr.ErrNotFound):
		return 3
	case errors.Is(err, internalerr.ErrConflict):
		return 4
	case errors.Is(err, internalerr.ErrInvalidState):
		return 5
	case errors.Is(err, internalerr.ErrUnavailable):
		return 6
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
