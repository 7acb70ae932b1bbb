package cli

import (
	"fmt"
	"log/slog"
	"os"

	"crashsig/config"
	"crashsig/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	cfg        *config.Config
	rootDir    string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "crashsig",
	Short: "Crash signatures - match, diff and fit crashes against a signature library",
	Long: `crashsig matches normalized crash records against a library of JSON crash
signatures, ranks the signatures that almost match, and fits a signature so
that it matches a given crash.

Example usage:
  crashsig index signatures/                  # Index a signature library
  crashsig match -d signatures/ crash.json    # Which signatures match this crash?
  crashsig closest -d signatures/ crash.json  # Which signatures almost match?
  crashsig fit a.signature crash.json         # Adjust a signature to a crash
  crashsig check signatures/                  # Validate every signature file

Commands that read the library index look for it in the --dir directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid logging config: %w", err)
		}
		if verbose {
			level = slog.LevelDebug
		}
		logging.Init(level, cfg.Logging.Format)

		if jsonOutput {
			cfg.Output.Format = "json"
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./crashsig.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "library directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
