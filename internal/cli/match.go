package cli

import (
	"fmt"
	"path/filepath"

	"crashsig/internal/logging"
	"crashsig/internal/usecase"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <crash.json>...",
	Short: "Find the library signatures matching crashes",
	Long: `Match one or more crash files against the indexed signature library.
Crash files are evaluated in parallel (match.workers in the config).

Examples:
  crashsig match -d signatures/ crash.json
  crashsig match -d signatures/ crashes/*.json --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	library, err := loadLibrary(cfg, GetRootDir())
	if err != nil {
		return err
	}

	paths := make([]string, len(args))
	for i, arg := range args {
		if paths[i], err = filepath.Abs(arg); err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	var progress usecase.ProgressFunc
	if len(paths) > 1 && cfg.Output.Format != "json" {
		progress = newProgress("Matching")
	}

	matchUC := usecase.NewMatchUseCase(library, cfg.Match.Workers, logging.New("match"))
	results, err := matchUC.MatchAll(cmd.Context(), paths, progress)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if cfg.Output.Format == "json" {
		return printJSON(results)
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			fmt.Printf("%s: error: %s\n", r.CrashPath, r.Error)
		case len(r.Matches) == 0:
			fmt.Printf("%s: no matching signature\n", r.CrashPath)
		default:
			fmt.Printf("%s: %d matching signature(s)\n", r.CrashPath, len(r.Matches))
			for _, m := range r.Matches {
				fmt.Printf("  %s\n", m)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d crashes could not be matched", failed, len(results))
	}
	return nil
}
