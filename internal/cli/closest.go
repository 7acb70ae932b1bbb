package cli

import (
	"fmt"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/logging"
	"crashsig/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	closestTopK     int
	closestMaxRatio float64
)

var closestCmd = &cobra.Command{
	Use:   "closest <crash.json>",
	Short: "Rank the signatures that almost match a crash",
	Long: `Rank the in-scope library signatures that do not match the crash by their
distance to it, and show what each would need to change.

Examples:
  crashsig closest -d signatures/ crash.json
  crashsig closest -d signatures/ crash.json --top-k 10 --max-ratio 0.5 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClosest,
}

func init() {
	rootCmd.AddCommand(closestCmd)
	closestCmd.Flags().IntVarP(&closestTopK, "top-k", "k", 0, "number of candidates (default from config)")
	closestCmd.Flags().Float64Var(&closestMaxRatio, "max-ratio", 0, "drop candidates above this distance ratio (default from config)")
}

func runClosest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	library, err := loadLibrary(cfg, GetRootDir())
	if err != nil {
		return err
	}

	crash, err := fs.LoadCrash(args[0])
	if err != nil {
		return fmt.Errorf("failed to load crash: %w", err)
	}
	rec, err := crash.WithTestcase()
	if err != nil {
		return err
	}

	topK := cfg.Match.TopK
	if closestTopK > 0 {
		topK = closestTopK
	}
	maxRatio := cfg.Match.MaxDistanceRatio
	if closestMaxRatio > 0 {
		maxRatio = closestMaxRatio
	}

	closestUC := usecase.NewClosestUseCase(library, topK, maxRatio, logging.New("closest"))
	candidates := closestUC.Closest(rec)

	if cfg.Output.Format == "json" {
		if candidates == nil {
			candidates = []usecase.Candidate{}
		}
		return printJSON(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No close signatures found.")
		return nil
	}

	fmt.Printf("Found %d close signatures for: %s\n\n", len(candidates), crash.Path)
	for i, c := range candidates {
		fmt.Printf("--- [%d] %s (distance: %d/%d) ---\n", i+1, c.Path, c.Distance, c.Total)
		for _, d := range c.Diffs {
			if !d.Offending {
				continue
			}
			fmt.Printf("  - %s\n", d.Symptom)
			if d.Proposed != nil {
				fmt.Printf("  + %s\n", d.Proposed)
			}
		}
		fmt.Println()
	}
	return nil
}
