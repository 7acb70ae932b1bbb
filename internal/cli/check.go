package cli

import (
	"fmt"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/logging"
	"crashsig/internal/usecase"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate every signature file of a library",
	Long: `Parse every signature file under the directory and report the ones that
are malformed or violate the signature schema. Exits non-zero on problems.

Examples:
  crashsig check .
  crashsig check signatures/ --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	walker := fs.NewWalker(cfg.Library.Includes, cfg.Library.Excludes)
	checkUC := usecase.NewCheckUseCase(walker, logging.New("check"), signatureOptions(cfg)...)

	result, err := checkUC.Check(path)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if cfg.Output.Format == "json" {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		for _, p := range result.Problems {
			fmt.Printf("%s: %s: %s\n", p.Path, p.Kind, p.Error)
		}
		fmt.Printf("Checked %d signatures, %d with problems\n", result.Checked, len(result.Problems))
	}

	if len(result.Problems) > 0 {
		return fmt.Errorf("%d invalid signatures", len(result.Problems))
	}
	return nil
}
