package cli

import (
	"fmt"
	"os"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/logging"
	"crashsig/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	fitOutput string
	fitWrite  bool
)

var fitCmd = &cobra.Command{
	Use:   "fit <signature> <crash.json>",
	Short: "Adjust a signature so that it matches a crash",
	Long: `Fit a signature to a crash: offending stack frame symptoms are replaced by
the proposal of the stack diff, other offending symptoms are dropped. The
fitted signature is printed unless --output or --write is given.

Examples:
  crashsig fit a.signature crash.json
  crashsig fit a.signature crash.json -o fitted.signature
  crashsig fit a.signature crash.json --write`,
	Args: cobra.ExactArgs(2),
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().StringVarP(&fitOutput, "output", "o", "", "write the fitted signature to this file")
	fitCmd.Flags().BoolVar(&fitWrite, "write", false, "overwrite the signature file in place")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	sigPath := args[0]

	crash, err := fs.LoadCrash(args[1])
	if err != nil {
		return fmt.Errorf("failed to load crash: %w", err)
	}

	fitUC := usecase.NewFitUseCase(logging.New("fit"), signatureOptions(cfg)...)
	result, err := fitUC.Fit(sigPath, crash)
	if err != nil {
		return err
	}

	output := fitOutput
	if fitWrite {
		output = sigPath
	}

	if output == "" {
		if cfg.Output.Format == "json" {
			return printJSON(struct {
				Signature string             `json:"signature"`
				Diffs     []usecase.DiffView `json:"diffs"`
			}{result.Fitted.String(), result.Diffs})
		}
		fmt.Println(result.Fitted.String())
		return nil
	}

	if err := os.WriteFile(output, []byte(result.Fitted.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write fitted signature: %w", err)
	}
	fmt.Printf("Fitted signature written to: %s\n", output)
	return nil
}
