package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Type-check a TypeScript file without running it",
	Long: `Parse and type-check a TypeScript program, reporting diagnostics
without executing any code.

Exit status is non-zero if any errors were found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	engine, err := sharpts.New()
	if err != nil {
		return err
	}
	diags := engine.Check(input)
	if len(diags) == 0 {
		if verbose {
			fmt.Printf("%s: no problems found\n", filename)
		}
		return nil
	}

	color := sharpts.ColorEnabled(os.Stderr)
	fmt.Fprint(os.Stderr, sharpts.FormatDiagnostics(diags, input, filename, color))
	return fmt.Errorf("found %d problem(s)", len(diags))
}
