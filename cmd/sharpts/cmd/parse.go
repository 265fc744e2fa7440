package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse TypeScript source and display the AST",
	Long: `Parse TypeScript source code and display the Abstract Syntax Tree.

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
}

func runParseCmd(_ *cobra.Command, args []string) error {
	var input, filename string
	switch {
	case parseExpression:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input, filename = args[0], "<expr>"
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input, filename = string(data), args[0]
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		input, filename = string(data), "<stdin>"
	}

	engine, err := sharpts.New()
	if err != nil {
		return err
	}
	prog, diags := engine.Parse(input)
	fmt.Print(ast.Dump(prog))
	if len(diags) > 0 {
		color := sharpts.ColorEnabled(os.Stderr)
		fmt.Fprint(os.Stderr, sharpts.FormatDiagnostics(diags, input, filename, color))
		return fmt.Errorf("parsing produced %d diagnostic(s)", len(diags))
	}
	return nil
}
