package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sharpts-lang/sharpts/internal/evaluator"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/parser"
	"github.com/sharpts-lang/sharpts/internal/runtime"
	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Long: `Start an interactive session. Each line is parsed and evaluated in a
persistent global scope; declarations from earlier lines stay visible.

Type-checking is skipped in the REPL, since incomplete programs are
routine there. Exit with Ctrl-D or ".exit".`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	fmt.Printf("sharpts %s — interactive mode (.exit to quit)\n", Version)

	ev := evaluator.New(evaluator.WithStdout(func(s string) { fmt.Println(s) }))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ".exit" {
			return nil
		}

		prog, diags := parser.New(lexer.New(line)).Parse()
		if len(diags) > 0 {
			color := sharpts.ColorEnabled(os.Stderr)
			fmt.Fprint(os.Stderr, sharpts.FormatDiagnostics(diags, line, "", color))
			continue
		}

		result, err := ev.Run(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if result.Value != nil && result.Value.Kind() != runtime.KindUndefined {
			fmt.Println(result.Value.String())
		}
	}
}
