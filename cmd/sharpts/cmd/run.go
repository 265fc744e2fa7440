package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/loader"
	"github.com/sharpts-lang/sharpts/pkg/sharpts"
)

var (
	evalExpr  string
	dumpAST   bool
	typeCheck bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a TypeScript file or expression",
	Long: `Execute a TypeScript program from a file or inline expression.

Examples:
  # Run a script file
  sharpts run script.ts

  # Evaluate an inline expression
  sharpts run -e "console.log('Hello, World!');"

  # Run with AST dump (for debugging)
  sharpts run --dump-ast script.ts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&typeCheck, "type-check", true, "perform type checking before execution")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}
	return runSource(input, filename)
}

func runSource(input, filename string) error {
	opts := []sharpts.Option{sharpts.WithOutput(os.Stdout)}
	if !typeCheck {
		opts = append(opts, sharpts.WithoutTypeCheck())
	}
	if filename != "<eval>" {
		l, err := siblingLoader(filename)
		if err != nil {
			return err
		}
		opts = append(opts, sharpts.WithLoader(l))
	}
	engine, err := sharpts.New(opts...)
	if err != nil {
		return err
	}

	if dumpAST {
		prog, _ := engine.Parse(input)
		fmt.Println("AST:")
		fmt.Println(ast.Dump(prog))
	}

	result, err := engine.Eval(input)
	if err != nil {
		if result != nil && len(result.Diagnostics) > 0 {
			color := sharpts.ColorEnabled(os.Stderr)
			fmt.Fprint(os.Stderr, sharpts.FormatDiagnostics(result.Diagnostics, input, filename, color))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

func readInput(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}

// siblingLoader registers every .ts file in the script's directory tree
// so relative imports resolve, keyed by path relative to that directory.
func siblingLoader(scriptPath string) (loader.Loader, error) {
	root := filepath.Dir(scriptPath)
	l := loader.NewInMemory()
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".ts") {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		l.Add("/"+filepath.ToSlash(rel), string(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan module directory %s: %w", root, err)
	}
	return l, nil
}
