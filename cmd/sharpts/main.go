package main

import (
	"os"

	"github.com/sharpts-lang/sharpts/cmd/sharpts/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
