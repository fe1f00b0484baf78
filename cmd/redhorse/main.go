// Command redhorse is a CLI driver around the parser-generator package: it
// loads a grammar file, reports analysis diagnostics, prints constructed
// ACTION/GOTO tables, and runs the full lex-parse pipeline against an input
// file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
