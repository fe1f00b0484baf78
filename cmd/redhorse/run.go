package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runFlags = struct {
	algorithm *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar-file> <input-file>",
		Short:   "Parse an input file and print the resulting parse tree",
		Example: `  redhorse parse grammar.rh input.txt --algorithm lalr`,
		Args:    cobra.ExactArgs(2),
		RunE:    runParse,
	}
	runFlags.algorithm = algorithmFlag(cmd)
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	g, spec, err := loadGrammarFile(args[0])
	if err != nil {
		return err
	}

	table, err := buildTable(g, *runFlags.algorithm)
	if err != nil {
		return fmt.Errorf("building %s parser: %w", *runFlags.algorithm, err)
	}

	lx, err := buildLexer(spec)
	if err != nil {
		return fmt.Errorf("building lexer from grammar file's lexer directives: %w", err)
	}

	in, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("cannot open input file %s: %w", args[1], err)
	}
	defer in.Close()

	stream, err := lx.Lex(in)
	if err != nil {
		return fmt.Errorf("lexing %s: %w", args[1], err)
	}

	tree, err := table.Parse(stream)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[1], err)
	}

	fmt.Println(tree.String())
	return nil
}
