package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tableFlags = struct {
	algorithm *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "table <grammar-file>",
		Short:   "Build and print the constructed ACTION/GOTO table",
		Example: `  redhorse table grammar.rh --algorithm lalr`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTable,
	}
	tableFlags.algorithm = algorithmFlag(cmd)
	rootCmd.AddCommand(cmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	g, _, err := loadGrammarFile(args[0])
	if err != nil {
		return err
	}

	table, err := buildTable(g, *tableFlags.algorithm)
	if err != nil {
		return fmt.Errorf("building %s table: %w", *tableFlags.algorithm, err)
	}

	fmt.Printf("%s table for %s:\n\n", table.Type(), args[0])
	fmt.Println(table.TableString())
	return nil
}
