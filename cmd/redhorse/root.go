package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redhorse",
	Short: "Build and inspect LR parsers from a grammar file",
	Long: `redhorse provides three features:
- Analyzes a grammar file and reports FIRST/FOLLOW diagnostics.
- Builds an LR table and prints it.
- Runs a full parse over an input file and prints the resulting tree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

func algorithmFlag(cmd *cobra.Command) *string {
	return cmd.Flags().StringP("algorithm", "a", "lalr", "table construction algorithm: one of lr0|slr|lr1|lalr")
}
