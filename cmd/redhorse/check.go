package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "check <grammar-file>",
		Short:   "Analyze a grammar file and report diagnostics",
		Example: `  redhorse check grammar.rh`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, _, err := loadGrammarFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("start symbol: %s\n", g.StartSymbol())
	fmt.Printf("terminals: %v\n", g.Terminals())
	fmt.Printf("nonterminals: %v\n", g.NonTerminals())

	if unreachable := g.UnreachableNonTerminals(); len(unreachable) > 0 {
		fmt.Printf("unreachable nonterminals: %v\n", unreachable)
	} else {
		fmt.Println("no unreachable nonterminals")
	}

	fmt.Println()
	fmt.Println("FIRST/FOLLOW sets:")
	for _, nt := range g.NonTerminals() {
		fmt.Printf("  FIRST(%s)  = %v\n", nt, g.FIRST(nt).Elements())
		fmt.Printf("  FOLLOW(%s) = %v\n", nt, g.FOLLOW(nt).Elements())
	}

	fmt.Println()
	fmt.Printf("is LL(1): %v\n", g.IsLL1())

	for _, algo := range []string{"lr0", "slr", "lr1", "lalr"} {
		_, buildErr := buildTable(g, algo)
		fmt.Printf("is %s: %v\n", algo, buildErr == nil)
	}

	return nil
}
