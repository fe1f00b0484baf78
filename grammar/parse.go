package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads the compact test-fixture grammar notation used throughout this
// package's and parse's test tables: `HEAD -> sym sym | sym ;` rules
// separated by ';', alternatives separated by '|', symbols separated by
// whitespace. A symbol starting with an uppercase letter is a nonterminal;
// anything else is a terminal, auto-registered via AddTerm. This is
// intentionally not the grammar-file surface syntax (see package
// grammarfile) — it exists only to keep table-construction test cases
// terse.
func Parse(s string) (Grammar, error) {
	var g Grammar

	for _, stmt := range strings.Split(s, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		parts := strings.SplitN(stmt, "->", 2)
		if len(parts) != 2 {
			return Grammar{}, fmt.Errorf("malformed rule (missing '->'): %q", stmt)
		}

		head := strings.TrimSpace(parts[0])
		if head == "" {
			return Grammar{}, fmt.Errorf("malformed rule (empty head): %q", stmt)
		}

		for _, alt := range strings.Split(parts[1], "|") {
			fields := strings.Fields(alt)
			prod := make(Production, 0, len(fields))
			for _, sym := range fields {
				if !isNonTerminalName(sym) {
					g.AddTerm(sym)
				}
				prod = append(prod, sym)
			}
			g.AddRule(head, prod)
		}
	}

	return g, nil
}

// MustParse is Parse, panicking on error; for use in test tables where a
// malformed grammar literal is a test-authoring bug, not a runtime case.
func MustParse(s string) Grammar {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

func isNonTerminalName(sym string) bool {
	r := []rune(sym)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
