package main

import (
	"fmt"
	"os"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/grammarfile"
	"github.com/riverstone-labs/redhorse/lex"
	"github.com/riverstone-labs/redhorse/parse"
	"github.com/riverstone-labs/redhorse/types"
)

// lrTable is the subset of a *parse.lrParser's exported surface the CLI
// needs; parse.lrParser is unexported but still satisfies this structurally.
type lrTable interface {
	Parse(stream types.TokenStream) (types.ParseTree, error)
	TableString() string
	Type() types.ParserType
}

func loadGrammarFile(path string) (grammar.Grammar, grammarfile.LexerSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return grammar.Grammar{}, grammarfile.LexerSpec{}, fmt.Errorf("cannot open grammar file %s: %w", path, err)
	}
	defer f.Close()

	g, spec, err := grammarfile.Load(f)
	if err != nil {
		return grammar.Grammar{}, grammarfile.LexerSpec{}, err
	}
	if err := g.Validate(); err != nil {
		return grammar.Grammar{}, grammarfile.LexerSpec{}, err
	}
	return g, spec, nil
}

func buildTable(g grammar.Grammar, algorithm string) (lrTable, error) {
	switch algorithm {
	case "lr0":
		return parse.GenerateLR0Parser(g)
	case "slr":
		return parse.GenerateSimpleLRParser(g)
	case "lr1":
		return parse.GenerateCanonicalLR1Parser(g)
	case "lalr", "":
		return parse.GenerateLALR1Parser(g)
	default:
		return nil, fmt.Errorf("unknown algorithm %q: must be one of lr0|slr|lr1|lalr", algorithm)
	}
}

func buildLexer(spec grammarfile.LexerSpec) (lex.Lexer, error) {
	return grammarfile.BuildLexer(spec, false)
}
