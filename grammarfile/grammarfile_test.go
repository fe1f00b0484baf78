package grammarfile

import (
	"strings"
	"testing"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_Load(t *testing.T) {
	const source = `
		# a grammar for a tiny expression language
		@ignore ws
		@import id
		@import int
		@match plus "\+"

		%token plus id int
		%left plus
		%start expr

		expr : expr plus term {sum}
		     | term
		     ;

		term : id
		     | int
		     ;
	`

	assert := assert.New(t)

	g, spec, err := Load(strings.NewReader(source))
	assert.NoError(err)
	assert.NoError(g.Validate())

	// bare identifiers in the surface syntax are canonicalized to uppercase
	// nonterminal names; %token-declared symbols stay lowercase terminals.
	assert.Equal("EXPR", g.StartSymbol())
	assert.True(g.IsNonTerminal("EXPR"))
	assert.True(g.IsNonTerminal("TERM"))
	assert.True(g.IsTerminal("plus"))
	assert.True(g.IsTerminal("id"))
	assert.True(g.IsTerminal("int"))

	level, assoc, ok := g.Precedence("plus")
	assert.True(ok)
	assert.Equal(1, level)
	assert.Equal(grammar.AssocLeft, assoc)

	exprRule := g.Rule("EXPR")
	assert.Len(exprRule.Productions, 2)
	assert.Contains(exprRule.Productions, grammar.Production{"EXPR", "plus", "TERM"})
	assert.Contains(exprRule.Productions, grammar.Production{"TERM"})

	assert.Equal([]string{"ws"}, spec.Ignores)
	assert.Equal([]ImportRule{{Name: "id"}, {Name: "int"}}, spec.Imports)
	assert.Len(spec.Matches, 1)
	assert.Equal("plus", spec.Matches[0].Name)
	assert.Equal(`"\+"`, spec.Matches[0].Pattern)
}

func Test_Load_EmptyProduction(t *testing.T) {
	const source = `
		%token a
		%start s

		s : a s
		  | %empty
		  ;
	`

	assert := assert.New(t)

	g, _, err := Load(strings.NewReader(source))
	assert.NoError(err)
	assert.NoError(g.Validate())

	rule := g.Rule("S")
	assert.Len(rule.Productions, 2)

	foundEmpty := false
	for _, p := range rule.Productions {
		if len(p) == 0 {
			foundEmpty = true
		}
	}
	assert.True(foundEmpty, "expected an empty alternative in s's productions")
}

func Test_ExtractLexerDirectives(t *testing.T) {
	assert := assert.New(t)

	source := []byte("@ignore ws\n@match num \"[0-9]+\"\n@import id as ident\n\nstart : a ;\n")

	spec, rest, err := extractLexerDirectives(source)
	assert.NoError(err)
	assert.Equal([]string{"ws"}, spec.Ignores)
	assert.Equal([]MatchRule{{Name: "num", Pattern: `"[0-9]+"`}}, spec.Matches)
	assert.Equal([]ImportRule{{Name: "id", Alias: "ident"}}, spec.Imports)
	assert.NotContains(string(rest), "@ignore")
	assert.Contains(string(rest), "start : a ;")
}

func Test_BuildLexer(t *testing.T) {
	assert := assert.New(t)

	spec := LexerSpec{
		Ignores: []string{`[ \t]+`},
		Imports: []ImportRule{{Name: "id"}, {Name: "int", Alias: "num"}},
		Matches: []MatchRule{{Name: "plus", Pattern: `\+`}},
	}

	lx, err := BuildLexer(spec, false)
	assert.NoError(err)
	assert.NotNil(lx)

	stream, err := lx.Lex(strings.NewReader("abc + 12"))
	assert.NoError(err)

	var lexemes []string
	for stream.HasNext() {
		lexemes = append(lexemes, stream.Next().Lexeme())
	}
	// the stream ends with the end-of-text token, whose lexeme is empty.
	assert.Equal([]string{"abc", "+", "12", ""}, lexemes)
}

func Test_BuildLexer_UnknownImport(t *testing.T) {
	assert := assert.New(t)

	spec := LexerSpec{Imports: []ImportRule{{Name: "not-a-real-pattern"}}}
	_, err := BuildLexer(spec, false)
	assert.Error(err)
}

func Test_StripComments(t *testing.T) {
	assert := assert.New(t)

	source := []byte("a # comment\nb // also comment\nc /* block\nspanning */ d\n")
	cleaned := stripComments(source)

	assert.NotContains(string(cleaned), "comment")
	assert.Contains(string(cleaned), "a ")
	assert.Contains(string(cleaned), "b ")
	assert.Contains(string(cleaned), "c ")
	assert.Contains(string(cleaned), " d")
}
