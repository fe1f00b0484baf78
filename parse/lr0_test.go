package parse

import (
	"testing"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_ConstructLR0ParseTable(t *testing.T) {
	testCases := []struct {
		name      string
		grammar   string
		expectErr bool
	}{
		{
			name: "strictly LR(0) nested-bracket grammar",
			grammar: `
				S -> a S b | c ;
			`,
		},
		{
			// Not a strictly LR(0) grammar (states arise with both a shift
			// item and a reduce item present), but construction still
			// succeeds: an undeclared shift/reduce conflict defaults to
			// shift rather than failing table construction.
			name: "purple dragon example 4.45 has undeclared LR(0) conflicts resolved by default",
			grammar: `
				E -> E + T | T ;
				T -> T * F | F ;
				F -> ( E ) | id ;
			`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			g := grammar.MustParse(tc.grammar)

			// execute
			_, err := constructLR0ParseTable(g, firstWarnSink(nil))

			// assert
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
		})
	}
}

func Test_LR0Parse(t *testing.T) {
	testCases := []struct {
		name      string
		grammar   string
		input     []string
		expect    string
		expectErr bool
	}{
		{
			name: "strictly LR(0) nested-bracket grammar",
			grammar: `
				S -> a S b | c ;
			`,
			input: []string{"a", "a", "c", "b", "b", "$"},
			expect: `( S )
  |---: (TERM "a")
  |---: ( S )
  |       |---: (TERM "a")
  |       |---: ( S )
  |       |       \---: (TERM "c")
  |       \---: (TERM "b")
  \---: (TERM "b")`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			g := grammar.MustParse(tc.grammar)
			stream := mockTokens(tc.input...)

			// execute
			parser, err := GenerateLR0Parser(g)
			assert.NoError(err, "generating LR(0) parser failed")
			actual, err := parser.Parse(stream)

			// assert
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual.String())
		})
	}
}
