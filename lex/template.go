package lex

import (
	"fmt"
	"io"
	"regexp"

	"github.com/riverstone-labs/redhorse/types"
)

// patAct binds a compiled pattern to the action taken when it matches.
type patAct struct {
	src string
	pat *regexp.Regexp
	act Action
}

// Lexer builds up a set of patterns, token classes and scanner states, then
// produces a TokenStream over some input text.
type Lexer interface {
	// Lex returns a token stream. If the Lexer was constructed lazy, tokens
	// are produced one at a time as Next is called and lexical errors surface
	// as error tokens from the stream; otherwise the entire input is lexed up
	// front and any lexical error is returned immediately as a SyntaxError.
	Lex(input io.Reader) (types.TokenStream, error)

	// RegisterClass registers cl as a usable token class for forState (the
	// empty string names the default start state).
	RegisterClass(cl types.TokenClass, forState string)

	// AddPattern adds a matching rule to forState: whenever pat matches at
	// the head of the remaining input (ties broken by lowest-declared-index,
	// per gnu lex convention), action is taken.
	AddPattern(pat string, action Action, forState string) error

	// SetStartingState sets the scanner state lexing begins in.
	SetStartingState(s string)

	// StartingState returns the scanner state lexing begins in, "" by
	// default.
	StartingState() string
}

// lexerTemplate accumulates patterns, classes and states; Lex (by way of
// LazyLex/ImmediatelyLex) stamps out a fresh, independently-running scanner
// from that accumulated configuration for each call.
type lexerTemplate struct {
	lazy bool

	// patterns by state, in declaration order (index is tiebreak priority).
	patterns map[string][]patAct

	// classes by ID by state.
	classes map[string]map[string]types.TokenClass

	startState string
}

// NewLexer returns a Lexer. If lazy is true, Lex returns a TokenStream that
// scans one token at a time as Next is called, surfacing lexical errors as
// error tokens; otherwise Lex scans the entire input immediately and returns
// the first lexical error (if any) as a SyntaxError.
func NewLexer(lazy bool) Lexer {
	return &lexerTemplate{
		lazy:     lazy,
		patterns: map[string][]patAct{},
		classes:  map[string]map[string]types.TokenClass{},
	}
}

func (lx *lexerTemplate) Lex(input io.Reader) (types.TokenStream, error) {
	if lx.lazy {
		return lx.LazyLex(input)
	}
	return lx.ImmediatelyLex(input)
}

func (lx *lexerTemplate) SetStartingState(s string) {
	lx.startState = s
}

func (lx *lexerTemplate) StartingState() string {
	return lx.startState
}

// RegisterClass adds cl as a usable token class for forState. Re-registering
// a class with the same ID replaces the prior registration.
func (lx *lexerTemplate) RegisterClass(cl types.TokenClass, forState string) {
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]types.TokenClass{}
	}
	stateClasses[cl.ID()] = cl
	lx.classes[forState] = stateClasses
}

func (lx *lexerTemplate) AddPattern(pat string, action Action, forState string) error {
	statePatterns := lx.patterns[forState]
	stateClasses := lx.classes[forState]

	compiled, err := regexp.Compile(pat)
	if err != nil {
		return fmt.Errorf("cannot compile regex: %w", err)
	}

	if action.Type == ActionScan || action.Type == ActionScanAndState {
		if _, ok := stateClasses[action.ClassID]; !ok {
			return fmt.Errorf("%q is not a defined token class on this lexer; add it with RegisterClass first", action.ClassID)
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState {
		if action.State == "" {
			return fmt.Errorf("action includes state shift but does not define state to shift to (cannot shift to empty state)")
		}
	}

	statePatterns = append(statePatterns, patAct{src: pat, pat: compiled, act: action})
	lx.patterns[forState] = statePatterns
	return nil
}
