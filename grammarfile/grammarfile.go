// Package grammarfile is a minimal loader for the grammar-file surface
// syntax: productions of the form `HEAD : body ( '|' body )* ';'`, top-level
// directives (%token, %left/%right/%nonassoc/%precedence, %start), and
// lexer directives (@ignore, @match, @import). It is intentionally small and
// not spec-normative; grammar.Grammar is the authoritative in-memory form,
// and this package exists only to exercise C1-C10 end-to-end from grammar
// text instead of requiring callers to build a Grammar by hand with
// AddRule/AddTerm.
package grammarfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/icterrors"
	"github.com/riverstone-labs/redhorse/lex"
	"github.com/riverstone-labs/redhorse/types"
)

// MatchRule is a single `@match NAME PATTERN` or `@match {TAG} PATTERN`
// lexer directive: it declares a token class with the given pattern. Tag is
// set instead of Name for the brace form; the two forms share one
// namespace.
type MatchRule struct {
	Name    string
	Tag     string
	Pattern string
}

// ImportRule is an `@import NAME [as ALIAS]` lexer directive: it pulls a
// pattern out of the predefined dictionary (see PredefinedPatterns) under
// NAME, registering it as ALIAS (or NAME, if no alias was given).
type ImportRule struct {
	Name  string
	Alias string
}

// LexerSpec is the parsed form of a grammar file's lexer directives, kept
// separate from grammar.Grammar (which has no notion of lexical patterns).
// BuildLexer turns a LexerSpec into a usable lex.Lexer.
type LexerSpec struct {
	Ignores []string
	Matches []MatchRule
	Imports []ImportRule
}

// PredefinedPatterns is the dictionary @import draws from: common lexical
// classes that would otherwise need to be spelled out by every grammar file.
var PredefinedPatterns = map[string]string{
	"id":     `[A-Za-z_][A-Za-z0-9_]*`,
	"int":    `[0-9]+`,
	"float":  `[0-9]+\.[0-9]+`,
	"string": `"(?:\\.|[^"\\])*"`,
	"ws":     `[ \t]+`,
}

// Load reads a grammar file from r and returns the grammar.Grammar it
// describes along with the lexer directives found in it. The returned
// grammar is not validated; callers should call Validate (or let a
// parse.Generate*Parser constructor do it) before use.
func Load(r io.Reader) (grammar.Grammar, LexerSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return grammar.Grammar{}, LexerSpec{}, err
	}

	cleaned := stripComments(data)

	spec, grammarText, err := extractLexerDirectives(cleaned)
	if err != nil {
		return grammar.Grammar{}, LexerSpec{}, err
	}

	toks, err := tokenize(grammarText)
	if err != nil {
		return grammar.Grammar{}, LexerSpec{}, err
	}

	g, err := parseGrammar(toks)
	if err != nil {
		return grammar.Grammar{}, LexerSpec{}, err
	}

	return g, spec, nil
}

// stripComments removes '#...', '//...' and '/* ... */' comments and
// normalizes line endings to '\n'.
func stripComments(source []byte) []byte {
	noBlock := regexp.MustCompile(`(?s)/\*.*?\*/`).ReplaceAll(source, nil)

	scanner := bufio.NewScanner(bytes.NewReader(noBlock))
	var out strings.Builder
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		out.WriteString(line)
		out.WriteRune('\n')
	}
	return []byte(out.String())
}

var (
	reIgnore = regexp.MustCompile(`^@ignore\s+(\S+)\s*$`)
	reMatch  = regexp.MustCompile(`^@match\s+(\{[A-Za-z_][A-Za-z0-9_]*\}|[A-Za-z_][A-Za-z0-9_]*)\s+(\S+)\s*$`)
	reImport = regexp.MustCompile(`^@import\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s+as\s+([A-Za-z_][A-Za-z0-9_]*))?\s*$`)
)

// extractLexerDirectives pulls every @ignore/@match/@import line (one per
// line, as these directives carry a raw pattern that would otherwise need
// escaping to survive the grammar tokenizer) out of source, returning the
// directives found and the remaining text for grammar tokenization.
func extractLexerDirectives(source []byte) (LexerSpec, []byte, error) {
	var spec LexerSpec
	var rest strings.Builder

	scanner := bufio.NewScanner(bytes.NewReader(source))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "@ignore"):
			m := reIgnore.FindStringSubmatch(trimmed)
			if m == nil {
				return spec, nil, fmt.Errorf("line %d: malformed @ignore directive", lineNum)
			}
			spec.Ignores = append(spec.Ignores, m[1])
			rest.WriteRune('\n')
			continue
		case strings.HasPrefix(trimmed, "@match"):
			m := reMatch.FindStringSubmatch(trimmed)
			if m == nil {
				return spec, nil, fmt.Errorf("line %d: malformed @match directive", lineNum)
			}
			rule := MatchRule{Pattern: m[2]}
			if strings.HasPrefix(m[1], "{") {
				rule.Tag = strings.Trim(m[1], "{}")
			} else {
				rule.Name = m[1]
			}
			spec.Matches = append(spec.Matches, rule)
			rest.WriteRune('\n')
			continue
		case strings.HasPrefix(trimmed, "@import"):
			m := reImport.FindStringSubmatch(trimmed)
			if m == nil {
				return spec, nil, fmt.Errorf("line %d: malformed @import directive", lineNum)
			}
			spec.Imports = append(spec.Imports, ImportRule{Name: m[1], Alias: m[2]})
			rest.WriteRune('\n')
			continue
		}

		rest.WriteString(line)
		rest.WriteRune('\n')
	}

	return spec, []byte(rest.String()), nil
}

// BuildLexer materializes spec into a ready-to-use lex.Lexer: imports are
// resolved against PredefinedPatterns, matches are registered directly, and
// ignores are wired as discard patterns. All patterns are registered on the
// lexer's single default state.
func BuildLexer(spec LexerSpec, lazy bool) (lex.Lexer, error) {
	lx := lex.NewLexer(lazy)

	for _, ig := range spec.Ignores {
		if err := lx.AddPattern(ig, lex.Discard(), ""); err != nil {
			return nil, fmt.Errorf("@ignore %q: %w", ig, err)
		}
	}

	for _, m := range spec.Matches {
		name := m.Name
		if name == "" {
			name = m.Tag
		}
		cl := lex.NewTokenClass(name, name)
		lx.RegisterClass(cl, "")
		if err := lx.AddPattern(m.Pattern, lex.LexAs(name), ""); err != nil {
			return nil, fmt.Errorf("@match %s %q: %w", name, m.Pattern, err)
		}
	}

	for _, im := range spec.Imports {
		pat, ok := PredefinedPatterns[im.Name]
		if !ok {
			return nil, fmt.Errorf("@import %q: no such predefined pattern", im.Name)
		}
		name := im.Alias
		if name == "" {
			name = im.Name
		}
		cl := lex.NewTokenClass(name, name)
		lx.RegisterClass(cl, "")
		if err := lx.AddPattern(pat, lex.LexAs(name), ""); err != nil {
			return nil, fmt.Errorf("@import %s: %w", name, err)
		}
	}

	return lx, nil
}

// token classes used by the hand-rolled grammar-file tokenizer.
var (
	tcDirToken      = lex.NewTokenClass("token_dir", "'%token' directive")
	tcDirLeft       = lex.NewTokenClass("left_dir", "'%left' directive")
	tcDirRight      = lex.NewTokenClass("right_dir", "'%right' directive")
	tcDirNonassoc   = lex.NewTokenClass("nonassoc_dir", "'%nonassoc' directive")
	tcDirPrecedence = lex.NewTokenClass("precedence_dir", "'%precedence' directive")
	tcDirStart      = lex.NewTokenClass("start_dir", "'%start' directive")
	tcDirPrec       = lex.NewTokenClass("prec_dir", "'%prec' directive")
	tcEmpty         = lex.NewTokenClass("empty_dir", "empty-production marker")
	tcColon         = lex.NewTokenClass("colon", "':'")
	tcPipe          = lex.NewTokenClass("pipe", "'|'")
	tcSemi          = lex.NewTokenClass("semi", "';'")
	tcAction        = lex.NewTokenClass("action_tag", "semantic action")
	tcLiteral       = lex.NewTokenClass("literal", "quoted terminal")
	tcIdent         = lex.NewTokenClass("ident", "identifier")
)

func newTokenizer() lex.Lexer {
	lx := lex.NewLexer(false)

	for _, cl := range []types.TokenClass{
		tcDirToken, tcDirLeft, tcDirRight, tcDirNonassoc, tcDirPrecedence,
		tcDirStart, tcDirPrec, tcEmpty, tcColon, tcPipe, tcSemi, tcAction,
		tcLiteral, tcIdent,
	} {
		lx.RegisterClass(cl, "")
	}

	mustAdd := func(pat string, act lex.Action) {
		if err := lx.AddPattern(pat, act, ""); err != nil {
			panic(fmt.Sprintf("grammarfile: internal tokenizer pattern %q rejected: %s", pat, err))
		}
	}

	mustAdd(`\s+`, lex.Discard())
	mustAdd(`%token\b`, lex.LexAs(tcDirToken.ID()))
	mustAdd(`%left\b`, lex.LexAs(tcDirLeft.ID()))
	mustAdd(`%right\b`, lex.LexAs(tcDirRight.ID()))
	mustAdd(`%nonassoc\b`, lex.LexAs(tcDirNonassoc.ID()))
	mustAdd(`%precedence\b`, lex.LexAs(tcDirPrecedence.ID()))
	mustAdd(`%start\b`, lex.LexAs(tcDirStart.ID()))
	mustAdd(`%prec\b`, lex.LexAs(tcDirPrec.ID()))
	mustAdd(`%empty\b|%e\b|%epsilon\b`, lex.LexAs(tcEmpty.ID()))
	mustAdd(`:`, lex.LexAs(tcColon.ID()))
	mustAdd(`\|`, lex.LexAs(tcPipe.ID()))
	mustAdd(`;`, lex.LexAs(tcSemi.ID()))
	mustAdd(`\{[A-Za-z_][A-Za-z0-9_]*\}`, lex.LexAs(tcAction.ID()))
	mustAdd(`'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`, lex.LexAs(tcLiteral.ID()))
	mustAdd(`[A-Za-z_][A-Za-z0-9_-]*`, lex.LexAs(tcIdent.ID()))

	return lx
}

func tokenize(source []byte) ([]types.Token, error) {
	lx := newTokenizer()
	stream, err := lx.Lex(bytes.NewReader(source))
	if err != nil {
		return nil, err
	}

	var toks []types.Token
	for stream.HasNext() {
		tok := stream.Next()
		if tok.Class().ID() == types.TokenEndOfText.ID() {
			break
		}
		toks = append(toks, tok)
	}
	return toks, nil
}
