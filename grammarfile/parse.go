package grammarfile

import (
	"fmt"
	"strings"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/icterrors"
	"github.com/riverstone-labs/redhorse/types"
)

// parser is a simple recursive-descent reader over the token stream produced
// by tokenize, building up a grammar.Grammar as it goes. Terminals are
// distinguished from nonterminals the way spec.md §6 defines them: quoted
// literals are always terminals; bare identifiers are nonterminals unless
// the identifier was declared with %token.
type parser struct {
	toks    []types.Token
	pos     int
	g       grammar.Grammar
	tokens  map[string]bool
	started bool
}

func parseGrammar(toks []types.Token) (grammar.Grammar, error) {
	p := &parser{toks: toks, tokens: map[string]bool{}}

	for !p.atEnd() {
		switch p.peek().Class().ID() {
		case tcDirToken.ID():
			if err := p.parseTokenDir(); err != nil {
				return p.g, err
			}
		case tcDirLeft.ID(), tcDirRight.ID(), tcDirNonassoc.ID(), tcDirPrecedence.ID():
			if err := p.parsePrecedenceDir(); err != nil {
				return p.g, err
			}
		case tcDirStart.ID():
			if err := p.parseStartDir(); err != nil {
				return p.g, err
			}
		case tcIdent.ID():
			if err := p.parseProduction(); err != nil {
				return p.g, err
			}
		default:
			return p.g, icterrors.NewSyntaxErrorFromToken("unexpected token at top level", p.peek())
		}
	}

	return p.g, nil
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() types.Token {
	return p.toks[p.pos]
}

func (p *parser) advance() types.Token {
	tok := p.toks[p.pos]
	p.pos++
	return tok
}

func (p *parser) expect(classID string) (types.Token, error) {
	if p.atEnd() {
		return nil, fmt.Errorf("unexpected end of grammar file; expected %s", classID)
	}
	if p.peek().Class().ID() != classID {
		return nil, icterrors.NewSyntaxErrorFromToken(fmt.Sprintf("expected %s", classID), p.peek())
	}
	return p.advance(), nil
}

// parseTokenDir reads `%token NAME...` declaring each NAME a terminal.
func (p *parser) parseTokenDir() error {
	p.advance()
	for !p.atEnd() && p.peek().Class().ID() == tcIdent.ID() {
		tok := p.advance()
		name := strings.ToLower(tok.Lexeme())
		p.tokens[name] = true
		p.g.AddTerm(name)
	}
	return nil
}

// parsePrecedenceDir reads `%left|%right|%nonassoc|%precedence NAME...`,
// declaring each NAME a terminal (if not already one) at the next
// precedence level.
func (p *parser) parsePrecedenceDir() error {
	dirTok := p.advance()
	var assoc grammar.Associativity
	switch dirTok.Class().ID() {
	case tcDirLeft.ID():
		assoc = grammar.AssocLeft
	case tcDirRight.ID():
		assoc = grammar.AssocRight
	case tcDirNonassoc.ID():
		assoc = grammar.AssocNonAssoc
	case tcDirPrecedence.ID():
		assoc = grammar.AssocNone
	}

	var names []string
	for !p.atEnd() && (p.peek().Class().ID() == tcIdent.ID() || p.peek().Class().ID() == tcLiteral.ID()) {
		tok := p.advance()
		name := symbolText(tok)
		p.tokens[name] = true
		p.g.AddTerm(name)
		names = append(names, name)
	}
	if len(names) == 0 {
		return icterrors.NewSyntaxErrorFromToken("precedence directive names no symbols", dirTok)
	}

	// all symbols named on the same directive line share one precedence
	// level; SetPrecedence bumps the level once per call, so only the
	// first gets a fresh level and the rest are set to read it back.
	p.g.SetPrecedence(names[0], assoc)
	level, _, _ := p.g.Precedence(names[0])
	for _, name := range names[1:] {
		p.g.SetPrecedenceLevel(name, level, assoc)
	}

	return nil
}

// parseStartDir reads `%start NAME`, setting the grammar's start symbol.
func (p *parser) parseStartDir() error {
	p.advance()
	nameTok, err := p.expect(tcIdent.ID())
	if err != nil {
		return err
	}
	p.g.Start = strings.ToUpper(nameTok.Lexeme())
	p.started = true
	return nil
}

// parseProduction reads `HEAD : body ( '|' body )* ';'`.
func (p *parser) parseProduction() error {
	headTok := p.advance()
	head := strings.ToUpper(headTok.Lexeme())

	if _, err := p.expect(tcColon.ID()); err != nil {
		return err
	}

	firstIdx := -1
	for {
		body, actions, precOverride, err := p.parseBody()
		if err != nil {
			return err
		}
		idx := p.g.AddRule(head, body)
		if firstIdx < 0 {
			firstIdx = idx
		}
		if precOverride != "" {
			p.g.SetProductionPrecedence(idx, precOverride)
		}
		for pos, tags := range actions {
			for _, tag := range tags {
				p.g.BindAction(idx, pos, tag)
			}
		}

		if p.atEnd() {
			return fmt.Errorf("production for %q is missing a terminating ';'", head)
		}
		switch p.peek().Class().ID() {
		case tcPipe.ID():
			p.advance()
			continue
		case tcSemi.ID():
			p.advance()
		default:
			return icterrors.NewSyntaxErrorFromToken("expected '|' or ';'", p.peek())
		}
		break
	}

	if !p.started && p.g.Start == "" {
		p.g.Start = head
	}

	return nil
}

// parseBody reads one alternative of a production: a sequence of symbols,
// %empty/%e/%epsilon, {tag} actions at any position, and an optional
// trailing %prec NAME override.
func (p *parser) parseBody() (grammar.Production, map[int][]string, string, error) {
	var body grammar.Production
	actions := map[int][]string{}
	var precOverride string

	for !p.atEnd() {
		tok := p.peek()
		switch tok.Class().ID() {
		case tcEmpty.ID():
			p.advance()
			continue
		case tcIdent.ID():
			p.advance()
			sym := symbolText(tok)
			if !p.tokens[sym] {
				sym = strings.ToUpper(sym)
			}
			body = append(body, sym)
		case tcLiteral.ID():
			p.advance()
			sym := symbolText(tok)
			p.g.AddTerm(sym)
			body = append(body, sym)
		case tcAction.ID():
			p.advance()
			tag := strings.Trim(tok.Lexeme(), "{}")
			actions[len(body)] = append(actions[len(body)], tag)
		case tcDirPrec.ID():
			p.advance()
			nameTok, err := p.peekSymbol()
			if err != nil {
				return nil, nil, "", err
			}
			p.advance()
			precOverride = symbolText(nameTok)
		case tcPipe.ID(), tcSemi.ID():
			return body, actions, precOverride, nil
		default:
			return nil, nil, "", icterrors.NewSyntaxErrorFromToken("unexpected token in production body", tok)
		}
	}

	return body, actions, precOverride, nil
}

func (p *parser) peekSymbol() (types.Token, error) {
	if p.atEnd() {
		return nil, fmt.Errorf("unexpected end of grammar file; expected a symbol")
	}
	id := p.peek().Class().ID()
	if id != tcIdent.ID() && id != tcLiteral.ID() {
		return nil, icterrors.NewSyntaxErrorFromToken("expected a symbol", p.peek())
	}
	return p.peek(), nil
}

// symbolText returns the grammar-facing text of tok: a quoted literal has
// its quotes stripped, a bare identifier is lowercased (terminals declared
// via %token are matched by their lowercase form).
func symbolText(tok types.Token) string {
	lex := tok.Lexeme()
	if tok.Class().ID() == tcLiteral.ID() {
		return lex[1 : len(lex)-1]
	}
	return strings.ToLower(lex)
}
