package grammar

import "strings"

// Production is the body of a grammar rule: an ordered sequence of symbol
// names with epsilon stripped. It is represented as a plain string slice so
// that LR items (whose Left/Right fields are built and sliced constantly
// during closure/goto) can be converted to and from it without copying
// machinery.
type Production []string

// EpsilonProduction is the canonical epsilon-only production body.
var EpsilonProduction = Production{}

// ToProduction builds a Production the same way ToVector builds a Vector.
func ToProduction(symbols ...string) Production {
	return Production(ToVector(symbols...))
}

// Copy returns a duplicate of p.
func (p Production) Copy() Production {
	cp := make(Production, len(p))
	copy(cp, p)
	return cp
}

// Equal returns whether p and o name the same symbols in the same order.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasSymbol returns whether sym appears anywhere in the production body.
func (p Production) HasSymbol(sym string) bool {
	for _, s := range p {
		if s == sym {
			return true
		}
	}
	return false
}

func (p Production) String() string {
	if len(p) == 0 {
		return Epsilon
	}
	return strings.Join(p, " ")
}

// RightmostTerminal returns the name of the rightmost terminal in p and true,
// or "" and false if p has no terminal symbols at all (e.g. it is all
// nonterminals, or empty).
func (p Production) RightmostTerminal() (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if IsTerminalName(p[i]) {
			return p[i], true
		}
	}
	return "", false
}

// Rule groups every alternative production under a single nonterminal head.
// It is the grouping view of the grammar's rule map; the authoritative,
// index-ordered view used by the analyzer and table builder is
// Grammar.records (see ProductionRecord).
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Copy returns a duplicate of r.
func (r Rule) Copy() Rule {
	cp := Rule{NonTerminal: r.NonTerminal, Productions: make([]Production, len(r.Productions))}
	for i := range r.Productions {
		cp.Productions[i] = r.Productions[i].Copy()
	}
	return cp
}

func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.NonTerminal)
	sb.WriteString(" -> ")
	for i, p := range r.Productions {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// CanProduce returns whether any alternative of r is exactly prod.
func (r Rule) CanProduce(prod Production) bool {
	for _, p := range r.Productions {
		if p.Equal(prod) {
			return true
		}
	}
	return false
}

// Equal returns whether r and o have the same head and the same productions
// in the same order.
func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		otherPtr, ok := o.(*Rule)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	if r.NonTerminal != other.NonTerminal {
		return false
	}
	if len(r.Productions) != len(other.Productions) {
		return false
	}
	for i := range r.Productions {
		if !r.Productions[i].Equal(other.Productions[i]) {
			return false
		}
	}
	return true
}

// Associativity is the tie-break policy assigned to a precedence level by a
// %left/%right/%nonassoc/%precedence directive.
type Associativity int

const (
	// AssocNone marks a level declared with %precedence: it supplies a
	// priority but no tie-break rule of its own.
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "none"
	}
}

// precLevel is one %left/%right/%nonassoc/%precedence declaration. Level is
// assigned in declaration order; later declarations outrank earlier ones, per
// §4.6.
type precLevel struct {
	level int
	assoc Associativity
}

// ActionBinding is a single semantic action attached to a production at a
// particular body position. Tag names the user-registered callback; Offset is
// the stack offset (relative to the handle) the action was recorded at. For
// an action left in place at the end of its production, Offset equals the
// length of the (possibly already-rewritten) body. For an action lifted out
// of a mid-rule position into a marker nonterminal (§4.1), Offset is the
// position of the marker within the rewritten parent body, letting the
// action still address symbols to its left.
type ActionBinding struct {
	Tag    string
	Offset int
}

// ProductionRecord is the authoritative, index-ordered record of a single
// production, carrying the metadata the analyzer, table builder and conflict
// solver need: its assigned index, its precedence tag, and any semantic
// actions bound to it.
type ProductionRecord struct {
	Head  string
	Body  Production
	Index int

	// Precedence is the symbol name whose declared level/associativity
	// governs conflicts this production is party to. Defaults to the
	// rightmost terminal in Body; "" if the production has no terminal and no
	// explicit %prec override.
	Precedence string

	// Actions maps body position (0..len(Body)) to the actions recorded at
	// that position, in the order they were bound. Position len(Body) is the
	// end-of-rule position.
	Actions map[int][]ActionBinding
}

// Copy returns a duplicate of pr.
func (pr ProductionRecord) Copy() ProductionRecord {
	cp := ProductionRecord{
		Head:       pr.Head,
		Body:       pr.Body.Copy(),
		Index:      pr.Index,
		Precedence: pr.Precedence,
		Actions:    make(map[int][]ActionBinding, len(pr.Actions)),
	}
	for pos, acts := range pr.Actions {
		cpActs := make([]ActionBinding, len(acts))
		copy(cpActs, acts)
		cp.Actions[pos] = cpActs
	}
	return cp
}

// HasMidRuleActions returns whether pr carries any action bound at a
// position short of the end of its body.
func (pr ProductionRecord) HasMidRuleActions() bool {
	for pos := range pr.Actions {
		if pos < len(pr.Body) {
			return true
		}
	}
	return false
}

// EndActions returns the actions bound at the end-of-rule position, in
// insertion order.
func (pr ProductionRecord) EndActions() []ActionBinding {
	return pr.Actions[len(pr.Body)]
}
