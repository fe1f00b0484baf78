package grammar

import (
	"github.com/riverstone-labs/redhorse/internal/util"
)

// Augmented returns a copy of g with a fresh start nonterminal prepended
// whose sole production is the old start symbol, per §3's definition of the
// augmented grammar: the accepting item is this new production with the dot
// at the end and lookahead $.
func (g Grammar) Augmented() Grammar {
	g2 := g.Copy()
	newStart := g2.GenerateUniqueName(g2.StartSymbol())
	g2.AddRule(newStart, Production{g.StartSymbol()})

	// AddRule appends; move the new rule and its record to the front.
	n := len(g2.rules) - 1
	g2.rules = append([]Rule{g2.rules[n]}, g2.rules[:n]...)
	for i, r := range g2.rules {
		g2.rulesByName[r.NonTerminal] = i
	}
	m := len(g2.records) - 1
	g2.records = append([]ProductionRecord{g2.records[m]}, g2.records[:m]...)
	for i := range g2.records {
		g2.records[i].Index = i
	}

	g2.Start = newStart
	return g2
}

// LR0Items enumerates every dotted item of every production in g: for a
// production of body length n, the n+1 items with the dot at positions
// 0 through n.
func (g Grammar) LR0Items() []LR0Item {
	var items []LR0Item
	for _, rec := range g.records {
		body := []string(rec.Body)
		for dot := 0; dot <= len(body); dot++ {
			left := make([]string, dot)
			copy(left, body[:dot])
			right := make([]string, len(body)-dot)
			copy(right, body[dot:])
			items = append(items, LR0Item{NonTerminal: rec.Head, Left: left, Right: right})
		}
	}
	return items
}

// LR0_CLOSURE expands kernel K to the full set of LR(0) items reachable by
// repeatedly expanding nonterminals immediately after the dot (§4.2's
// CLOSURE, without lookahead).
func (g Grammar) LR0_CLOSURE(K util.SVSet[LR0Item]) util.SVSet[LR0Item] {
	closure := util.NewSVSet(map[string]LR0Item(K))
	updated := true
	for updated {
		updated = false
		for _, name := range closure.Elements() {
			item := closure.Get(name)
			if len(item.Right) == 0 {
				continue
			}
			B := item.Right[0]
			if !g.IsNonTerminal(B) {
				continue
			}
			for _, gamma := range g.Rule(B).Productions {
				newItem := LR0Item{NonTerminal: B, Right: []string(gamma.Copy())}
				key := newItem.String()
				if !closure.Has(key) {
					closure.Set(key, newItem)
					updated = true
				}
			}
		}
	}
	return closure
}

// LR0_GOTO returns the kernel of the state reached from item set I on symbol
// X: every item in I with the dot immediately before X, advanced one
// position.
func (g Grammar) LR0_GOTO(I util.SVSet[LR0Item], X string) util.SVSet[LR0Item] {
	kernel := util.NewSVSet[LR0Item]()
	for _, name := range I.Elements() {
		item := I.Get(name)
		if len(item.Right) == 0 || item.Right[0] != X {
			continue
		}
		newLeft := make([]string, len(item.Left)+1)
		copy(newLeft, item.Left)
		newLeft[len(item.Left)] = X
		newRight := make([]string, len(item.Right)-1)
		copy(newRight, item.Right[1:])
		newItem := LR0Item{NonTerminal: item.NonTerminal, Left: newLeft, Right: newRight}
		kernel.Set(newItem.String(), newItem)
	}
	return kernel
}

// CanonicalLR0Items computes the canonical collection of sets of LR(0) items
// for g, which must already be augmented: BFS from the closure of the
// initial item [S' -> . S], following LR0_GOTO on every symbol that appears
// immediately after a dot in each discovered state.
func (g Grammar) CanonicalLR0Items() util.SVSet[util.SVSet[LR0Item]] {
	startProds := g.Rule(g.StartSymbol()).Productions
	var initItem LR0Item
	if len(startProds) > 0 {
		initItem = LR0Item{NonTerminal: g.StartSymbol(), Right: []string(startProds[0].Copy())}
	} else {
		initItem = LR0Item{NonTerminal: g.StartSymbol()}
	}
	initKernel := util.NewSVSet[LR0Item]()
	initKernel.Set(initItem.String(), initItem)

	start := g.LR0_CLOSURE(initKernel)
	states := util.NewSVSet[util.SVSet[LR0Item]]()
	states.Set(start.StringOrdered(), start)

	updated := true
	for updated {
		updated = false
		for _, stateName := range states.Elements() {
			I := states.Get(stateName)
			symbols := util.NewStringSet()
			for _, name := range I.Elements() {
				item := I.Get(name)
				if len(item.Right) > 0 {
					symbols.Add(item.Right[0])
				}
			}
			for _, X := range symbols.Elements() {
				kernel := g.LR0_GOTO(I, X)
				if kernel.Empty() {
					continue
				}
				next := g.LR0_CLOSURE(kernel)
				if !states.Has(next.StringOrdered()) {
					states.Set(next.StringOrdered(), next)
					updated = true
				}
			}
		}
	}
	return states
}

// LR1_CLOSURE expands kernel K to the full set of LR(1) items reachable by
// repeatedly expanding nonterminals immediately after the dot, assigning each
// newly-added item a lookahead drawn from FIRST(beta . a) per §4.2's
// CLOSURE.
func (g Grammar) LR1_CLOSURE(K util.SVSet[LR1Item]) util.SVSet[LR1Item] {
	closure := util.NewSVSet(map[string]LR1Item(K))
	updated := true
	for updated {
		updated = false
		for _, name := range closure.Elements() {
			item := closure.Get(name)
			if len(item.Right) == 0 {
				continue
			}
			B := item.Right[0]
			if !g.IsNonTerminal(B) {
				continue
			}
			beta := item.Right[1:]
			lookaheadSeq := make([]string, len(beta)+1)
			copy(lookaheadSeq, beta)
			lookaheadSeq[len(beta)] = item.Lookahead
			first := g.FirstOfSequence(lookaheadSeq)

			for _, gamma := range g.Rule(B).Productions {
				for _, b := range util.Alphabetized[string](first) {
					if b == Epsilon {
						continue
					}
					newItem := LR1Item{
						LR0Item:   LR0Item{NonTerminal: B, Right: []string(gamma.Copy())},
						Lookahead: b,
					}
					key := newItem.String()
					if !closure.Has(key) {
						closure.Set(key, newItem)
						updated = true
					}
				}
			}
		}
	}
	return closure
}

// LR1_GOTO returns the kernel of the state reached from item set I on symbol
// X: every item in I with the dot immediately before X, advanced one
// position with its lookahead carried over unchanged.
func (g Grammar) LR1_GOTO(I util.SVSet[LR1Item], X string) util.SVSet[LR1Item] {
	kernel := util.NewSVSet[LR1Item]()
	for _, name := range I.Elements() {
		item := I.Get(name)
		if len(item.Right) == 0 || item.Right[0] != X {
			continue
		}
		newLeft := make([]string, len(item.Left)+1)
		copy(newLeft, item.Left)
		newLeft[len(item.Left)] = X
		newRight := make([]string, len(item.Right)-1)
		copy(newRight, item.Right[1:])
		newItem := LR1Item{
			LR0Item:   LR0Item{NonTerminal: item.NonTerminal, Left: newLeft, Right: newRight},
			Lookahead: item.Lookahead,
		}
		kernel.Set(newItem.String(), newItem)
	}
	return kernel
}
