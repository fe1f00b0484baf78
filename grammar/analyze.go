package grammar

import (
	"github.com/riverstone-labs/redhorse/internal/util"
)

// Nullable returns whether X can derive the empty string. Terminals and the
// reserved symbols are never nullable.
func (g Grammar) Nullable(X string) bool {
	if g.IsTerminal(X) {
		return false
	}
	return g.nullableSet()[X]
}

// nullableSet computes the fixpoint set of nullable nonterminals: those with
// an epsilon alternative, or an alternative whose every symbol is itself
// nullable.
func (g Grammar) nullableSet() map[string]bool {
	nullable := map[string]bool{}
	changed := true
	for changed {
		changed = false
		for _, nt := range g.NonTerminals() {
			if nullable[nt] {
				continue
			}
			rule := g.Rule(nt)
			for _, p := range rule.Productions {
				if p.Equal(EpsilonProduction) {
					nullable[nt] = true
					changed = true
					break
				}
				allNullable := true
				for _, sym := range p {
					if g.IsTerminal(sym) || !nullable[sym] {
						allNullable = false
						break
					}
				}
				if allNullable {
					nullable[nt] = true
					changed = true
					break
				}
			}
		}
	}
	return nullable
}

// FIRST returns the FIRST set of the single symbol X: the set of terminals
// that can begin a string X derives, plus Epsilon if X is nullable. If X is
// a terminal, FIRST(X) is just {X}.
func (g Grammar) FIRST(X string) util.ISet[string] {
	return util.NewStringSet(g.firstOfSequence([]string(ToVector(X))))
}

// FirstOfSequence returns FIRST(X1 X2 ... Xn): the terminals (plus Epsilon,
// if the whole sequence is nullable) that can begin a string the sequence
// derives.
func (g Grammar) FirstOfSequence(seq []string) util.ISet[string] {
	return util.NewStringSet(g.firstOfSequence(seq))
}

func (g Grammar) firstOfSequence(seq []string) map[string]bool {
	firsts := map[string]bool{}
	nullable := g.nullableSet()

	if len(seq) == 0 {
		firsts[Epsilon] = true
		return firsts
	}

	for i, X := range seq {
		if g.IsTerminal(X) {
			firsts[X] = true
			break
		}

		rule := g.Rule(X)
		for _, p := range rule.Productions {
			if p.Equal(EpsilonProduction) {
				continue
			}
			for _, sub := range g.firstOfProductionPrefix(p, nullable) {
				firsts[sub] = true
			}
		}

		if !nullable[X] {
			break
		}
		if i == len(seq)-1 {
			firsts[Epsilon] = true
		}
	}

	return firsts
}

// firstOfProductionPrefix computes the terminals that can begin p, without
// contributing Epsilon for p itself (the caller decides whether the
// containing context is nullable).
func (g Grammar) firstOfProductionPrefix(p Production, nullable map[string]bool) []string {
	// each nonterminal is expanded once, so left recursion terminates.
	visited := map[string]bool{}
	var walk func(p Production) []string
	walk = func(p Production) []string {
		var out []string
		for _, sym := range p {
			if g.IsTerminal(sym) {
				out = append(out, sym)
				break
			}
			if !visited[sym] {
				visited[sym] = true
				rule := g.Rule(sym)
				for _, sub := range rule.Productions {
					if sub.Equal(EpsilonProduction) {
						continue
					}
					out = append(out, walk(sub)...)
				}
			}
			if !nullable[sym] {
				break
			}
		}
		return out
	}
	return walk(p)
}

// FOLLOW returns the FOLLOW set of symbol X (a nonterminal or a registered
// terminal): the terminals that can appear immediately after X in some
// sentential form, plus EndOfInput if X can be the rightmost symbol of the
// grammar.
func (g Grammar) FOLLOW(X string) util.ISet[string] {
	return util.NewStringSet(g.followSet(X))
}

func (g Grammar) followSet(X string) map[string]bool {
	follow := map[string]map[string]bool{}
	for _, nt := range g.NonTerminals() {
		follow[nt] = map[string]bool{}
	}
	for _, t := range g.Terminals() {
		follow[t] = map[string]bool{}
	}
	if follow[g.StartSymbol()] == nil {
		follow[g.StartSymbol()] = map[string]bool{}
	}
	follow[g.StartSymbol()][EndOfInput] = true

	nullable := g.nullableSet()

	changed := true
	for changed {
		changed = false
		for _, nt := range g.NonTerminals() {
			rule := g.Rule(nt)
			for _, p := range rule.Productions {
				for i, B := range p {
					beta := p[i+1:]
					firstBeta := g.firstOfSequence(beta)

					before := len(follow[B])
					for t := range firstBeta {
						if t == Epsilon {
							continue
						}
						follow[B][t] = true
					}

					betaNullable := len(beta) == 0
					if !betaNullable {
						betaNullable = true
						for _, sym := range beta {
							if g.IsTerminal(sym) || !nullable[sym] {
								betaNullable = false
								break
							}
						}
					}
					if betaNullable {
						for t := range follow[nt] {
							follow[B][t] = true
						}
					}

					if len(follow[B]) != before {
						changed = true
					}
				}
			}
		}
	}

	return follow[X]
}

// SELECT returns the SELECT set of the production rec: the terminals on
// which the table builder must choose rec during predictive (LL(1)) parsing,
// per the dragon book's definition SELECT(A -> alpha) = FIRST(alpha) if
// epsilon is not in FIRST(alpha), else (FIRST(alpha) - {epsilon}) union
// FOLLOW(A).
func (g Grammar) SELECT(rec ProductionRecord) util.ISet[string] {
	first := g.firstOfSequence(rec.Body)
	sel := map[string]bool{}
	hasEpsilon := false
	for t := range first {
		if t == Epsilon {
			hasEpsilon = true
			continue
		}
		sel[t] = true
	}
	if hasEpsilon || len(rec.Body) == 0 {
		for t := range g.followSet(rec.Head) {
			sel[t] = true
		}
	}
	return util.NewStringSet(sel)
}

// IsLL1 returns whether the grammar satisfies the LL(1) condition: for every
// pair of distinct alternatives of a nonterminal, their SELECT sets are
// disjoint.
func (g Grammar) IsLL1() bool {
	for _, nt := range g.NonTerminals() {
		rule := g.Rule(nt)
		for i := range rule.Productions {
			for j := i + 1; j < len(rule.Productions); j++ {
				recI := ProductionRecord{Head: nt, Body: rule.Productions[i]}
				recJ := ProductionRecord{Head: nt, Body: rule.Productions[j]}
				selI := g.SELECT(recI)
				selJ := g.SELECT(recJ)
				if !selI.DisjointWith(selJ) {
					return false
				}
			}
		}
	}
	return true
}
