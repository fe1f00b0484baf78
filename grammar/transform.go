package grammar

import (
	"fmt"
	"math"
)

// GenerateUniqueName generates a nonterminal name guaranteed not to collide
// with any already defined in g, derived from original.
func (g Grammar) GenerateUniqueName(original string) string {
	newName := original + "-P"
	for g.Rule(newName).NonTerminal != "" {
		newName += "P"
	}
	return newName
}

// GenerateUniqueTerminal generates a terminal name guaranteed not to collide
// with any already defined in g, derived from original. Used to mint the
// LALR(1) lookahead-discovery sentinel (§4.3) should a grammar happen to
// already define a terminal named "#".
func (g Grammar) GenerateUniqueTerminal(original string) string {
	newName := original
	for g.IsTerminal(newName) {
		newName += "'"
	}
	return newName
}

// removeEpsilonsFromList drops every alternative in from that is exactly the
// epsilon production.
func removeEpsilonsFromList(from []Production) []Production {
	var out []Production
	for _, p := range from {
		if !p.Equal(EpsilonProduction) {
			out = append(out, p)
		}
	}
	return out
}

// epsilonRewrites returns every production obtained from prod by independently
// keeping or dropping each occurrence of epsilonable, deduplicated. If every
// occurrence is dropped and nothing remains, the epsilon production is
// included.
func epsilonRewrites(epsilonable string, prod Production) []Production {
	var occurrences int
	for _, sym := range prod {
		if sym == epsilonable {
			occurrences++
		}
	}
	if occurrences == 0 {
		return []Production{prod}
	}

	perms := int(math.Pow(2, float64(occurrences)))
	var rewrites []Production
	seen := map[string]bool{}

	for i := perms - 1; i >= 0; i-- {
		var newProd Production
		var bitIdx int
		for _, sym := range prod {
			if sym == epsilonable {
				if (i>>bitIdx)&1 > 0 {
					newProd = append(newProd, sym)
				}
				bitIdx++
			} else {
				newProd = append(newProd, sym)
			}
		}
		if len(newProd) == 0 {
			newProd = EpsilonProduction
		}
		key := newProd.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		rewrites = append(rewrites, newProd)
	}

	return rewrites
}

// RemoveEpsilons returns a grammar deriving the same language as g (save for
// the empty string) with every epsilon production propagated out and
// eliminated. Call Validate before this.
func (g Grammar) RemoveEpsilons() Grammar {
	g = g.Copy()
	propagated := map[string]bool{}

	for {
		var toPropagate string
		for _, A := range g.NonTerminals() {
			if g.Rule(A).HasProduction(EpsilonProduction) {
				toPropagate = A
				break
			}
		}
		if toPropagate == "" {
			break
		}
		A := toPropagate

		var producesA []string
		for _, B := range g.NonTerminals() {
			if g.Rule(B).CanProduceSymbol(A) {
				producesA = append(producesA, B)
			}
		}

		ruleA := g.Rule(A)
		for _, B := range producesA {
			ruleB := g.Rule(B)

			if len(ruleA.Productions) == 1 {
				for i, bProd := range ruleB.Productions {
					var newProd Production
					if len(bProd) == 1 && bProd[0] == A {
						newProd = EpsilonProduction
					} else {
						for _, sym := range bProd {
							if sym != A {
								newProd = append(newProd, sym)
							}
						}
					}
					ruleB.Productions[i] = newProd
				}
			} else {
				var newProds []Production
				for _, bProd := range ruleB.Productions {
					if bProd.HasSymbol(A) {
						newProds = append(newProds, epsilonRewrites(A, bProd)...)
					} else {
						newProds = append(newProds, bProd)
					}
				}
				if propagated[B] {
					newProds = removeEpsilonsFromList(newProds)
				}
				ruleB.Productions = newProds
			}

			if A == B {
				ruleA = ruleB
			}
			g.rules[g.rulesByName[B]] = ruleB
		}

		propagated[A] = true
		ruleA.Productions = removeEpsilonsFromList(ruleA.Productions)
		g.rules[g.rulesByName[A]] = ruleA
	}

	g.reindexRecords()
	return g
}

// RemoveUnitProductions returns a grammar deriving the same language as g
// with every unit production (A -> B for nonterminals A, B) eliminated by
// hoisting B's alternatives directly into A.
func (g Grammar) RemoveUnitProductions() Grammar {
	g = g.Copy()
	for _, nt := range g.NonTerminals() {
		rule := g.Rule(nt)
		resolved := map[string]bool{}
		for len(rule.UnitProductions(g)) > 0 {
			var newProds []Production
			for _, p := range rule.Productions {
				if len(p) == 1 && g.IsNonTerminal(p[0]) && p[0] != nt {
					hoisted := g.Rule(p[0])
					var included []Production
					for _, hp := range hoisted.Productions {
						if len(hp) == 1 && hp[0] == nt {
							continue
						} else if rule.CanProduce(hp) {
							continue
						} else if resolved[p[0]] {
							continue
						}
						included = append(included, hp)
					}
					newProds = append(newProds, included...)
					resolved[p[0]] = true
				} else {
					newProds = append(newProds, p)
				}
			}
			rule.Productions = newProds
		}
		g.rules[g.rulesByName[nt]] = rule
	}

	g = g.RemoveUnreachableNonTerminals()
	g.reindexRecords()
	return g
}

// RemoveLeftRecursion returns a grammar with no left recursion, direct or
// indirect, suitable for top-down (LL) analysis. This forces prior removal
// of epsilon and unit productions, which the algorithm (dragon book
// Algorithm 4.19) requires as a precondition.
func (g Grammar) RemoveLeftRecursion() Grammar {
	g = g.RemoveEpsilons().RemoveUnitProductions()

	updated := true
	for updated {
		updated = false
		nts := g.ReversePriorityNonTerminals()
		for i := range nts {
			AiRule := g.Rule(nts[i])
			for j := 0; j < i; j++ {
				AjRule := g.Rule(nts[j])

				var newProds []Production
				for _, prod := range AiRule.Productions {
					if len(prod) > 0 && prod[0] == nts[j] {
						updated = true
						gamma := prod[1:]
						for _, delta := range AjRule.Productions {
							combined := append(append(Production{}, delta...), gamma...)
							newProds = append(newProds, combined)
						}
					} else {
						newProds = append(newProds, prod)
					}
				}
				AiRule.Productions = newProds
				g.rules[g.rulesByName[nts[i]]] = AiRule
			}

			var alphas, betas []Production
			for _, prod := range AiRule.Productions {
				if len(prod) > 0 && prod[0] == AiRule.NonTerminal {
					alphas = append(alphas, prod[1:])
				} else {
					betas = append(betas, prod)
				}
			}

			if len(alphas) == 0 {
				continue
			}

			newName := g.GenerateUniqueName(AiRule.NonTerminal)
			var aiProds []Production
			for _, beta := range betas {
				aiProds = append(aiProds, append(append(Production{}, beta...), newName))
			}
			AiRule.Productions = aiProds
			g.rules[g.rulesByName[nts[i]]] = AiRule

			var newRule Rule
			newRule.NonTerminal = newName
			for _, alpha := range alphas {
				newRule.Productions = append(newRule.Productions, append(append(Production{}, alpha...), newName))
			}
			newRule.Productions = append(newRule.Productions, EpsilonProduction)
			g.rulesByName[newName] = len(g.rules)
			g.rules = append(g.rules, newRule)
		}
	}

	g = g.RemoveUnreachableNonTerminals()
	g.reindexRecords()
	return g
}

// longestCommonPrefixLen returns the length of the longest common prefix
// shared by every production in prods, counted in whole symbols.
func longestCommonPrefixLen(prods []Production) int {
	if len(prods) == 0 {
		return 0
	}
	n := len(prods[0])
	for _, p := range prods[1:] {
		if len(p) < n {
			n = len(p)
		}
	}
	for pos := 0; pos < n; pos++ {
		sym := prods[0][pos]
		for _, p := range prods[1:] {
			if p[pos] != sym {
				return pos
			}
		}
	}
	return n
}

// LeftFactor returns a grammar equivalent to g but left-factored: whenever
// two or more alternatives of a nonterminal share a common prefix, that
// prefix is factored into its own production followed by a new nonterminal
// covering the divergent suffixes. Implements dragon book Algorithm 4.21.
func (g Grammar) LeftFactor() Grammar {
	g = g.Copy()

	changed := true
	for changed {
		changed = false
		for _, nt := range g.NonTerminals() {
			rule := g.Rule(nt)

			byFirstSymbol := map[string][]Production{}
			var order []string
			for _, p := range rule.Productions {
				key := ""
				if len(p) > 0 {
					key = p[0]
				}
				if _, ok := byFirstSymbol[key]; !ok {
					order = append(order, key)
				}
				byFirstSymbol[key] = append(byFirstSymbol[key], p)
			}

			var newProds []Production
			for _, key := range order {
				group := byFirstSymbol[key]
				if key == "" || len(group) < 2 {
					newProds = append(newProds, group...)
					continue
				}

				prefixLen := longestCommonPrefixLen(group)
				if prefixLen < 1 {
					newProds = append(newProds, group...)
					continue
				}

				changed = true
				prefix := group[0][:prefixLen]
				newName := g.GenerateUniqueName(nt)

				var factoredRule Rule
				factoredRule.NonTerminal = newName
				for _, p := range group {
					suffix := p[prefixLen:]
					if len(suffix) == 0 {
						suffix = EpsilonProduction
					}
					factoredRule.Productions = append(factoredRule.Productions, suffix)
				}
				g.rulesByName[newName] = len(g.rules)
				g.rules = append(g.rules, factoredRule)

				newProds = append(newProds, append(append(Production{}, prefix...), newName))
			}

			rule.Productions = newProds
			g.rules[g.rulesByName[nt]] = rule
		}
	}

	g.reindexRecords()
	return g
}

// LiftMidRuleActions rewrites g so every semantic action recorded at a
// position short of a production's end (§4.1) is spliced out into a fresh
// epsilon-producing marker nonterminal (M@n) inserted into the body at that
// position. The marker carries the lifted action as its own end-of-rule
// action, so it fires the moment the PDA driver (§4.8) reduces the marker —
// which happens immediately after the symbols to its left are shifted, with
// no special-casing needed for actions bound mid-production. Actions left at
// the true end of a production are kept in place, reindexed to the new
// (longer) body length.
func (g Grammar) LiftMidRuleActions() Grammar {
	g = g.Copy()

	markerNum := 0
	withOffset := func(acts []ActionBinding, off int) []ActionBinding {
		out := make([]ActionBinding, len(acts))
		for k, a := range acts {
			a.Offset = off
			out[k] = a
		}
		return out
	}
	for {
		target := -1
		for i, rec := range g.records {
			if rec.HasMidRuleActions() {
				target = i
				break
			}
		}
		if target < 0 {
			break
		}

		rec := g.records[target]
		oldBody := rec.Body
		var newBody Production
		newActions := map[int][]ActionBinding{}

		for pos := 0; pos <= len(oldBody); pos++ {
			if pos < len(oldBody) {
				if acts, ok := rec.Actions[pos]; ok && len(acts) > 0 {
					markerName := g.GenerateUniqueName(fmt.Sprintf("%s@%d", rec.Head, markerNum))
					markerNum++

					g.AddRule(markerName, EpsilonProduction)
					markerIdx := len(g.records) - 1
					markerRec := g.records[markerIdx]
					markerRec.Actions[0] = withOffset(acts, len(newBody))
					g.records[markerIdx] = markerRec

					newBody = append(newBody, markerName)
				}
				newBody = append(newBody, oldBody[pos])
			} else if acts, ok := rec.Actions[pos]; ok && len(acts) > 0 {
				newActions[len(newBody)] = withOffset(acts, len(newBody))
			}
		}

		rec.Body = newBody
		rec.Actions = newActions
		g.records[target] = rec
		g.syncRuleBody(rec)
	}

	return g
}

// syncRuleBody writes rec's (already-updated) Body back into the
// rules-grouping view at the production slot matching rec.Index, keeping
// the two views of the grammar consistent after an in-place record rewrite.
func (g *Grammar) syncRuleBody(rec ProductionRecord) {
	idx, ok := g.rulesByName[rec.Head]
	if !ok {
		return
	}

	slot := 0
	for _, r := range g.records {
		if r.Head != rec.Head {
			continue
		}
		if r.Index == rec.Index {
			break
		}
		slot++
	}

	rule := g.rules[idx]
	if slot < len(rule.Productions) {
		rule.Productions[slot] = rec.Body
	}
	g.rules[idx] = rule
}

// reindexRecords rebuilds g.records from g.rules after a rewriting pass has
// restructured productions wholesale, preserving precedence/action metadata
// for productions that survived unchanged and assigning fresh, unannotated
// records for newly synthesized ones.
func (g *Grammar) reindexRecords() {
	old := g.records
	lookup := map[string]ProductionRecord{}
	for _, rec := range old {
		lookup[rec.Head+"\x00"+rec.Body.String()] = rec
	}

	var fresh []ProductionRecord
	for _, rule := range g.rules {
		for _, p := range rule.Productions {
			key := rule.NonTerminal + "\x00" + p.String()
			if rec, ok := lookup[key]; ok {
				rec.Index = len(fresh)
				rec.Body = p
				fresh = append(fresh, rec)
				continue
			}
			rec := ProductionRecord{
				Head:    rule.NonTerminal,
				Body:    p,
				Index:   len(fresh),
				Actions: map[int][]ActionBinding{},
			}
			if term, ok := p.RightmostTerminal(); ok {
				rec.Precedence = term
			}
			fresh = append(fresh, rec)
		}
	}
	g.records = fresh
}
