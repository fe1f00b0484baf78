package parse

import (
	"fmt"

	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/internal/util"
)

func isShiftReduceConlict(act1, act2 LRAction) (isSR bool, shiftAct LRAction) {
	if act1.Type == LRReduce && act2.Type == LRShift {
		return true, act2
	}
	if act2.Type == LRReduce && act1.Type == LRShift {
		return true, act1
	}

	return false, act1
}

func makeLRConflictError(act1, act2 LRAction, onInput string) error {
	if act1.Type == LRReduce && act2.Type == LRShift || act1.Type == LRShift && act2.Type == LRReduce {
		// shift-reduce conflict

		reduceRule := ""
		if act1.Type == LRReduce {
			reduceRule = act1.Symbol + " -> " + act1.Production.String()
		} else {
			reduceRule = act2.Symbol + " -> " + act2.Production.String()
		}
		return fmt.Errorf("shift/reduce conflict detected on terminal %q (shift or reduce %s)", onInput, reduceRule)
	} else if act1.Type == LRReduce && act2.Type == LRReduce {
		// reduce-reduce conflict

		reduce1 := act1.Symbol + " -> " + act1.Production.String()
		reduce2 := act2.Symbol + " -> " + act2.Production.String()
		return fmt.Errorf("reduce/reduce conflict detected on terminal %q (reduce %s or reduce %s)", onInput, reduce1, reduce2)
	} else if act1.Type == LRAccept || act2.Type == LRAccept {
		nonAcceptAct := act2

		if act2.Type == LRAccept {
			nonAcceptAct = act1
		}

		// accept-? conflict
		if nonAcceptAct.Type == LRShift {
			return fmt.Errorf("accept/shift conflict detected on terminal %q", onInput)
		} else if nonAcceptAct.Type == LRReduce {
			reduce := nonAcceptAct.Symbol + " -> " + nonAcceptAct.Production.String()
			return fmt.Errorf("accept/reduce conflict detected on terminal %q (accept or reduce %s)", onInput, reduce)
		}
	} else if act1.Type == LRShift && act2.Type == LRShift {
		return fmt.Errorf("(!) shift/shift conflict on terminal %q", onInput)
	}
	return fmt.Errorf("LR action conflict on terminal %q (%s or %s)", onInput, act1.String(), act2.String())
}

// resolveTableActionsLR1 scans the LR(1) item set at state i for every
// action applicable on terminal a (shift, reduce, or accept), resolving any
// conflict among them via resolveConflict and reporting the outcome through
// warn when a default (rather than declared-precedence) policy was used.
// Shared by the canonical-LR(1) and LALR(1) table builders, whose ACTION
// construction (Algorithm 4.56 step 2, reused verbatim by Algorithm 4.59) is
// otherwise identical.
func resolveTableActionsLR1(g, gPrime grammar.Grammar, itemCache map[string]grammar.LR1Item, itemSet util.SVSet[grammar.LR1Item], i, a, gStart string, warn func(string), gotoFn func(state, symbol string) (string, error)) (LRAction, error) {
	var found bool
	var act LRAction

	for itemStr := range itemSet {
		item := itemCache[itemStr]
		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right
		b := item.Lookahead

		if gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			if j, err := gotoFn(i, a); err == nil {
				newAct := LRAction{Type: LRShift, State: j}
				if found && !newAct.Equal(act) {
					resolved, warning := resolveConflict(g, act, newAct, a)
					if resolved.Type == LRError {
						return resolved, warning
					}
					if warning != nil && warn != nil {
						warn(warning.Error())
					}
					act = resolved
				} else {
					act = newAct
					found = true
				}
			}
		}

		if len(beta) == 0 && A != gPrime.StartSymbol() && a == b {
			newAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if found && !newAct.Equal(act) {
				resolved, warning := resolveConflict(g, act, newAct, a)
				if resolved.Type == LRError {
					return resolved, warning
				}
				if warning != nil && warn != nil {
					warn(warning.Error())
				}
				act = resolved
			} else {
				act = newAct
				found = true
			}
		}

		if a == "$" && b == "$" && A == gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == gStart && len(beta) == 0 {
			newAct := LRAction{Type: LRAccept}
			if found && !newAct.Equal(act) {
				resolved, warning := resolveConflict(g, act, newAct, a)
				if resolved.Type == LRError {
					return resolved, warning
				}
				if warning != nil && warn != nil {
					warn(warning.Error())
				}
				act = resolved
			} else {
				act = newAct
				found = true
			}
		}
	}

	if !found {
		act.Type = LRError
	}

	return act, nil
}

// resolveTableActionsLR0 is resolveTableActionsLR1's counterpart for
// FOLLOW-set-restricted tables (SLR and LR(0)): reduce actions are offered
// for every a in FOLLOW(A) (SLR) or every terminal (LR(0), via a nil
// followFn), rather than consulting a per-item lookahead.
func resolveTableActionsLR0(g, gPrime grammar.Grammar, itemCache map[string]grammar.LR0Item, itemSet util.SVSet[grammar.LR0Item], i, a, gStart string, warn func(string), followFn func(nonTerm string) util.ISet[string], gotoFn func(state, symbol string) (string, error)) (LRAction, error) {
	var found bool
	var act LRAction

	for itemStr := range itemSet {
		item := itemCache[itemStr]
		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right

		if gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			if j, err := gotoFn(i, a); err == nil {
				newAct := LRAction{Type: LRShift, State: j}
				if found && !newAct.Equal(act) {
					resolved, warning := resolveConflict(g, act, newAct, a)
					if resolved.Type == LRError {
						return resolved, warning
					}
					if warning != nil && warn != nil {
						warn(warning.Error())
					}
					act = resolved
				} else {
					act = newAct
					found = true
				}
			}
		}

		reduceOK := len(beta) == 0 && A != gPrime.StartSymbol()
		if reduceOK && followFn != nil {
			reduceOK = followFn(A).Has(a)
		}
		if reduceOK {
			newAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if found && !newAct.Equal(act) {
				resolved, warning := resolveConflict(g, act, newAct, a)
				if resolved.Type == LRError {
					return resolved, warning
				}
				if warning != nil && warn != nil {
					warn(warning.Error())
				}
				act = resolved
			} else {
				act = newAct
				found = true
			}
		}

		if a == "$" && A == gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == gStart && len(beta) == 0 {
			newAct := LRAction{Type: LRAccept}
			if found && !newAct.Equal(act) {
				resolved, warning := resolveConflict(g, act, newAct, a)
				if resolved.Type == LRError {
					return resolved, warning
				}
				if warning != nil && warn != nil {
					warn(warning.Error())
				}
				act = resolved
			} else {
				act = newAct
				found = true
			}
		}
	}

	if !found {
		act.Type = LRError
	}

	return act, nil
}

// firstWarnSink returns the first sink in warn, or a no-op if none was
// given, letting every Generate*Parser constructor accept an optional
// trailing warning callback (§4.12's ambient trace-callback pattern)
// without breaking existing single-argument call sites.
func firstWarnSink(warn []func(string)) func(string) {
	for _, w := range warn {
		if w != nil {
			return w
		}
	}
	return func(string) {}
}

// precedenceOf returns the declared precedence/associativity that governs
// act's production (act.Type must be LRReduce), looked up via the
// production's recorded precedence tag (§4.6), or ok=false if the
// production carries no tag at all (no rightmost terminal and no %prec
// override).
func precedenceOf(g grammar.Grammar, act LRAction) (level int, assoc grammar.Associativity, ok bool) {
	for _, rec := range g.Records() {
		if rec.Head == act.Symbol && rec.Body.Equal(act.Production) {
			tag := rec.Precedence
			for i := len(rec.Body) - 1; tag == "" && i >= 0; i-- {
				if g.IsTerminal(rec.Body[i]) {
					tag = rec.Body[i]
				}
			}
			if tag == "" {
				return 0, grammar.AssocNone, false
			}
			return g.Precedence(tag)
		}
	}
	return 0, grammar.AssocNone, false
}

// resolveConflict applies spec.md §4.6's precedence/associativity policy to
// a shift/reduce or reduce/reduce conflict between the already-chosen act1
// and newly-discovered act2 on lookahead onInput. It always returns a
// resolved action; warning is non-nil when the resolution fell back to the
// yacc-compatible default (prefer shift, or keep the earlier-declared
// reduction) because one or both sides had no declared precedence, so
// callers can route it to their trace sink.
func resolveConflict(g grammar.Grammar, act1, act2 LRAction, onInput string) (resolved LRAction, warning error) {
	if act1.Equal(act2) {
		return act1, nil
	}

	if isSR, shiftAct := isShiftReduceConlict(act1, act2); isSR {
		reduceAct := act1
		if act1.Type == LRShift {
			reduceAct = act2
		}

		shiftLevel, shiftAssoc, shiftOk := g.Precedence(onInput)
		reduceLevel, _, reduceOk := precedenceOf(g, reduceAct)

		if shiftOk && reduceOk {
			switch {
			case shiftLevel > reduceLevel:
				return shiftAct, nil
			case reduceLevel > shiftLevel:
				return reduceAct, nil
			default:
				switch shiftAssoc {
				case grammar.AssocRight:
					return shiftAct, nil
				case grammar.AssocNonAssoc:
					return LRAction{Type: LRError}, fmt.Errorf("%%nonassoc conflict on %q: no legal action (shift %s, reduce %s -> %s)", onInput, shiftAct.State, reduceAct.Symbol, reduceAct.Production.String())
				default:
					// AssocLeft or AssocNone (a %precedence level with no
					// tie-break rule of its own): reduce wins.
					return reduceAct, nil
				}
			}
		}

		return shiftAct, fmt.Errorf("%w (no precedence declared; defaulted to shift)", makeLRConflictError(act1, act2, onInput))
	}

	if act1.Type == LRReduce && act2.Type == LRReduce {
		level1, _, ok1 := precedenceOf(g, act1)
		level2, _, ok2 := precedenceOf(g, act2)
		if ok1 && ok2 && level1 != level2 {
			if level1 > level2 {
				return act1, nil
			}
			return act2, nil
		}

		// no distinguishing precedence; keep whichever production is
		// declared earlier in g.
		kept := act1
		for _, rec := range g.Records() {
			if rec.Head == act2.Symbol && rec.Body.Equal(act2.Production) {
				kept = act2
				break
			}
			if rec.Head == act1.Symbol && rec.Body.Equal(act1.Production) {
				break
			}
		}
		return kept, fmt.Errorf("%w (no distinguishing precedence; kept the earlier-declared rule)", makeLRConflictError(act1, act2, onInput))
	}

	panic(fmt.Sprintf("impossible in canonical construction: %s", makeLRConflictError(act1, act2, onInput)))
}

type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

type LRAction struct {
	Type LRActionType

	// Production is used when Type is LRReduce. It is the production which
	// should be reduced; the β of A -> β.
	Production grammar.Production

	// Symbol is used when Type is LRReduce. It is the symbol to reduce the
	// production to; the A of A -> β.
	Symbol string

	// State is the state to shift to. It is used only when Type is LRShift.
	State string
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %s -> %s>", act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %s>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr := o.(*LRAction)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if act.Type != other.Type {
		return false
	} else if !act.Production.Equal(other.Production) {
		return false
	} else if act.State != other.State {
		return false
	} else if act.Symbol != other.Symbol {
		return false
	}

	return true
}
