package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
	"github.com/riverstone-labs/redhorse/automaton"
	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/internal/util"
	"github.com/riverstone-labs/redhorse/types"
)

// GenerateCanonicalLR1Parser returns a parser that uses the set of canonical
// LR(1) items from g to parse input in language g. Conflicts are resolved
// via g's declared precedence/associativity (§4.6) rather than rejected; warn,
// if given, receives one message per conflict resolved by a default (as
// opposed to a declared-precedence) policy.
func GenerateCanonicalLR1Parser(g grammar.Grammar, warn ...func(string)) (*lrParser, error) {
	table, err := constructCanonicalLR1ParseTable(g, firstWarnSink(warn))
	if err != nil {
		return &lrParser{}, err
	}

	return &lrParser{table: table, parseType: types.ParserCLR1, gram: g}, nil
}

// constructCanonicalLR1ParseTable constructs the canonical LR(1) table for G.
// It augments grammar G to produce G', then the canonical collection of sets of
// LR(1) items of G' is used to construct a table with applicable GOTO and
// ACTION columns.
//
// This is an implementation of Algorithm 4.56, "Construction of canonical-LR
// parsing tables", from the purple dragon book. In the comments, most of which
// is lifted directly from the textbook, GOTO[i, A] refers to the vaue of the
// table's GOTO column at state i, symbol A, while GOTO(i, A) refers to the
// "precomputed GOTO function for grammar G'".
func constructCanonicalLR1ParseTable(g grammar.Grammar, warn func(string)) (LRParseTable, error) {
	g = g.LiftMidRuleActions()

	// we will skip a few steps here and simply grab the LR0 DFA for G' which
	// will pretty immediately give us our GOTO() function, since as purple
	// dragon book mentions, "intuitively, the GOTO function is used to define
	// the transitions in the LR(0) automaton for a grammar."
	lr1Automaton := automaton.NewLR1ViablePrefixDFA(g)

	table := &canonicalLR1Table{
		g:         g,
		gPrime:    g.Augmented(),
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		lr1:       lr1Automaton,
		itemCache: map[string]grammar.LR1Item{},
		warn:      warn,
	}

	// collect item cache from the states of our lr1 DFA
	allStates := util.OrderedKeys(table.lr1.States())
	for _, dfaStateName := range allStates {
		itemSet := table.lr1.GetValue(dfaStateName)
		for k := range itemSet {
			table.itemCache[k] = itemSet[k]
		}
	}

	// check that we dont hit unresolvable conflicts in ACTION; any conflict
	// that resolveConflict can settle is allowed through, with Action doing
	// the same resolution again (deterministically) at query time.
	for i := range lr1Automaton.States() {
		for _, a := range table.gPrime.Terminals() {
			if _, err := resolveTableActionsLR1(table.g, table.gPrime, table.itemCache, table.lr1.GetValue(i), i, a, table.gStart, table.warn, table.Goto); err != nil {
				return nil, fmt.Errorf("grammar is not LR(1): %w", err)
			}
		}
	}

	return table, nil
}

type canonicalLR1Table struct {
	g         grammar.Grammar
	gPrime    grammar.Grammar
	gStart    string
	lr1       automaton.DFA[util.SVSet[grammar.LR1Item]]
	itemCache map[string]grammar.LR1Item
	gTerms    []string
	gNonTerms []string
	warn      func(string)
}

func (clr1 *canonicalLR1Table) String() string {
	// need mapping of state to indexes
	stateRefs := map[string]string{}

	// need to gaurantee order
	stateNames := clr1.lr1.States().Elements()
	sort.Strings(stateNames)

	// put the initial state first
	for i := range stateNames {
		if stateNames[i] == clr1.lr1.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(clr1.gTerms))
	copy(allTerms, clr1.gTerms)
	allTerms = append(allTerms, "$")

	// okay now do data setup
	data := [][]string{}

	// set up the headers
	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range clr1.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	// now need to do each state
	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := clr1.Action(i, t)

			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				// reduces to the state that corresponds with the symbol
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%s", stateRefs[act.State])
			case LRError:
				// do nothing, err is blank
			}

			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range clr1.gNonTerms {
			var cell = ""

			gotoState, err := clr1.Goto(i, nt)
			if err == nil {
				cell = stateRefs[gotoState]
			}

			row = append(row, cell)
		}

		data = append(data, row)
	}

	// This used to be 120 width. Glu88in' *8et* on that. lol.
	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// GetDFA returns the underlying canonical LR(1) viable-prefix DFA with each
// state's item set collapsed to its string form, satisfying LRParseTable's
// table-agnostic GetDFA contract.
func (clr1 *canonicalLR1Table) GetDFA() automaton.DFA[string] {
	return automaton.TransformDFA(clr1.lr1, func(old util.SVSet[grammar.LR1Item]) string {
		return old.String()
	})
}

func (clr1 *canonicalLR1Table) Initial() string {
	return clr1.lr1.Start
}

func (clr1 *canonicalLR1Table) Goto(state, symbol string) (string, error) {
	// step 3 of algorithm 4.56, "Construction of canonical-LR parsing tables",
	// for reference:

	// 3. The goto transitions for state i are constructed for all nonterminals
	// A using the rule: If GOTO(Iᵢ, A) = Iⱼ, then GOTO[i, A] = j.
	newState := clr1.lr1.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (clr1 *canonicalLR1Table) Action(i, a string) LRAction {
	// step 2 of algorithm 4.56, "Construction of canonical-LR parsing tables":
	// state i is constructed from Iᵢ, with shift/reduce/accept determined by
	// scanning its items (Iᵢ = clr1.lr1.GetValue(i)). Conflicts among matches
	// are resolved by precedence/associativity per §4.6 (resolveConflict);
	// construction already verified every conflict here is resolvable.
	itemSet := clr1.lr1.GetValue(i)
	act, err := resolveTableActionsLR1(clr1.g, clr1.gPrime, clr1.itemCache, itemSet, i, a, clr1.gStart, clr1.warn, clr1.Goto)
	if err != nil {
		panic(fmt.Sprintf("grammar is not LR(1): %s", err.Error()))
	}
	return act
}
