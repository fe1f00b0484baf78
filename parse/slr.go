package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
	"github.com/riverstone-labs/redhorse/automaton"
	"github.com/riverstone-labs/redhorse/grammar"
	"github.com/riverstone-labs/redhorse/types"
	"github.com/riverstone-labs/redhorse/internal/util"
)

// GenerateSimpleLRParser returns a parser that uses SLR bottom-up parsing to
// parse languages in g. It will return an error if g is not an SLR(1)
// grammar even after conflicts are resolved by g's declared precedence and
// associativity (§4.6); warn, if given, receives one message per conflict
// resolved by the yacc-compatible default (prefer shift) rather than a
// declared precedence.
func GenerateSimpleLRParser(g grammar.Grammar, warn ...func(string)) (*lrParser, error) {
	table, err := constructSimpleLRParseTable(g, firstWarnSink(warn))
	if err != nil {
		return &lrParser{}, err
	}

	return &lrParser{table: table, parseType: types.ParserSLR1, gram: g}, nil
}

// constructSimpleLRParseTable constructs the SLR(1) table for G. It augments
// grammar G to produce G', then the canonical collection of sets of items of G'
// is used to construct a table with applicable GOTO and ACTION columns.
//
// This is an implementation of Algorithm 4.46, "Constructing an SLR-parsing
// table", from the purple dragon book. In the comments, most of which is lifted
// directly from the textbook, GOTO[i, A] refers to the vaue of the table's
// GOTO column at state i, symbol A, while GOTO(i, A) refers to the "precomputed
// GOTO function for grammar G'".
func constructSimpleLRParseTable(g grammar.Grammar, warn func(string)) (LRParseTable, error) {
	g = g.LiftMidRuleActions()

	// we will skip a few steps here and simply grab the LR0 DFA for G' which
	// will pretty immediately give us our GOTO() function, since as purple
	// dragon book mentions, "intuitively, the GOTO function is used to define
	// the transitions in the LR(0) automaton for a grammar."
	lr0Automaton := automaton.NewLR0ViablePrefixNFA(g).ToDFA()
	lr0Automaton.NumberStates()

	table := &slrTable{
		g:         g,
		gPrime:    g.Augmented(),
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		lr0:       *lr0Automaton,
		itemCache: map[string]grammar.LR0Item{},
		warn:      warn,
	}

	for _, item := range table.gPrime.LR0Items() {
		table.itemCache[item.String()] = item
	}

	// check ahead that every conflict in ACTION is resolvable
	for i := range lr0Automaton.States() {
		for _, a := range table.gPrime.Terminals() {
			if _, err := resolveTableActionsLR0(table.g, table.gPrime, table.itemCache, table.lr0.GetValue(i), i, a, table.gStart, table.warn, table.followOf, table.Goto); err != nil {
				return nil, fmt.Errorf("grammar is not SLR(1): %w", err)
			}
		}
	}

	return table, nil
}

type slrTable struct {
	g         grammar.Grammar
	gPrime    grammar.Grammar
	gStart    string
	lr0       automaton.DFA[util.SVSet[grammar.LR0Item]]
	itemCache map[string]grammar.LR0Item
	gTerms    []string
	gNonTerms []string
	warn      func(string)
}

// followOf returns FOLLOW(nonTerm) under the augmented grammar, or nil for
// the augmented start symbol (which never reduces on a FOLLOW-restricted
// action).
func (slr *slrTable) followOf(nonTerm string) util.ISet[string] {
	if nonTerm == slr.gPrime.StartSymbol() {
		return nil
	}
	return slr.gPrime.FOLLOW(nonTerm)
}

// GetDFA returns the underlying LR(0) viable-prefix DFA with each state's
// item set collapsed to its string form, satisfying LRParseTable's
// table-agnostic GetDFA contract.
func (slr *slrTable) GetDFA() automaton.DFA[string] {
	return automaton.TransformDFA(slr.lr0, func(old util.SVSet[grammar.LR0Item]) string {
		return old.String()
	})
}

func (slr *slrTable) String() string {
	// need mapping of state to indexes
	stateRefs := map[string]string{}

	// need to gaurantee order
	stateNames := slr.lr0.States().Elements()
	sort.Strings(stateNames)

	// put the initial state first
	for i := range stateNames {
		if stateNames[i] == slr.lr0.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(slr.gTerms))
	copy(allTerms, slr.gTerms)
	allTerms = append(allTerms, "$")

	// okay now do data setup
	data := [][]string{}

	// set up the headers
	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range slr.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	// now need to do each state
	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := slr.Action(i, t)

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

		for _, nt := range slr.gNonTerms {
			var cell = ""

			gotoState, err := slr.Goto(i, nt)
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

func (slr *slrTable) Initial() string {
	return slr.lr0.Start
}

func (slr *slrTable) Goto(state, symbol string) (string, error) {
	// as purple  dragon book mentions, "intuitively, the GOTO function is used
	// to define the transitions in the LR(0) automaton for a grammar." We will
	// take advantage of the corollary; we already have the automaton defined,
	// so consequently the transitions of it can be used to derive the value of
	// GOTO(i, a).

	// assume the state is the concatenated items in the set. Up to caller to
	// enshore this is the glubbin case.

	// step 3 of algorithm 4.46, "Constructing an SLR-parsing table", for
	// reference

	// 3. The goto transitions for state i are constructed for all nonterminals
	// A using the rule: If GOTO(Iᵢ, A) = Iⱼ, then GOTO[i, A] = j.

	newState := slr.lr0.Next(state, symbol)

	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (slr *slrTable) Action(i, a string) LRAction {
	// step 2 of algorithm 4.46, "Constructing an SLR-parsing table": state i
	// is constructed from Iᵢ, with shift/reduce/accept determined by
	// scanning its items. Conflicts are resolved by precedence/associativity
	// per §4.6 (resolveConflict); construction already verified every
	// conflict here is resolvable.
	itemSet := slr.lr0.GetValue(i)
	act, err := resolveTableActionsLR0(slr.g, slr.gPrime, slr.itemCache, itemSet, i, a, slr.gStart, slr.warn, slr.followOf, slr.Goto)
	if err != nil {
		panic(fmt.Sprintf("grammar is not SLR(1): %s", err.Error()))
	}
	return act
}
