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

// GenerateLR0Parser returns a parser that uses LR(0) bottom-up parsing to
// parse languages in g: every reduce action in a state applies regardless of
// lookahead, the most restrictive (and least often applicable) of the four
// constructors. It will return an error if g is not an LR(0) grammar even
// after conflicts are resolved by g's declared precedence and associativity
// (§4.6); warn, if given, receives one message per conflict resolved by the
// yacc-compatible default rather than a declared precedence.
func GenerateLR0Parser(g grammar.Grammar, warn ...func(string)) (*lrParser, error) {
	table, err := constructLR0ParseTable(g, firstWarnSink(warn))
	if err != nil {
		return &lrParser{}, err
	}

	return &lrParser{table: table, parseType: types.ParserLR0, gram: g}, nil
}

// constructLR0ParseTable constructs the LR(0) table for G. It augments
// grammar G to produce G', then the canonical collection of sets of LR(0)
// items of G' is used to construct a table with applicable GOTO and ACTION
// columns.
//
// This is Algorithm 4.46's SLR construction (same shape as
// constructSimpleLRParseTable) with the FOLLOW-set restriction on reduce
// actions dropped: a reduce on [A -> α.] is offered for every terminal, not
// just those in FOLLOW(A).
func constructLR0ParseTable(g grammar.Grammar, warn func(string)) (LRParseTable, error) {
	g = g.LiftMidRuleActions()

	lr0Automaton := automaton.NewLR0ViablePrefixNFA(g).ToDFA()
	lr0Automaton.NumberStates()

	table := &lr0Table{
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

	for i := range lr0Automaton.States() {
		for _, a := range table.gPrime.Terminals() {
			if _, err := resolveTableActionsLR0(table.g, table.gPrime, table.itemCache, table.lr0.GetValue(i), i, a, table.gStart, table.warn, nil, table.Goto); err != nil {
				return nil, fmt.Errorf("grammar is not LR(0): %w", err)
			}
		}
	}

	return table, nil
}

type lr0Table struct {
	g         grammar.Grammar
	gPrime    grammar.Grammar
	gStart    string
	lr0       automaton.DFA[util.SVSet[grammar.LR0Item]]
	itemCache map[string]grammar.LR0Item
	gTerms    []string
	gNonTerms []string
	warn      func(string)
}

// GetDFA returns the underlying LR(0) viable-prefix DFA with each state's
// item set collapsed to its string form, satisfying LRParseTable's
// table-agnostic GetDFA contract.
func (lr0 *lr0Table) GetDFA() automaton.DFA[string] {
	return automaton.TransformDFA(lr0.lr0, func(old util.SVSet[grammar.LR0Item]) string {
		return old.String()
	})
}

func (lr0 *lr0Table) Initial() string {
	return lr0.lr0.Start
}

func (lr0 *lr0Table) Goto(state, symbol string) (string, error) {
	newState := lr0.lr0.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (lr0 *lr0Table) Action(i, a string) LRAction {
	itemSet := lr0.lr0.GetValue(i)
	act, err := resolveTableActionsLR0(lr0.g, lr0.gPrime, lr0.itemCache, itemSet, i, a, lr0.gStart, lr0.warn, nil, lr0.Goto)
	if err != nil {
		panic(fmt.Sprintf("grammar is not LR(0): %s", err.Error()))
	}
	return act
}

func (lr0 *lr0Table) String() string {
	stateRefs := map[string]string{}

	stateNames := lr0.lr0.States().Elements()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == lr0.lr0.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(lr0.gTerms))
	copy(allTerms, lr0.gTerms)
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}
	headers = append(headers, "|")
	for _, nt := range lr0.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := lr0.Action(i, t)

			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%s", stateRefs[act.State])
			case LRError:
			}

			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range lr0.gNonTerms {
			var cell = ""

			gotoState, err := lr0.Goto(i, nt)
			if err == nil {
				cell = stateRefs[gotoState]
			}

			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
