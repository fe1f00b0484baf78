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

// computeLALR1Kernels computes LALR(1) kernels for grammar g, which must NOT be
// an augmented grammar.
//
// This is an implementation of Algorithm 4.63, "Efficient computation of the
// kernels of the LALR(1) collection of sets of items" from purple dragon book.
func computeLALR1Kernels(g grammar.Grammar) util.SVSet[util.SVSet[grammar.LR1Item]] {
	// we'll also need to know what our start rule and augmented start rules are.
	startSym := g.StartSymbol()
	startSymPrime := g.Augmented().StartSymbol()
	gPrimeStartItem := grammar.LR0Item{NonTerminal: startSymPrime, Right: []string{startSym}}
	gPrimeStartKernel := util.NewSVSet[grammar.LR0Item]()
	gPrimeStartKernel.Set(gPrimeStartItem.String(), gPrimeStartItem)

	gTerminals := g.Terminals()
	gNonTerms := g.NonTerminals()
	allSymbols := make([]string, 0, len(gTerminals)+len(gNonTerms))
	allSymbols = append(allSymbols, gTerminals...)
	allSymbols = append(allSymbols, gNonTerms...)

	// 1. Construct the kernels of the sets of LR(O) items for G.
	lr0Kernels := getLR0Kernels(g)

	calcSponts := map[stateAndItemStr]util.StringSet{}
	calcProps := map[stateAndItemStr][]stateAndItemStr{}

	// special case, lookahead $ is always generated spontaneously for the item
	// S' -> .S in the initial set of items
	calcSponts[stateAndItemStr{state: gPrimeStartKernel.StringOrdered(), item: gPrimeStartItem.String()}] = util.StringSetOf([]string{"$"})

	for _, lr0KernelName := range lr0Kernels.Elements() {
		IKernelSet := lr0Kernels.Get(lr0KernelName)

		for _, X := range allSymbols {
			// 2. Apply algorithm 4.62 to the kernel of set of LR(0) items and
			// grammar symbol X to determine which lookaheads are spontaneously
			// generated for kernel items in GOTO(I, X), and from which items in
			// I lookaheads are propagated to kernel items in GOTO(I, X).
			sponts, props := determineLookaheads(g.Augmented(), IKernelSet, X)

			// add them to our pre-calced slice for later use in lookahead
			// table
			for k := range sponts {
				sponSet := sponts[k]
				existing, ok := calcSponts[k]
				if !ok {
					existing = util.NewStringSet()
				}
				existing.AddAll(sponSet)
				calcSponts[k] = existing
			}
			for k := range props {
				propSlice := props[k]
				existing, ok := calcProps[k]
				if !ok {
					existing = make([]stateAndItemStr, 0)
				}
				existing = append(existing, propSlice...)
				calcProps[k] = existing
			}
		}
	}

	// 3. Initialize a table that gives, for each kernel item in each set of
	// items, the associated lookaheads. Initially, each item has associated
	// with it only those lookaheads that we determined in step (2) were
	// generated spontaneously.
	lookaheads := map[stateAndItemStr]util.StringSet{}
	for k := range calcSponts {
		lookaheads[k] = util.NewStringSet(calcSponts[k])
	}

	// 4. Make repeated passes over the kernel items in all sets. When we visit
	// an item i, we look up the kernel items to which i propagates its
	// lookaheads, using information tabulated in step (2). The current set of
	// lookaheads for i is added to those already associated with each of the
	// items to which i propagates its lookaheads. We continue making passes
	// over the kernel items until no more new lookaheads are propagated.
	updated := true
	for updated {
		updated = false

		for from, propagateTo := range calcProps {
			curLookaheads, ok := lookaheads[from]
			if !ok {
				continue
			}
			for _, to := range propagateTo {
				dest, ok := lookaheads[to]
				if !ok {
					dest = util.NewStringSet()
				}
				for _, la := range curLookaheads.Elements() {
					if !dest.Has(la) {
						dest.Add(la)
						updated = true
					}
				}
				lookaheads[to] = dest
			}
		}
	}

	// now collect the final table info into the final result: one LALR(1)
	// kernel per LR(0) kernel, each of its items carrying the union of
	// lookaheads accumulated for it above.
	lalrKernels := util.NewSVSet[util.SVSet[grammar.LR1Item]]()
	for _, lr0KernelName := range lr0Kernels.Elements() {
		IKernelSet := lr0Kernels.Get(lr0KernelName)
		lr1Kernel := util.NewSVSet[grammar.LR1Item]()
		for _, itemName := range IKernelSet.Elements() {
			item := IKernelSet.Get(itemName)
			key := stateAndItemStr{state: lr0KernelName, item: itemName}
			las, ok := lookaheads[key]
			if !ok {
				las = util.NewStringSet()
			}
			for _, la := range las.Elements() {
				newItem := grammar.LR1Item{LR0Item: item, Lookahead: la}
				lr1Kernel.Set(newItem.String(), newItem)
			}
		}
		lalrKernels.Set(lr0KernelName, lr1Kernel)
	}

	return lalrKernels
}

type stateAndItemStr struct {
	state string
	item  string
}

// determineLookaheads finds the lookaheads spontaneously generated by items in
// I for kernel items in GOTO(I, X) (jello: g.LR1_GOTO) and the items in I from
// which lookaheads are propagated to kernel items in GOTO(I, X).
//
// g must be an augmented grammar.
// K is the kernel of a set of LR(0) items I. X is a grammar symbol. Returns the
// spontaneously generated lookaheads and the propagation links found, not a
// finished LALR(1) kernel set.
//
// This is an implementation of Algorithm 4.62, "Determining lookaheads", from
// purple dragon book.
//
// "There are two ways a lookahead b can get attached to an LR(0) item
// [B -> γ.δ] in some set of LALR(1) items J:"
//
// 1. There is a set of items I, with a kernel item [A -> α.β, a], and J =
// GOTO(I, X), and the construction of
//
//	GOTO(CLOSURE({[A -> α.β, a]}), X)
//
// as given in Fig. 4.40 (jello: implemented in g.LR1_CLOSURE and
// g.LR1_GOTO), contains [B -> γ.δ, b], regardless of a. Such a lookahead is
// said to be generated *spontaneously* for B -> γ.δ.
//
// 2. As a special case, lookahead $ is generated spontaneously for the item
// [S' -> .S] in the initial set of items.
//
// 3. All as (1), but a = b, and GOTO(CLOSURE({[A -> α.β, b]}), X), as given
// in Fig. 4.40 (jello: again, g.LR1_CLOSURE and g.LR1_GOTO), contains
// [B -> γ.δ, b] only because A -> α.β has b as one of its associated
// lookaheads. In such a case, we say that lookaheads *propagate* from
// A -> α.β in the kernel of I to B -> γ.δ in the kernel of J. Note that
// propagation does not depend on the particular lookahead symbol; either
// all lookaheads propagate from one item to another, or none do.
func determineLookaheads(g grammar.Grammar, K util.SVSet[grammar.LR0Item], X string) (spontaneous map[stateAndItemStr]util.StringSet, propagated map[stateAndItemStr][]stateAndItemStr) {
	// note: '#' in notes stands for any symbol not in the grammar at hand. We
	// will use Grammar.GenerateUniqueName to get one not currently used, and as
	// we require g to be augmented, this should give us somefin OTHER than the
	// added start production.
	nonGrammarSym := g.GenerateUniqueTerminal("#")

	spontaneous = map[stateAndItemStr]util.StringSet{}
	propagated = map[stateAndItemStr][]stateAndItemStr{}

	// GOTO will be needed elsewhere
	GOTO_I_X := g.LR0_GOTO(g.LR0_CLOSURE(K), X)

	if GOTO_I_X.Empty() {
		return spontaneous, propagated
	}

	// for ( each item A -> α.β in K ) {
	for _, aItemName := range K.Elements() {
		aItem := K.Get(aItemName)

		// J := CLOSURE({[A -> α.β, #]})
		lr1StartItem := grammar.LR1Item{LR0Item: aItem, Lookahead: nonGrammarSym}
		lr1StartKernels := util.NewSVSet[grammar.LR1Item]()
		lr1StartKernels.Set(lr1StartItem.String(), lr1StartItem)
		J := g.LR1_CLOSURE(lr1StartKernels)

		TRUE_GOTO_I_X := g.LR1_GOTO(J, X)

		// next parts tell us to check condition based on some lookahead in
		// [B -> γ.Xδ, a] of J ...soooooooo in other words, check all of the
		// items in J
		for _, bItemName := range J.Elements() {
			bItem := J.Get(bItemName)

			if len(bItem.Right) == 0 || bItem.Right[0] != X {
				continue
			}

			newLeft := make([]string, len(bItem.Left)+1)
			copy(newLeft, bItem.Left)
			newLeft[len(bItem.Left)] = X
			newRight := make([]string, len(bItem.Right)-1)
			copy(newRight, bItem.Right[1:])

			// shifted item is our [B -> γX.δ]. note that the dot has moved one
			// symbol to the right
			shiftedLR0Item := grammar.LR0Item{
				NonTerminal: bItem.NonTerminal,
				Left:        newLeft,
				Right:       newRight,
			}

			// slightly more complex logic to go through all of TRUE_GOTO
			// and find all items that have the same LR0 as our shifted one
			prodInGoto := false
			for _, elemName := range TRUE_GOTO_I_X.Elements() {
				lr1Item := TRUE_GOTO_I_X.Get(elemName)
				if lr1Item.LR0Item.Equal(shiftedLR0Item) {
					prodInGoto = true
					break
				}
			}
			if !prodInGoto {
				continue
			}

			if bItem.Lookahead != nonGrammarSym {
				// if ( [B -> γ.Xδ, a] is in J, and a is not # )

				// conclude that lookahead a is spontaneously generated for item
				// B -> γX.δ in GOTO(I, X).
				key := stateAndItemStr{
					state: GOTO_I_X.StringOrdered(),
					item:  shiftedLR0Item.String(),
				}

				spontSet, ok := spontaneous[key]
				if !ok {
					spontSet = util.NewStringSet()
				}
				spontSet.Add(bItem.Lookahead)

				spontaneous[key] = spontSet
			} else {
				// if ( [B -> γ.Xδ, #] is in J )

				// conclude that lookaheads propagate from A -> α.β in I to
				// B -> γX.δ in GOTO(I, X).

				from := stateAndItemStr{
					state: K.StringOrdered(),
					item:  aItem.String(),
				}

				to := stateAndItemStr{
					state: GOTO_I_X.StringOrdered(),
					item:  shiftedLR0Item.String(),
				}

				existingPropagated, ok := propagated[from]
				if !ok {
					existingPropagated = []stateAndItemStr{}
				}
				existingPropagated = append(existingPropagated, to)
				propagated[from] = existingPropagated
			}

		}
	}

	return spontaneous, propagated
}

// g must NOT be an augmented grammar.
func getLR0Kernels(g grammar.Grammar) util.VSet[string, util.SVSet[grammar.LR0Item]] {
	gPrime := g.Augmented()
	itemSets := gPrime.CanonicalLR0Items()

	kernels := util.SVSet[util.SVSet[grammar.LR0Item]]{}

	// okay, now for each state pull out the kernels
	for _, s := range itemSets.Elements() {
		stateVal := itemSets.Get(s)

		kernelItems := util.SVSet[grammar.LR0Item]{}
		for _, stateItemName := range stateVal.Elements() {
			stateItem := stateVal.Get(stateItemName)
			if len(stateItem.Left) > 0 || (len(stateItem.Right) == 1 && stateItem.Right[0] == g.StartSymbol() && stateItem.NonTerminal == gPrime.StartSymbol()) {
				kernelItems.Set(stateItemName, stateItem)
			}
		}
		kernels.Set(kernelItems.StringOrdered(), kernelItems)
	}

	return kernels
}

// buildLALR1DFA assembles the viable-prefix DFA for G's LALR(1) collection
// directly from the kernels computeLALR1Kernels produces: states are the
// LR(0) kernels (shared across every LR(1) item with the same core), values
// are those kernels' full LR(1) closures, and transitions are the LR(0)
// GOTO graph, which is identical for the canonical and LALR collections.
func buildLALR1DFA(g grammar.Grammar) automaton.DFA[util.SVSet[grammar.LR1Item]] {
	lalrKernels := computeLALR1Kernels(g)
	lr0Kernels := getLR0Kernels(g)

	gTerms := g.Terminals()
	gNonTerms := g.NonTerminals()
	allSymbols := make([]string, 0, len(gTerms)+len(gNonTerms))
	allSymbols = append(allSymbols, gTerms...)
	allSymbols = append(allSymbols, gNonTerms...)

	startSym := g.StartSymbol()
	startSymPrime := g.Augmented().StartSymbol()
	startItem := grammar.LR0Item{NonTerminal: startSymPrime, Right: []string{startSym}}
	startKernel := util.NewSVSet[grammar.LR0Item]()
	startKernel.Set(startItem.String(), startItem)
	startName := startKernel.StringOrdered()

	dfa := automaton.DFA[util.SVSet[grammar.LR1Item]]{}

	for _, lr0KernelName := range lr0Kernels.Elements() {
		dfa.AddState(lr0KernelName, false)
		dfa.SetValue(lr0KernelName, g.LR1_CLOSURE(lalrKernels.Get(lr0KernelName)))
	}
	dfa.Start = startName

	for _, lr0KernelName := range lr0Kernels.Elements() {
		IKernel := lr0Kernels.Get(lr0KernelName)
		IClosure := g.LR0_CLOSURE(IKernel)
		for _, X := range allSymbols {
			toKernel := g.LR0_GOTO(IClosure, X)
			if toKernel.Empty() {
				continue
			}
			toName := toKernel.StringOrdered()
			if !lr0Kernels.Has(toName) {
				continue
			}
			dfa.AddTransition(lr0KernelName, X, toName)
		}
	}

	return dfa
}

// GenerateLALR1Parser returns a parser that uses the LALR(1) collection of
// sets of items (the canonical LR(1) collection with states sharing an
// LR(0) core merged together) to parse input in language g. Conflicts are
// resolved via g's declared precedence/associativity (§4.6) rather than
// rejected; warn, if given, receives one message per conflict resolved by a
// default policy.
func GenerateLALR1Parser(g grammar.Grammar, warn ...func(string)) (*lrParser, error) {
	table, err := constructLALR1ParseTable(g, firstWarnSink(warn))
	if err != nil {
		return &lrParser{}, err
	}

	return &lrParser{table: table, parseType: types.ParserLALR1, gram: g}, nil
}

// constructLALR1ParseTable constructs the LALR(1) table for G.
// It augments grammar G to produce G', then the LALR(1) collection of sets of
// items of G' is used to construct a table with applicable GOTO and ACTION
// columns.
//
// This is an implementation of Algorithm 4.59, "An easy, but space-consuming
// LALR table construction", from the purple dragon book, over the kernels
// produced by the more efficient Algorithm 4.63. In the comments, most of
// which is lifted directly from the textbook, GOTO[i, A] refers to the vaue
// of the table's GOTO column at state i, symbol A, while GOTO(i, A) refers
// to the "precomputed GOTO function for grammar G'".
func constructLALR1ParseTable(g grammar.Grammar, warn func(string)) (LRParseTable, error) {
	g = g.LiftMidRuleActions()

	dfa := buildLALR1DFA(g)

	table := &lalr1Table{
		g:         g,
		gPrime:    g.Augmented(),
		gTerms:    g.Terminals(),
		gStart:    g.StartSymbol(),
		gNonTerms: g.NonTerminals(),
		dfa:       dfa,
		itemCache: map[string]grammar.LR1Item{},
		warn:      warn,
	}

	// collect item cache from the states of our lr1 DFA
	allStates := util.OrderedKeys(table.dfa.States())
	for _, dfaStateName := range allStates {
		itemSet := table.dfa.GetValue(dfaStateName)
		for k := range itemSet {
			table.itemCache[k] = itemSet[k]
		}
	}

	// check that we dont hit unresolvable conflicts in ACTION; any conflict
	// that resolveConflict can settle is allowed through, with Action doing
	// the same resolution again (deterministically) at query time.
	for i := range dfa.States() {
		for _, a := range table.gPrime.Terminals() {
			if _, err := resolveTableActionsLR1(table.g, table.gPrime, table.itemCache, table.dfa.GetValue(i), i, a, table.gStart, table.warn, table.Goto); err != nil {
				return nil, fmt.Errorf("grammar is not LALR(1): %w", err)
			}
		}
	}

	return table, nil
}

type lalr1Table struct {
	g         grammar.Grammar
	gPrime    grammar.Grammar
	gStart    string
	dfa       automaton.DFA[util.SVSet[grammar.LR1Item]]
	itemCache map[string]grammar.LR1Item
	gTerms    []string
	gNonTerms []string
	warn      func(string)
}

// GetDFA returns the underlying LALR(1) viable-prefix DFA with each state's
// item set collapsed to its string form, satisfying LRParseTable's
// table-agnostic GetDFA contract.
func (lalr1 *lalr1Table) GetDFA() automaton.DFA[string] {
	return automaton.TransformDFA(lalr1.dfa, func(old util.SVSet[grammar.LR1Item]) string {
		return old.String()
	})
}

func (lalr1 *lalr1Table) Action(i, a string) LRAction {
	// Algorithm 4.59, which we are using for construction of the LALR(1) parse
	// table, explicitly mentions to construct the Action table as it is done
	// in Algorithm 4.56. Conflicts are resolved by precedence/associativity
	// per §4.6 (resolveConflict); construction already verified every
	// conflict here is resolvable.
	itemSet := lalr1.dfa.GetValue(i)
	act, err := resolveTableActionsLR1(lalr1.g, lalr1.gPrime, lalr1.itemCache, itemSet, i, a, lalr1.gStart, lalr1.warn, lalr1.Goto)
	if err != nil {
		panic(fmt.Sprintf("grammar is not LALR(1): %s", err.Error()))
	}
	return act
}

func (lalr1 *lalr1Table) Goto(state, symbol string) (string, error) {
	newState := lalr1.dfa.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (lalr1 *lalr1Table) Initial() string {
	return lalr1.dfa.Start
}

func (lalr1 *lalr1Table) String() string {
	// need mapping of state to indexes
	stateRefs := map[string]string{}

	// need to gaurantee order
	stateNames := lalr1.dfa.States().Elements()
	sort.Strings(stateNames)

	// put the initial state first
	for i := range stateNames {
		if stateNames[i] == lalr1.dfa.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(lalr1.gTerms))
	copy(allTerms, lalr1.gTerms)
	allTerms = append(allTerms, "$")

	// okay now do data setup
	data := [][]string{}

	// set up the headers
	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range lalr1.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	// now need to do each state
	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := lalr1.Action(i, t)

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

		for _, nt := range lalr1.gNonTerms {
			var cell = ""

			gotoState, err := lalr1.Goto(i, nt)
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
