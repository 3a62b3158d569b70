package ufsm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// ErrNotDeterministic is returned by Minimize when a transition has more
// than one target state. Run Determinize first.
var ErrNotDeterministic = errors.New("machine is not deterministic")

// Minimize merges indistinguishable states of a deterministic machine
// using partition refinement, starting from the split between final and
// non-final states. The resulting states are canonically named blocks of
// equivalent original states. Unreachable states are kept: they end up in
// a block of their own or merged with their equivalents.
func (m *Machine[A, S]) Minimize() (*Machine[A, string], error) {
	symbols := m.orderedSymbols()

	targets := make(map[S]map[A]S, len(m.states))
	for state := range m.states {
		row := make(map[A]S, len(m.Transitions[state]))
		for symbol, next := range m.Transitions[state] {
			if len(next) != 1 {
				return nil, errors.Wrapf(ErrNotDeterministic,
					"state %v has %d targets on %v", state, len(next), symbol)
			}
			for target := range next {
				row[symbol] = target
			}
		}
		targets[state] = row
	}

	blocks := m.initialBlocks()
	for {
		refined := refine(blocks, symbols, targets)
		if len(refined) == len(blocks) {
			blocks = refined
			break
		}
		blocks = refined
	}

	return m.blocksToMachine(blocks, targets)
}

func (m *Machine[A, S]) initialBlocks() []Set[S] {
	nonFinal := Set[S]{}
	final := Set[S]{}
	for state := range m.states {
		if m.Finals.Has(state) {
			final.Add(state)
		} else {
			nonFinal.Add(state)
		}
	}

	var blocks []Set[S]
	for _, b := range []Set[S]{nonFinal, final} {
		if len(b) > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// refine splits every block by the blocks its members transition into.
// Two states stay together only when every symbol leads them into the same
// block of the previous round.
func refine[A comparable, S comparable](
	blocks []Set[S],
	symbols []A,
	targets map[S]map[A]S,
) []Set[S] {
	blockOf := map[S]int{}
	for i, block := range blocks {
		for state := range block {
			blockOf[state] = i
		}
	}

	signature := func(state S) string {
		var b strings.Builder
		for _, symbol := range symbols {
			target, ok := targets[state][symbol]
			if !ok {
				b.WriteString("-;")
				continue
			}
			b.WriteString(strconv.Itoa(blockOf[target]))
			b.WriteByte(';')
		}
		return b.String()
	}

	var refined []Set[S]
	for _, block := range blocks {
		groups := map[string]Set[S]{}
		for state := range block {
			sig := signature(state)
			if groups[sig] == nil {
				groups[sig] = Set[S]{}
				refined = append(refined, groups[sig])
			}
			groups[sig].Add(state)
		}
	}
	return refined
}

func (m *Machine[A, S]) blocksToMachine(
	blocks []Set[S],
	targets map[S]map[A]S,
) (*Machine[A, string], error) {
	names := make([]string, len(blocks))
	nameFor := map[S]string{}
	for i, block := range blocks {
		names[i] = nameOf(block)
		for state := range block {
			nameFor[state] = names[i]
		}
	}

	transitions := map[string]map[A]Set[string]{}
	finals := Set[string]{}
	for i, block := range blocks {
		var rep S
		for state := range block {
			rep = state
			break
		}

		row := map[A]Set[string]{}
		for symbol, target := range targets[rep] {
			row[symbol] = NewSet(nameFor[target])
		}
		transitions[names[i]] = row

		if m.Finals.Has(rep) {
			finals.Add(names[i])
		}
	}

	startName, ok := nameFor[m.Start]
	if !ok {
		return nil, errors.Errorf("start state %v is not in the transition table", m.Start)
	}

	return New(startName, finals, transitions), nil
}

// orderedSymbols returns the alphabet in a stable order so that refinement
// signatures do not depend on map iteration.
func (m *Machine[A, S]) orderedSymbols() []A {
	var ordered btree.Map[string, A]
	for symbol := range m.inputs {
		ordered.Set(fmt.Sprint(symbol), symbol)
	}

	symbols := make([]A, 0, ordered.Len())
	ordered.Scan(func(_ string, symbol A) bool {
		symbols = append(symbols, symbol)
		return true
	})
	return symbols
}
