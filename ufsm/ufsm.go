// Package ufsm implements finite state machines.
//
// A machine is described by five elements: an input alphabet, a set of
// states, a start state, a set of final states and a transition table.
// The table maps a state and an input symbol to a set of next states, so
// the same representation serves both deterministic and non-deterministic
// automata. A missing transition leads to the dead state.
package ufsm

import (
	"fmt"
	"strings"

	"github.com/tidwall/btree"
)

// Phi names the dead state in machines produced by Determinize and
// Minimize. It loops to itself on every input symbol.
const Phi = "Ø"

// Set is a map backed set of comparable members.
type Set[T comparable] map[T]struct{}

// NewSet builds a Set from its members.
func NewSet[T comparable](members ...T) Set[T] {
	s := make(Set[T], len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

func (s Set[T]) Add(member T) { s[member] = struct{}{} }

func (s Set[T]) Has(member T) bool {
	_, ok := s[member]
	return ok
}

func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for m := range s {
		if !other.Has(m) {
			return false
		}
	}
	return true
}

// Name produces the canonical name of a set of states: member names in
// lexicographic order joined with commas. Determinize and Minimize use it
// to label composite states, and tests can use it to address them.
func Name[S comparable](members ...S) string {
	return nameOf(NewSet(members...))
}

func nameOf[S comparable](members Set[S]) string {
	var ordered btree.Set[string]
	for m := range members {
		ordered.Insert(fmt.Sprint(m))
	}

	var b strings.Builder
	ordered.Scan(func(name string) bool {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		return true
	})

	return b.String()
}

// Machine is a finite state machine over alphabet A and states S.
type Machine[A comparable, S comparable] struct {
	Start       S
	Finals      Set[S]
	Transitions map[S]map[A]Set[S]

	inputs Set[A]
	states Set[S]
}

// New builds a machine and derives its alphabet and state set from the
// transition table. States that only ever appear as transition targets are
// not part of the derived state set.
func New[A comparable, S comparable](
	start S,
	finals Set[S],
	transitions map[S]map[A]Set[S],
) *Machine[A, S] {
	m := &Machine[A, S]{
		Start:       start,
		Finals:      finals,
		Transitions: transitions,
		inputs:      Set[A]{},
		states:      Set[S]{},
	}

	for state, row := range transitions {
		m.states.Add(state)
		for symbol := range row {
			m.inputs.Add(symbol)
		}
	}

	return m
}

// Inputs returns the derived input alphabet.
func (m *Machine[A, S]) Inputs() Set[A] { return m.inputs }

// States returns the derived state set.
func (m *Machine[A, S]) States() Set[S] { return m.states }

// Result holds the outcome of running a machine over an input string.
// States are the live end states, one per surviving thread. Dead reports
// that at least one thread fell off the transition table.
type Result[S comparable] struct {
	States   Set[S]
	Dead     bool
	Accepted bool
}

// Run consumes input and reports every state the machine can end up in.
// Non-deterministic branches are explored as independent threads; a thread
// without a transition for the next symbol dies. The input is accepted
// when any surviving thread stops on a final state.
func (m *Machine[A, S]) Run(input []A) Result[S] {
	type thread struct {
		state S
		rest  []A
	}

	stack := []thread{{state: m.Start, rest: input}}
	res := Result[S]{States: Set[S]{}}

	for len(stack) > 0 {
		th := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		state := th.state
		died := false

		for i, symbol := range th.rest {
			next := m.Transitions[state][symbol]
			if len(next) == 0 {
				died = true
				break
			}

			first := true
			for s := range next {
				if first {
					state = s
					first = false
					continue
				}
				stack = append(stack, thread{state: s, rest: th.rest[i+1:]})
			}
		}

		if died {
			res.Dead = true
			continue
		}

		res.States.Add(state)
		if m.Finals.Has(state) {
			res.Accepted = true
		}
	}

	return res
}

// Negate flips acceptance: the final states become the complement of the
// current final states against the derived state set.
func (m *Machine[A, S]) Negate() *Machine[A, S] {
	finals := Set[S]{}
	for s := range m.states {
		if !m.Finals.Has(s) {
			finals.Add(s)
		}
	}

	return New(m.Start, finals, m.Transitions)
}
