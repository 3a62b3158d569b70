package ufsm

// Determinize performs subset construction and returns an equivalent
// deterministic machine. Composite states carry canonical names (see Name);
// the dead state is named Phi and loops to itself on every symbol. A subset
// is final when it contains at least one original final state.
func (m *Machine[A, S]) Determinize() *Machine[A, string] {
	type subset struct {
		name    string
		members Set[S] // nil marks the dead state
	}

	transitions := map[string]map[A]Set[string]{}
	finals := Set[string]{}
	visited := Set[string]{}

	start := NewSet(m.Start)
	pending := []subset{{name: nameOf(start), members: start}}
	startName := pending[0].name

	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if visited.Has(cur.name) {
			continue
		}
		visited.Add(cur.name)

		if cur.members == nil {
			row := make(map[A]Set[string], len(m.inputs))
			for symbol := range m.inputs {
				row[symbol] = NewSet(Phi)
			}
			transitions[Phi] = row
			continue
		}

		row := make(map[A]Set[string], len(m.inputs))
		for symbol := range m.inputs {
			next := Set[S]{}
			for state := range cur.members {
				for target := range m.Transitions[state][symbol] {
					next.Add(target)
				}
			}

			if len(next) == 0 {
				row[symbol] = NewSet(Phi)
				pending = append(pending, subset{name: Phi})
				continue
			}

			name := nameOf(next)
			row[symbol] = NewSet(name)
			pending = append(pending, subset{name: name, members: next})
		}
		transitions[cur.name] = row

		for state := range cur.members {
			if m.Finals.Has(state) {
				finals.Add(cur.name)
				break
			}
		}
	}

	return New(startName, finals, transitions)
}
