package ufsm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"utools/ufsm"
)

func TestDeterminize_StartsWithZero(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("B"), table[int]{
		"A": {0: ufsm.NewSet("B")},
		"B": {0: ufsm.NewSet("B"), 1: ufsm.NewSet("B")},
	})
	d := n.Determinize()

	require.Equal(t, "A", d.Start)
	require.True(t, d.Finals.Equal(ufsm.NewSet("B")))
	require.Equal(t, table[int]{
		"A":      {0: ufsm.NewSet("B"), 1: ufsm.NewSet(ufsm.Phi)},
		"B":      {0: ufsm.NewSet("B"), 1: ufsm.NewSet("B")},
		ufsm.Phi: {0: ufsm.NewSet(ufsm.Phi), 1: ufsm.NewSet(ufsm.Phi)},
	}, table[int](d.Transitions))
}

func TestDeterminize_EndsWithOne(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("B"), table[int]{
		"A": {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A", "B")},
		"B": {},
	})
	d := n.Determinize()

	require.Equal(t, "A", d.Start)
	require.True(t, d.Finals.Equal(ufsm.NewSet(ufsm.Name("A", "B"))))
	require.Equal(t, table[int]{
		"A":   {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A,B")},
		"A,B": {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A,B")},
	}, table[int](d.Transitions))
}

func TestDeterminize_EndsWithZeroOne(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("C"), table[int]{
		"A": {0: ufsm.NewSet("A", "B"), 1: ufsm.NewSet("A")},
		"B": {1: ufsm.NewSet("C")},
		"C": {},
	})
	d := n.Determinize()

	require.Equal(t, "A", d.Start)
	require.True(t, d.Finals.Equal(ufsm.NewSet("A,C")))
	require.Equal(t, table[int]{
		"A":   {0: ufsm.NewSet("A,B"), 1: ufsm.NewSet("A")},
		"A,B": {0: ufsm.NewSet("A,B"), 1: ufsm.NewSet("A,C")},
		"A,C": {0: ufsm.NewSet("A,B"), 1: ufsm.NewSet("A")},
	}, table[int](d.Transitions))
}

func TestDeterminize_EndsWithOddNumberOfB(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("C"), table[string]{
		"A": {"a": ufsm.NewSet("A", "B"), "b": ufsm.NewSet("C")},
		"B": {"a": ufsm.NewSet("A"), "b": ufsm.NewSet("B")},
		"C": {"b": ufsm.NewSet("A", "B")},
	})
	d := n.Determinize()

	require.Equal(t, "A", d.Start)
	require.True(t, d.Finals.Equal(ufsm.NewSet("B,C", "C")))
	require.Equal(t, table[string]{
		"A":      {"a": ufsm.NewSet("A,B"), "b": ufsm.NewSet("C")},
		"A,B":    {"a": ufsm.NewSet("A,B"), "b": ufsm.NewSet("B,C")},
		"B,C":    {"a": ufsm.NewSet("A"), "b": ufsm.NewSet("A,B")},
		"C":      {"a": ufsm.NewSet(ufsm.Phi), "b": ufsm.NewSet("A,B")},
		ufsm.Phi: {"a": ufsm.NewSet(ufsm.Phi), "b": ufsm.NewSet(ufsm.Phi)},
	}, table[string](d.Transitions))
}

func TestDeterminize_SecondToLastIsOne(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("C"), table[int]{
		"A": {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A", "B")},
		"B": {0: ufsm.NewSet("C"), 1: ufsm.NewSet("C")},
		"C": {},
	})
	d := n.Determinize()

	require.Equal(t, "A", d.Start)
	require.True(t, d.Finals.Equal(ufsm.NewSet("A,C", "A,B,C")))
	require.Equal(t, table[int]{
		"A":     {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A,B")},
		"A,B":   {0: ufsm.NewSet("A,C"), 1: ufsm.NewSet("A,B,C")},
		"A,C":   {0: ufsm.NewSet("A"), 1: ufsm.NewSet("A,B")},
		"A,B,C": {0: ufsm.NewSet("A,C"), 1: ufsm.NewSet("A,B,C")},
	}, table[int](d.Transitions))
}

func TestDeterminize_RunMatchesSource(t *testing.T) {
	n := ufsm.New("A", ufsm.NewSet("C"), table[int]{
		"A": {0: ufsm.NewSet("A", "B"), 1: ufsm.NewSet("A")},
		"B": {1: ufsm.NewSet("C")},
		"C": {},
	})
	d := n.Determinize()

	for _, input := range [][]int{
		{}, {0}, {1}, {0, 1}, {1, 0, 1}, {0, 0, 1, 1}, {1, 1, 1},
	} {
		require.Equal(t, n.Run(input).Accepted, d.Run(input).Accepted, "input %v", input)
	}
}
