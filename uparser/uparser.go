// Package uparser provides small composable parser combinators.
//
// A Parser consumes input starting at an index and reports either the
// parsed value together with the index after it, or the expectation that
// failed and where. Combinators build bigger parsers out of smaller ones;
// Forward declarations close recursive grammars.
package uparser

import (
	"math"
	"regexp"
	"strings"
)

// Infinity is a repetition bound that never caps.
const Infinity = math.MaxInt

// Result is the outcome of running a parser. On success Index points past
// the consumed input and Value holds the parsed value. On failure Index
// points at the offending position and Expected describes what the parser
// was looking for: a string, a flat list of alternatives, or whatever an
// MapErr callback produced.
type Result[T any] struct {
	Index    int
	Value    T
	Failed   bool
	Expected any
}

// Parser consumes input at index and produces a Result.
type Parser[T any] func(index int, input string) Result[T]

func success[T any](index int, value T) Result[T] {
	return Result[T]{Index: index, Value: value}
}

func failure[T any](index int, expected any) Result[T] {
	return Result[T]{Index: index, Failed: true, Expected: expected}
}

// Fail always fails with the given expectation.
func Fail[T any](expected any) Parser[T] {
	return func(index int, _ string) Result[T] {
		return failure[T](index, expected)
	}
}

// Succeed always succeeds with value and consumes nothing.
func Succeed[T any](value T) Parser[T] {
	return func(index int, _ string) Result[T] {
		return success(index, value)
	}
}

// EOF succeeds only at the end of the input.
func EOF() Parser[any] {
	return func(index int, input string) Result[any] {
		if index >= len(input) {
			return success[any](index, nil)
		}
		return failure[any](index, "EOF")
	}
}

// Literal matches the exact expected string.
func Literal(expected string) Parser[string] {
	return func(index int, input string) Result[string] {
		if strings.HasPrefix(input[index:], expected) {
			return success(index+len(expected), expected)
		}
		return failure[string](index, expected)
	}
}

// Pattern matches a regular expression anchored at the current index. The
// expression must be valid; Pattern panics otherwise, the same way a
// malformed static regexp does anywhere else.
func Pattern(expr string) Parser[string] {
	re := regexp.MustCompile(`^(?:` + expr + `)`)

	return func(index int, input string) Result[string] {
		loc := re.FindStringIndex(input[index:])
		if loc == nil {
			return failure[string](index, expr)
		}
		return success(index+loc[1], input[index:index+loc[1]])
	}
}

// Peek runs p without consuming input.
func Peek[T any](p Parser[T]) Parser[T] {
	return func(index int, input string) Result[T] {
		r := p(index, input)
		if r.Failed {
			return r
		}
		return success(index, r.Value)
	}
}

// Chain feeds the value of p into fn and continues with the parser it
// returns.
func Chain[A, B any](p Parser[A], fn func(A) Parser[B]) Parser[B] {
	return func(index int, input string) Result[B] {
		r := p(index, input)
		if r.Failed {
			return failure[B](r.Index, r.Expected)
		}
		return fn(r.Value)(r.Index, input)
	}
}

// One tries the alternatives in order and returns the first success. On
// failure the expectation is the flat list of every alternative's
// expectation.
func One[T any](of ...Parser[T]) Parser[T] {
	return func(index int, input string) Result[T] {
		expectations := make([]any, 0, len(of))

		for _, p := range of {
			r := p(index, input)
			if !r.Failed {
				return r
			}
			if nested, ok := r.Expected.([]any); ok {
				expectations = append(expectations, nested...)
			} else {
				expectations = append(expectations, r.Expected)
			}
		}

		return failure[T](index, expectations)
	}
}

// Repeat matches p between minimum and maximum times. A zero maximum means
// exactly minimum times. Fewer than minimum matches fail with the
// expectation of the element that broke the run.
func Repeat[T any](p Parser[T], minimum, maximum int) Parser[[]T] {
	if maximum == 0 {
		maximum = minimum
	}

	return func(index int, input string) Result[[]T] {
		pos := index
		values := make([]T, 0)

		for len(values) < maximum {
			r := p(pos, input)
			if r.Failed {
				if len(values) >= minimum {
					break
				}
				return failure[[]T](r.Index, r.Expected)
			}
			pos = r.Index
			values = append(values, r.Value)
		}

		return success(pos, values)
	}
}

// Many0 matches p any number of times, including zero.
func Many0[T any](p Parser[T]) Parser[[]T] {
	return Repeat(p, 0, Infinity)
}

// Many1 matches p at least once.
func Many1[T any](p Parser[T]) Parser[[]T] {
	return Repeat(p, 1, Infinity)
}

// Sequence matches every parser in order and collects their values.
func Sequence[T any](of ...Parser[T]) Parser[[]T] {
	return func(index int, input string) Result[[]T] {
		pos := index
		values := make([]T, 0, len(of))

		for _, p := range of {
			r := p(pos, input)
			if r.Failed {
				return failure[[]T](r.Index, r.Expected)
			}
			pos = r.Index
			values = append(values, r.Value)
		}

		return success(pos, values)
	}
}

// Separated matches the sequence with an optional separator between
// consecutive elements. No leading or trailing separator is consumed.
func Separated[T, B any](by Parser[B], seq ...Parser[T]) Parser[[]T] {
	return func(index int, input string) Result[[]T] {
		pos := index
		values := make([]T, 0, len(seq))

		for i, p := range seq {
			if i > 0 {
				if r := by(pos, input); !r.Failed {
					pos = r.Index
				}
			}

			r := p(pos, input)
			if r.Failed {
				return failure[[]T](r.Index, r.Expected)
			}
			pos = r.Index
			values = append(values, r.Value)
		}

		return success(pos, values)
	}
}

// Map transforms the value of a successful parse.
func Map[A, B any](p Parser[A], fn func(A) B) Parser[B] {
	return func(index int, input string) Result[B] {
		r := p(index, input)
		if r.Failed {
			return failure[B](r.Index, r.Expected)
		}
		return success(r.Index, fn(r.Value))
	}
}

// MapErr transforms the expectation of a failed parse.
func MapErr[T any](p Parser[T], fn func(any) any) Parser[T] {
	return func(index int, input string) Result[T] {
		r := p(index, input)
		if r.Failed {
			return failure[T](r.Index, fn(r.Expected))
		}
		return r
	}
}

// Any erases the value type of a parser so that parsers of different types
// can meet in One, Sequence or Contextual.
func Any[T any](p Parser[T]) Parser[any] {
	return func(index int, input string) Result[any] {
		r := p(index, input)
		if r.Failed {
			return failure[any](r.Index, r.Expected)
		}
		return success[any](r.Index, r.Value)
	}
}
