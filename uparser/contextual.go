package uparser

// Step runs an intermediate parser inside a Contextual body and returns
// its value. The first failure aborts the body.
type Step func(p Parser[any]) any

type contextualAbort struct {
	index    int
	expected any
}

// Contextual builds a parser from an imperative body: the body runs
// intermediate parsers through step, consuming input left to right, and
// returns the parser producing the final result. Earlier values can steer
// later parsers, which plain combinators cannot express.
//
// The body is re-entered on every parse attempt. A failing step unwinds
// the body with a panic that Contextual recovers into an ordinary failed
// Result.
func Contextual[T any](body func(step Step) Parser[T]) Parser[T] {
	return func(index int, input string) (res Result[T]) {
		pos := index

		step := func(p Parser[any]) any {
			r := p(pos, input)
			if r.Failed {
				panic(contextualAbort{index: r.Index, expected: r.Expected})
			}
			pos = r.Index
			return r.Value
		}

		defer func() {
			if r := recover(); r != nil {
				abort, ok := r.(contextualAbort)
				if !ok {
					panic(r)
				}
				res = failure[T](abort.index, abort.expected)
			}
		}()

		return body(step)(pos, input)
	}
}

// Forward is a parser declared before its grammar exists, for recursive
// rules. Until Set is called it fails with a fixed expectation.
type Forward[T any] struct {
	parser Parser[T]
}

// NewForward builds an unbound forward declaration.
func NewForward[T any]() *Forward[T] {
	return &Forward[T]{parser: Fail[T]("forward reference not set")}
}

// Set binds the declaration to its real parser.
func (f *Forward[T]) Set(p Parser[T]) {
	f.parser = p
}

// Parse satisfies the Parser signature; pass the method value wherever a
// Parser is expected.
func (f *Forward[T]) Parse(index int, input string) Result[T] {
	return f.parser(index, input)
}
