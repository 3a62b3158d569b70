package uparser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"utools/uparser"
)

func requireSuccess[T any](t *testing.T, r uparser.Result[T], index int, value T) {
	t.Helper()

	require.False(t, r.Failed, "expected success, failed expecting %v at %d", r.Expected, r.Index)
	require.Equal(t, index, r.Index)
	require.Equal(t, value, r.Value)
}

func requireFailure[T any](t *testing.T, r uparser.Result[T], index int, expected any) {
	t.Helper()

	require.True(t, r.Failed, "expected failure, got %v at %d", r.Value, r.Index)
	require.Equal(t, index, r.Index)
	require.Equal(t, expected, r.Expected)
}

func TestFail(t *testing.T) {
	requireFailure(t, uparser.Fail[string]("apple")(0, ""), 0, "apple")
}

func TestSucceed(t *testing.T) {
	requireSuccess(t, uparser.Succeed("apple")(0, ""), 0, "apple")
}

func TestEOF(t *testing.T) {
	requireFailure(t, uparser.EOF()(0, "1234"), 0, "EOF")
	requireSuccess[any](t, uparser.EOF()(0, ""), 0, nil)
}

func TestLiteral(t *testing.T) {
	requireFailure(t, uparser.Literal("A")(0, "1234"), 0, "A")
	requireSuccess(t, uparser.Literal("A")(0, "AAAA"), 1, "A")
}

func TestPattern(t *testing.T) {
	digits := uparser.Pattern(`\d+`)
	requireFailure(t, digits(0, "AAAA"), 0, `\d+`)
	requireSuccess(t, digits(0, "1234"), 4, "1234")
}

func TestPeek(t *testing.T) {
	parser := uparser.Peek(uparser.Literal("1"))
	requireFailure(t, parser(0, "0"), 0, "1")
	requireSuccess(t, parser(0, "1"), 0, "1")
}

func TestChain(t *testing.T) {
	digits := uparser.Pattern(`\d+`)
	alphas := uparser.Pattern(`\w+`)
	parser := uparser.Chain(digits, func(string) uparser.Parser[string] { return alphas })

	requireSuccess(t, parser(0, "11AA//"), 4, "AA")
	requireFailure(t, parser(0, "11//AA"), 2, `\w+`)
	requireFailure(t, parser(0, "//11AA"), 0, `\d+`)
}

func TestOne(t *testing.T) {
	parser := uparser.One(uparser.Literal("A"), uparser.Literal("B"))
	requireFailure(t, parser(0, "CCCC"), 0, []any{"A", "B"})
	requireSuccess(t, parser(0, "BBBB"), 1, "B")
	requireSuccess(t, parser(0, "AAAA"), 1, "A")

	// nested alternatives flatten into a single expectation list
	parser = uparser.One(parser, uparser.Literal("C"))
	requireFailure(t, parser(0, "DDDD"), 0, []any{"A", "B", "C"})
	requireSuccess(t, parser(0, "CCCC"), 1, "C")
	requireSuccess(t, parser(0, "BBBB"), 1, "B")
	requireSuccess(t, parser(0, "AAAA"), 1, "A")
}

func TestRepeat(t *testing.T) {
	parser := uparser.Many0(uparser.Literal("A"))
	requireSuccess(t, parser(0, ""), 0, []string{})
	requireSuccess(t, parser(0, "A"), 1, []string{"A"})
	requireSuccess(t, parser(0, "AAAB"), 3, []string{"A", "A", "A"})

	parser = uparser.Many1(uparser.Literal("A"))
	requireFailure(t, parser(0, ""), 0, "A")
	requireSuccess(t, parser(0, "A"), 1, []string{"A"})
	requireSuccess(t, parser(0, "AAAB"), 3, []string{"A", "A", "A"})

	parser = uparser.Repeat(uparser.Literal("A"), 2, 3)
	requireFailure(t, parser(0, "BBBB"), 0, "A")
	requireFailure(t, parser(0, "ABBB"), 1, "A")
	requireSuccess(t, parser(0, "AABB"), 2, []string{"A", "A"})
	requireSuccess(t, parser(0, "AAAB"), 3, []string{"A", "A", "A"})
	requireSuccess(t, parser(0, "AAAA"), 3, []string{"A", "A", "A"})
}

func TestSequence(t *testing.T) {
	parser := uparser.Sequence(uparser.Literal("A"), uparser.Literal("B"))
	requireFailure(t, parser(0, "CCCC"), 0, "A")
	requireFailure(t, parser(0, "ACCC"), 1, "B")
	requireSuccess(t, parser(0, "ABCD"), 2, []string{"A", "B"})
}

func TestSeparated(t *testing.T) {
	spaces := uparser.Pattern(`\s+`)
	parser := uparser.Separated(spaces, uparser.Literal("A"), uparser.Literal("B"))
	requireFailure(t, parser(0, " C C C C "), 0, "A")
	requireFailure(t, parser(0, "A C C C "), 2, "B")
	requireSuccess(t, parser(0, "A B C D"), 3, []string{"A", "B"})
	requireSuccess(t, parser(0, "A B"), 3, []string{"A", "B"})
}

func TestMaps(t *testing.T) {
	fail := uparser.MapErr(uparser.Fail[int](1), func(any) any { return 2 })
	ok := uparser.MapErr(uparser.Succeed(1), func(any) any { return 2 })
	requireFailure(t, fail(0, ""), 0, 2)
	requireSuccess(t, ok(0, ""), 0, 1)

	failMapped := uparser.Map(uparser.Fail[int](1), func(int) int { return 2 })
	okMapped := uparser.Map(uparser.Succeed(1), func(int) int { return 2 })
	requireFailure(t, failMapped(0, ""), 0, 1)
	requireSuccess(t, okMapped(0, ""), 0, 2)
}

func TestContextual(t *testing.T) {
	digits := uparser.Pattern(`\d+`)
	alphas := uparser.Pattern(`\w+`)

	parser := uparser.Contextual(func(step uparser.Step) uparser.Parser[[]any] {
		d := step(uparser.Any(digits))
		a := step(uparser.Any(alphas))
		return uparser.Succeed([]any{d, a})
	})

	requireSuccess(t, parser(0, "1234ABCD"), 8, []any{"1234", "ABCD"})
	requireFailure(t, parser(0, "ABCD1234"), 0, `\d+`)
}

func TestForwardDeclaration(t *testing.T) {
	nested := uparser.NewForward[any]()
	requireFailure(t, nested.Parse(0, ""), 0, "forward reference not set")

	decl := uparser.Sequence(
		uparser.Any(uparser.Literal("(")),
		uparser.One(uparser.Any(uparser.Pattern(`\d+`)), nested.Parse),
		uparser.Any(uparser.Literal(")")),
	)
	nested.Set(uparser.Any(decl))

	requireSuccess[any](t, nested.Parse(0, "(0)"), 3, []any{"(", "0", ")"})
	requireSuccess[any](t, nested.Parse(0, "((0))"), 5, []any{"(", []any{"(", "0", ")"}, ")"})
}
