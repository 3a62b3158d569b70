// Package ure is a toy regular expression engine.
//
//	.   match any character
//	\x  character literal
//	()  grouping
//	?   zero or one quantifier
//	*   zero or more quantifier
//	+   one or more quantifier
//
// Match is anchored at the start of the text and reports how many
// characters a successful match consumed.
package ure

import "github.com/pkg/errors"

var ErrDanglingQuantifier = errors.New("quantifier without a preceding expression")
var ErrDuplicateQuantifier = errors.New("expression is already quantified")
var ErrUnbalancedGroup = errors.New("unbalanced group")
var ErrTrailingEscape = errors.New("escape at end of expression")

type Kind string

const (
	KindElement  Kind = "element"
	KindGroup    Kind = "group"
	KindWildcard Kind = "wildcard"
)

type Quantifier string

const (
	ExactlyOne Quantifier = "exactlyOne"
	ZeroOrOne  Quantifier = "zeroOrOne"
	ZeroOrMore Quantifier = "zeroOrMore"
)

// Node is a single compiled expression element. Group holds the nested
// nodes of a KindGroup node, Literal the character of a KindElement node.
type Node struct {
	Kind       Kind
	Quantifier Quantifier
	Literal    rune
	Group      []Node
}

// Compile translates an expression into a node list. A `+` quantifier
// compiles as the quantified node followed by a zero-or-more copy of it.
func Compile(expr string) ([]Node, error) {
	stack := [][]Node{{}}
	runes := []rune(expr)

	quantify := func(q Quantifier) error {
		last := len(stack) - 1
		if len(stack[last]) == 0 {
			return errors.Wrapf(ErrDanglingQuantifier, "in %q", expr)
		}
		node := &stack[last][len(stack[last])-1]
		if node.Quantifier != ExactlyOne {
			return errors.Wrapf(ErrDuplicateQuantifier, "in %q", expr)
		}
		if q == "" { // one or more
			more := *node
			more.Quantifier = ZeroOrMore
			stack[last] = append(stack[last], more)
			return nil
		}
		node.Quantifier = q
		return nil
	}

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.':
			stack[len(stack)-1] = append(stack[len(stack)-1], Node{
				Kind:       KindWildcard,
				Quantifier: ExactlyOne,
			})
		case '\\':
			if i+1 >= len(runes) {
				return nil, errors.Wrapf(ErrTrailingEscape, "in %q", expr)
			}
			i++
			stack[len(stack)-1] = append(stack[len(stack)-1], Node{
				Kind:       KindElement,
				Quantifier: ExactlyOne,
				Literal:    runes[i],
			})
		case '(':
			stack = append(stack, []Node{})
		case ')':
			if len(stack) < 2 {
				return nil, errors.Wrapf(ErrUnbalancedGroup, "in %q", expr)
			}
			group := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], Node{
				Kind:       KindGroup,
				Quantifier: ExactlyOne,
				Group:      group,
			})
		case '?':
			if err := quantify(ZeroOrOne); err != nil {
				return nil, err
			}
		case '*':
			if err := quantify(ZeroOrMore); err != nil {
				return nil, err
			}
		case '+':
			if err := quantify(""); err != nil {
				return nil, err
			}
		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], Node{
				Kind:       KindElement,
				Quantifier: ExactlyOne,
				Literal:    runes[i],
			})
		}
	}

	if len(stack) != 1 {
		return nil, errors.Wrapf(ErrUnbalancedGroup, "in %q", expr)
	}

	return stack[0], nil
}

// Match reports whether the compiled expression matches a prefix of text
// and the number of characters consumed.
func Match(nodes []Node, text string) (bool, int) {
	return match(nodes, []rune(text))
}

func match(nodes []Node, text []rune) (bool, int) {
	index := 0

	for _, node := range nodes {
		switch node.Quantifier {
		case ExactlyOne:
			ok, consumed := check(node, text, index)
			if !ok {
				return false, index
			}
			index += consumed
		case ZeroOrOne:
			if index < len(text) {
				_, consumed := check(node, text, index)
				index += consumed
			}
		case ZeroOrMore:
			for index < len(text) {
				ok, consumed := check(node, text, index)
				if !ok || consumed == 0 {
					break
				}
				index += consumed
			}
		}
	}

	return true, index
}

func check(node Node, text []rune, index int) (bool, int) {
	if index >= len(text) {
		return false, 0
	}

	switch node.Kind {
	case KindWildcard:
		return true, 1
	case KindElement:
		if node.Literal == text[index] {
			return true, 1
		}
		return false, 0
	default: // group
		return match(node.Group, text[index:])
	}
}
