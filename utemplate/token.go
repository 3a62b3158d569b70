package utemplate

import (
	"regexp"
	"strings"
)

const (
	lBlock    = "{%"
	rBlock    = "%}"
	lComment  = "{#"
	rComment  = "#}"
	lVariable = "{{"
	rVariable = "}}"
)

// reTags captures complete tags only: an unterminated tag falls through
// and renders as literal text.
var reTags = regexp.MustCompile(`\{%.*?%\}|\{#.*?#\}|\{\{.*?\}\}`)

type tokenKind string

const (
	tokenBlock    tokenKind = "block"
	tokenComment  tokenKind = "comment"
	tokenVariable tokenKind = "variable"
	tokenText     tokenKind = "text"
)

type token struct {
	kind tokenKind
	text string
	line int
}

// tokenize splits a template into text and tag tokens, tracking the line
// each token starts on.
func tokenize(text string) []token {
	var tokens []token
	line := 1
	last := 0

	emit := func(raw string) {
		switch {
		case strings.HasPrefix(raw, lBlock) && strings.HasSuffix(raw, rBlock):
			tokens = append(tokens, token{tokenBlock, strings.TrimSpace(raw[2 : len(raw)-2]), line})
		case strings.HasPrefix(raw, lComment) && strings.HasSuffix(raw, rComment):
			tokens = append(tokens, token{tokenComment, strings.TrimSpace(raw[2 : len(raw)-2]), line})
		case strings.HasPrefix(raw, lVariable) && strings.HasSuffix(raw, rVariable):
			tokens = append(tokens, token{tokenVariable, strings.TrimSpace(raw[2 : len(raw)-2]), line})
		default:
			tokens = append(tokens, token{tokenText, raw, line})
		}
		line += strings.Count(raw, "\n")
	}

	for _, loc := range reTags.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			emit(text[last:loc[0]])
		}
		emit(text[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		emit(text[last:])
	}

	return tokens
}

const (
	attributeSeparator  = "."
	filterSeparator     = "|"
	identifierSeparator = ","
)

const (
	keywordFor = "for"
	keywordIf  = "if"
)

const reIdentifier = `[_a-zA-Z][_a-zA-Z0-9]*`

var (
	reIdentifierExpr = reIdentifier + `(\.` + reIdentifier + `)*`
	reIdentifierList = reIdentifier + `(\s*,\s*` + reIdentifier + `)*`

	reVariableExpr = regexp.MustCompile(
		`\A` + reIdentifierExpr + `(\s*\|\s*` + reIdentifierExpr + `)*\z`)

	reIfStmt  = regexp.MustCompile(`\A\s*if\s+(` + reIdentifierExpr + `)\z`)
	reForStmt = regexp.MustCompile(
		`\A\s*for\s+(` + reIdentifierList + `)\s+in\s+(` + reIdentifierExpr + `)\z`)
	reEndStmt = regexp.MustCompile(`\Aend(for|if)\z`)
)
