// Package utemplate is a mini template engine.
//
// Templates interleave literal text with `{{ expr }}` variables,
// `{% if cond %}` and `{% for a, b in src %}` blocks and `{# ... #}`
// comments. Variable expressions are dotted paths over the render
// context, optionally piped through filters: `{{ name | upper }}`.
// Compiled programs are cached by content hash, so rebuilding a Template
// from the same source is cheap.
package utemplate

import (
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/jinzhu/copier"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"

	"utools/internal/lru"
)

// Template is a compiled template together with its base context.
// Render-time context entries shadow the base.
type Template struct {
	prog *program
	base map[string]any
}

type program struct {
	nodes []node
}

// New compiles a template. The base context, which may be nil, is merged
// under every Render call's context.
func New(text string, base map[string]any) (*Template, error) {
	prog, err := compile(text)
	if err != nil {
		return nil, err
	}
	return &Template{prog: prog, base: base}, nil
}

// Render executes the template against the base context merged with ctx.
func (t *Template) Render(ctx map[string]any) (string, error) {
	values := map[string]any{}
	if t.base != nil {
		if err := copier.Copy(&values, t.base); err != nil {
			return "", errors.Wrap(ErrRender, err.Error())
		}
	}
	for k, v := range ctx {
		values[k] = v
	}

	var b strings.Builder
	if err := renderNodes(&b, t.prog.nodes, NewContext(values)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// cacheShards splits the compiled-program cache; the byte budget is a
// small slice of physical memory, costed by template source length.
const cacheShards = 8

var programs = newProgramCache()

func newProgramCache() *lru.Cache[*program] {
	budget := memory.TotalMemory() / 512
	if budget < 1<<20 {
		budget = 1 << 20
	}

	c, err := lru.New[*program](cacheShards, budget, nil)
	if err != nil {
		panic("utemplate: program cache misconfigured: " + err.Error())
	}
	return c
}

// PurgeCache drops every cached compiled program.
func PurgeCache() {
	programs.Purge()
}

// CachedPrograms reports how many compiled programs the cache holds.
func CachedPrograms() int {
	return programs.Count()
}

func compile(text string) (*program, error) {
	key := xxhash.Sum64String(text)
	if prog, ok := programs.Get(key); ok {
		return prog, nil
	}

	prog, err := parse(text)
	if err != nil {
		return nil, err
	}

	programs.Add(key, prog, uint64(len(text)))
	return prog, nil
}

type node interface {
	render(b *strings.Builder, ctx *Context) error
}

func renderNodes(b *strings.Builder, nodes []node, ctx *Context) error {
	for _, n := range nodes {
		if err := n.render(b, ctx); err != nil {
			return err
		}
	}
	return nil
}

type textNode struct {
	text string
}

func (n *textNode) render(b *strings.Builder, _ *Context) error {
	b.WriteString(n.text)
	return nil
}

type variableNode struct {
	variable string
	filters  []string
	line     int
}

func (n *variableNode) render(b *strings.Builder, ctx *Context) error {
	value, err := ctx.Variable(n.variable)
	if err != nil {
		return err
	}

	for _, name := range n.filters {
		fn, err := ctx.Filter(name)
		if err != nil {
			return err
		}
		if value, err = call(fn, value); err != nil {
			return err
		}
	}

	b.WriteString(stringify(value))
	return nil
}

type ifNode struct {
	cond string
	line int
	body []node
}

func (n *ifNode) render(b *strings.Builder, ctx *Context) error {
	value, err := ctx.Variable(n.cond)
	if err != nil {
		return err
	}
	if !truthy(value) {
		return nil
	}
	return renderNodes(b, n.body, ctx)
}

type forNode struct {
	vars   []string
	source string
	line   int
	body   []node
}

func (n *forNode) render(b *strings.Builder, ctx *Context) error {
	value, err := ctx.Variable(n.source)
	if err != nil {
		return err
	}

	items, err := iterate(value)
	if err != nil {
		return errors.Wrapf(err, "at line %d", n.line)
	}

	for _, item := range items {
		scope, err := n.bind(item)
		if err != nil {
			return errors.Wrapf(err, "at line %d", n.line)
		}
		if err := renderNodes(b, n.body, ctx.child(scope)); err != nil {
			return err
		}
	}
	return nil
}

// bind maps one iteration item onto the loop variables, unpacking
// sequences for multi-variable loops.
func (n *forNode) bind(item any) (map[string]any, error) {
	scope := make(map[string]any, len(n.vars))
	if len(n.vars) == 1 {
		scope[n.vars[0]] = item
		return scope, nil
	}

	rv := reflect.ValueOf(item)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrRender,
			"cannot unpack %T into %d variables", item, len(n.vars))
	}
	if rv.Len() != len(n.vars) {
		return nil, errors.Wrapf(ErrRender,
			"cannot unpack %d values into %d variables", rv.Len(), len(n.vars))
	}

	for i, name := range n.vars {
		scope[name] = rv.Index(i).Interface()
	}
	return scope, nil
}

// iterate flattens an iteration source to its items. String-keyed maps
// iterate over key-ordered [key, value] pairs.
func iterate(value any) ([]any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return mapPairs(rv), nil
		}
	}
	return nil, errors.Wrapf(ErrRender, "%T is not iterable", value)
}

// parse builds the node tree, pairing every block opener with its end
// statement.
func parse(text string) (*program, error) {
	type frame struct {
		kind   string
		cond   string
		vars   []string
		source string
		line   int
		nodes  []node
	}

	frames := []frame{{}}
	top := func() *frame { return &frames[len(frames)-1] }

	for _, tok := range tokenize(text) {
		switch tok.kind {
		case tokenText:
			top().nodes = append(top().nodes, &textNode{text: tok.text})

		case tokenComment:
			// comments disappear from the output

		case tokenVariable:
			if !reVariableExpr.MatchString(tok.text) {
				return nil, errors.Wrapf(ErrTemplateSyntax,
					"invalid variable expression %q at line %d", tok.text, tok.line)
			}

			parts := strings.Split(tok.text, filterSeparator)
			v := &variableNode{variable: strings.TrimSpace(parts[0]), line: tok.line}
			for _, f := range parts[1:] {
				v.filters = append(v.filters, strings.TrimSpace(f))
			}
			top().nodes = append(top().nodes, v)

		case tokenBlock:
			if m := reEndStmt.FindStringSubmatch(tok.text); m != nil {
				stmt := m[1]
				if len(frames) == 1 {
					return nil, errors.Wrapf(ErrTemplateSyntax,
						"unexpected end%s at line %d", stmt, tok.line)
				}

				closed := *top()
				if closed.kind != stmt {
					return nil, errors.Wrapf(ErrTemplateSyntax,
						"expected end%s got end%s at line %d", closed.kind, stmt, tok.line)
				}
				frames = frames[:len(frames)-1]

				switch closed.kind {
				case keywordIf:
					top().nodes = append(top().nodes, &ifNode{
						cond: closed.cond,
						line: closed.line,
						body: closed.nodes,
					})
				case keywordFor:
					top().nodes = append(top().nodes, &forNode{
						vars:   closed.vars,
						source: closed.source,
						line:   closed.line,
						body:   closed.nodes,
					})
				}
				continue
			}

			if m := reIfStmt.FindStringSubmatch(tok.text); m != nil {
				frames = append(frames, frame{
					kind: keywordIf,
					cond: strings.TrimSpace(m[1]),
					line: tok.line,
				})
				continue
			}

			if m := reForStmt.FindStringSubmatch(tok.text); m != nil {
				var vars []string
				for _, v := range strings.Split(m[1], identifierSeparator) {
					vars = append(vars, strings.TrimSpace(v))
				}
				// m[3] skips the nested group inside the variable list
				frames = append(frames, frame{
					kind:   keywordFor,
					vars:   vars,
					source: strings.TrimSpace(m[3]),
					line:   tok.line,
				})
				continue
			}

			return nil, errors.Wrapf(ErrTemplateSyntax,
				"invalid statement %q at line %d", tok.text, tok.line)
		}
	}

	if len(frames) > 1 {
		return nil, errors.Wrapf(ErrTemplateSyntax,
			"unclosed %s block at line %d", top().kind, top().line)
	}

	return &program{nodes: frames[0].nodes}, nil
}
