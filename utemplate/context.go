package utemplate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
	"github.com/tidwall/gjson"
)

// JSON marks a context value as a raw JSON document. Dotted expressions
// descend into it through gjson paths, so `{{ user.name }}` works the
// same over a decoded map and over the raw bytes of a document.
type JSON []byte

// Context resolves dotted expressions during rendering. Loop bodies run
// against a child context whose variables shadow the outer scope.
type Context struct {
	values map[string]any
	parent *Context
}

// NewContext wraps a value map for rendering.
func NewContext(values map[string]any) *Context {
	if values == nil {
		values = map[string]any{}
	}
	return &Context{values: values}
}

func (c *Context) child(values map[string]any) *Context {
	return &Context{values: values, parent: c}
}

func (c *Context) root(name string) (any, error) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.values[name]; ok {
			return v, nil
		}
	}
	return nil, errors.Wrapf(ErrVariableNotFound, "attribute or item %q not found in context", name)
}

// Variable resolves a dotted expression, invoking zero-argument callables
// along the way and at the end, so `{{ user.name }}` crosses fields and
// accessors alike.
func (c *Context) Variable(expr string) (any, error) {
	fragments := strings.Split(expr, attributeSeparator)

	value, err := c.root(fragments[0])
	if err != nil {
		return nil, err
	}
	if value, err = autocall(value); err != nil {
		return nil, err
	}

	for _, name := range fragments[1:] {
		if value, err = c.get(value, name); err != nil {
			return nil, err
		}
		if value, err = autocall(value); err != nil {
			return nil, err
		}
	}

	return value, nil
}

// Filter resolves a dotted expression to a callable. Intermediate
// zero-argument callables are invoked; the final value is returned
// uncalled so the renderer can apply it to the piped value.
func (c *Context) Filter(expr string) (reflect.Value, error) {
	fragments := strings.Split(expr, attributeSeparator)

	value, err := c.root(fragments[0])
	if err != nil {
		return reflect.Value{}, err
	}

	last := len(fragments) - 1
	for i, name := range fragments[1:] {
		if value, err = c.get(value, name); err != nil {
			return reflect.Value{}, err
		}
		if i+1 != last {
			if value, err = autocall(value); err != nil {
				return reflect.Value{}, err
			}
		}
	}

	fn := reflect.ValueOf(value)
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, errors.Wrapf(ErrRender, "filter %q is not callable", expr)
	}
	return fn, nil
}

// get resolves a single step of a dotted expression against a value.
func (c *Context) get(value any, name string) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if item, ok := v[name]; ok {
			return item, nil
		}
	case JSON:
		if r := gjson.GetBytes(v, name); r.Exists() {
			return r.Value(), nil
		}
	}

	rv := reflect.ValueOf(value)
	elem := rv
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	switch elem.Kind() {
	case reflect.Struct:
		if f := elem.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface(), nil
		}
	case reflect.Map:
		if elem.Type().Key().Kind() == reflect.String {
			if item := elem.MapIndex(reflect.ValueOf(name)); item.IsValid() {
				return item.Interface(), nil
			}
			if name == "items" {
				return mapPairs(elem), nil
			}
		}
	}

	// methods resolve on any type, so accessor chains like
	// `{{ word.Lower.Upper }}` work on named scalars too
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), nil
	}

	return nil, errors.Wrapf(ErrVariableNotFound, "attribute or item %q not found in %v", name, value)
}

// mapPairs returns the entries of a string-keyed map as [key, value]
// pairs ordered by key, the `for k, v in m.items` iteration source.
func mapPairs(rv reflect.Value) []any {
	var ordered btree.Map[string, any]
	iter := rv.MapRange()
	for iter.Next() {
		ordered.Set(iter.Key().String(), iter.Value().Interface())
	}

	pairs := make([]any, 0, ordered.Len())
	ordered.Scan(func(k string, v any) bool {
		pairs = append(pairs, []any{k, v})
		return true
	})
	return pairs
}

// autocall invokes zero-argument callables and passes everything else
// through untouched.
func autocall(value any) (any, error) {
	fn := reflect.ValueOf(value)
	if fn.Kind() != reflect.Func || fn.Type().NumIn() != 0 {
		return value, nil
	}
	return call(fn)
}

// call invokes fn with args, adapting argument types where possible. A
// trailing error result aborts the render.
func call(fn reflect.Value, args ...any) (any, error) {
	t := fn.Type()
	if t.NumIn() != len(args) {
		return nil, errors.Wrapf(ErrRender,
			"callable takes %d arguments, got %d", t.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(t.In(i))
			continue
		}

		av := reflect.ValueOf(arg)
		switch {
		case av.Type().AssignableTo(t.In(i)):
		case av.Type().ConvertibleTo(t.In(i)):
			av = av.Convert(t.In(i))
		default:
			return nil, errors.Wrapf(ErrRender,
				"callable expects %s, got %T", t.In(i), arg)
		}
		in[i] = av
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	case 2:
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, errors.Wrap(ErrRender, err.Error())
		}
		return out[0].Interface(), nil
	default:
		return nil, errors.Wrapf(ErrRender,
			"callable returns %d values, expected at most 2", len(out))
	}
}

// truthy mirrors dynamic-language truthiness: empty, zero and nil values
// are false.
func truthy(value any) bool {
	if value == nil {
		return false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
