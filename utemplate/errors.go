package utemplate

import "github.com/pkg/errors"

// ErrTemplateSyntax covers malformed tags discovered while compiling a
// template.
var ErrTemplateSyntax = errors.New("template syntax error")

// ErrVariableNotFound is returned when a dotted expression cannot be
// resolved against the render context.
var ErrVariableNotFound = errors.New("variable not found")

// ErrRender covers runtime failures: filters that are not callable,
// iterating something that is not iterable, unpacking mismatches and
// errors returned by context callables.
var ErrRender = errors.New("template render failed")
