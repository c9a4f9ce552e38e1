// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"strconv"

	"github.com/kortschak/readbreak/internal/template"
)

// Field holds a single step value that is either a fixed literal or a
// still-templated expression. Only the operation-specific value fields
// (ref, start, length, max_wobble, max_mismatch, base_offset,
// hamming_fn, expression, pass_if) are ever templated; identifier-like
// fields (store_*_as, pattern, whitelist names, step ids) are taken
// verbatim from the spec and never rendered.
type Field struct {
	literal any
	tmpl    *template.Template
}

// literalField wraps a value that is never templated.
func literalField(v any) Field { return Field{literal: v} }

// newField builds a Field from a raw YAML value, compiling it if it is
// a string containing a "{{" placeholder.
func newField(cache *template.Cache, raw any) (Field, error) {
	s, ok := raw.(string)
	if !ok || !template.HasPlaceholder(s) {
		return Field{literal: raw}, nil
	}
	tmpl, err := cache.Get(s)
	if err != nil {
		return Field{}, err
	}
	return Field{tmpl: tmpl}, nil
}

// isTemplate reports whether the field is still a template awaiting
// per-read rendering.
func (f Field) isTemplate() bool { return f.tmpl != nil }

// rawValue returns the field's original spec-level representation: its
// template source text if it is still templated, or its literal value
// (which, for a frozen field, is the rendered globals-only result)
// otherwise. Used by (*Pipeline).MarshalYAML to round-trip a compiled
// pipeline back to its YAML step shape.
func (f Field) rawValue() any {
	if f.tmpl != nil {
		return f.tmpl.Source()
	}
	return f.literal
}

// freeVars returns the free variables of a still-templated field, or
// nil for a literal field.
func (f Field) freeVars() map[string]bool {
	if f.tmpl == nil {
		return nil
	}
	return f.tmpl.FreeVars()
}

// render resolves the field's value against ctx and globals. A literal
// field returns its stored value unconditionally, ignoring ctx.
func (f Field) render(ctx map[string]any, namespace string, globals map[string]any) (any, error) {
	if f.tmpl == nil {
		return f.literal, nil
	}
	return f.tmpl.Render(ctx, namespace, globals)
}

// freeze renders a globals-only field once and returns the resulting
// literal Field, or the field unchanged (with ok=false) if it is not a
// template or still depends on per-read context.
func (f Field) freeze(namespace string, globals map[string]any) (Field, bool, error) {
	if f.tmpl == nil {
		return f, false, nil
	}
	free := f.tmpl.FreeVars()
	for v := range free {
		if v != namespace {
			return f, false, nil
		}
	}
	v, err := f.tmpl.Render(nil, namespace, globals)
	if err != nil {
		return Field{}, false, err
	}
	return literalField(v), true, nil
}

// renderInt resolves f and coerces the result to an int, matching the
// source's "safe integer parsing" coercion: a failed coercion is a step
// error, not a panic.
func (f Field) renderInt(ctx map[string]any, namespace string, globals map[string]any) (int, error) {
	v, err := f.render(ctx, namespace, globals)
	if err != nil {
		return 0, err
	}
	return coerceInt(v)
}

// renderString resolves f and coerces the result to a string.
func (f Field) renderString(ctx map[string]any, namespace string, globals map[string]any) (string, error) {
	v, err := f.render(ctx, namespace, globals)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("pipeline: expected a string, got %T (%v)", v, v)
	}
	return s, nil
}

// renderBool resolves f and coerces the result to a bool.
func (f Field) renderBool(ctx map[string]any, namespace string, globals map[string]any) (bool, error) {
	v, err := f.render(ctx, namespace, globals)
	if err != nil {
		return false, err
	}
	return coerceBool(v)
}

func coerceInt(v any) (int, error) {
	switch t := v.(type) {
	case int64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("pipeline: failed to coerce %q to int: %w", t, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("pipeline: cannot coerce %T (%v) to int", v, v)
	}
}

func coerceBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("pipeline: failed to coerce %q to bool: %w", t, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("pipeline: cannot coerce %T (%v) to bool", v, v)
	}
}
