// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// segment is one piece of a compiled template: either literal source
// text or a compiled expression to be rendered in its place.
type segment struct {
	lit  string
	expr node // nil for a literal segment
}

// Template is a compiled {{ ... }}-templated string. Compiling a string
// with no placeholder yields a Template holding a single literal
// segment, which renders to the literal interpretation of that string;
// callers normally check HasPlaceholder first and skip compiling it.
type Template struct {
	src      string
	segments []segment
	free     map[string]bool
}

// HasPlaceholder reports whether s contains a "{{" and therefore needs
// compiling; a value without one is returned verbatim per spec.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, "{{")
}

// Compile parses src into a Template. Compilation is pure and has no
// access to any environment; it only discovers structure and free
// variables. Callers on the hot path should check HasPlaceholder first
// and skip compilation entirely for a plain string.
func Compile(src string) (*Template, error) {
	t := &Template{src: src, free: map[string]bool{}}
	rest := src
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			if rest != "" {
				t.segments = append(t.segments, segment{lit: rest})
			}
			break
		}
		if start > 0 {
			t.segments = append(t.segments, segment{lit: rest[:start]})
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return nil, fmt.Errorf("template: unterminated %q in %q", "{{", src)
		}
		end += start
		exprSrc := rest[start+2 : end]
		n, err := parse(exprSrc)
		if err != nil {
			return nil, fmt.Errorf("template: %w (in %q)", err, src)
		}
		n.freeVars(t.free)
		t.segments = append(t.segments, segment{expr: n})
		rest = rest[end+2:]
	}
	return t, nil
}

// Source returns the original, uncompiled template text.
func (t *Template) Source() string { return t.src }

// FreeVars returns the set of top-level variable names referenced
// anywhere in the template, used by the compiler's freeze pass to
// decide whether a field depends only on globals.
func (t *Template) FreeVars() map[string]bool {
	return t.free
}

// Render evaluates the template against ctx (the current per-read
// context) and globals (exposed under namespace), renders every
// expression segment to a string, concatenates it with any literal
// text, and then interprets the resulting string as a literal
// (integer, boolean, null, list, or mapping) when it parses as one;
// otherwise the raw string is returned.
func (t *Template) Render(ctx map[string]any, namespace string, globals map[string]any) (any, error) {
	env := Env{Context: ctx, Namespace: namespace, Globals: globals}
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.expr == nil {
			b.WriteString(seg.lit)
			continue
		}
		v, err := seg.expr.eval(env)
		if err != nil {
			return nil, err
		}
		b.WriteString(formatValue(v))
	}
	return literalOf(b.String()), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// literalOf interprets s as an integer, boolean, null, list, or mapping
// literal when possible, per §4.2; otherwise it returns s unchanged.
func literalOf(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "none", "None":
		return nil
	}
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

// Cache is a shared, append-only, concurrency-safe store of compiled
// templates keyed by their literal source text. Populating it is
// idempotent: concurrent compiles of the same source may race, but
// they race to store equivalent Templates.
type Cache struct {
	m sync.Map // string -> *Template
}

// Get returns the compiled Template for src, compiling and caching it
// on first use.
func (c *Cache) Get(src string) (*Template, error) {
	if v, ok := c.m.Load(src); ok {
		return v.(*Template), nil
	}
	t, err := Compile(src)
	if err != nil {
		return nil, err
	}
	actual, _ := c.m.LoadOrStore(src, t)
	return actual.(*Template), nil
}
