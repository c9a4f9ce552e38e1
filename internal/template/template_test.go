// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import (
	"reflect"
	"testing"
)

func render(t *testing.T, src string, ctx map[string]any, globals map[string]any) any {
	t.Helper()
	tmpl, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	v, err := tmpl.Render(ctx, "params", globals)
	if err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	ctx := map[string]any{"s1_start": int64(3)}
	if got := render(t, "{{ s1_start + 6 }}", ctx, nil); got != int64(9) {
		t.Errorf("got %v, want 9", got)
	}
}

func TestComparisonAndBoolean(t *testing.T) {
	ctx := map[string]any{"a": int64(5), "b": int64(6)}
	if got := render(t, "{{ a < b and not (a == b) }}", ctx, nil); got != true {
		t.Errorf("got %v, want true", got)
	}
}

func TestGlobalsNamespace(t *testing.T) {
	globals := map[string]any{"LT_LEN": int64(15)}
	if got := render(t, "{{ params.LT_LEN }}", nil, globals); got != int64(15) {
		t.Errorf("got %v, want 15", got)
	}
	// Implicit fallback: a bare name not in context falls back to globals.
	if got := render(t, "{{ LT_LEN }}", nil, globals); got != int64(15) {
		t.Errorf("got %v, want 15 (implicit globals fallback)", got)
	}
}

func TestSliceAndLength(t *testing.T) {
	ctx := map[string]any{"s": "CTAGGG"}
	if got := render(t, "{{ s[0:4] }}", ctx, nil); got != "CTAG" {
		t.Errorf("got %v, want CTAG", got)
	}
	if got := render(t, "{{ s | length }}", ctx, nil); got != int64(6) {
		t.Errorf("got %v, want 6", got)
	}
}

func TestUndefinedVariableIsFatal(t *testing.T) {
	tmpl, err := Compile("{{ nope + 1 }}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := tmpl.Render(nil, "params", nil); err == nil {
		t.Error("expected error for undefined variable, got nil")
	}
}

func TestFreeVars(t *testing.T) {
	tmpl, err := Compile("{{ params.LT_LEN + 1 }}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := map[string]bool{"params": true}
	if got := tmpl.FreeVars(); !reflect.DeepEqual(got, want) {
		t.Errorf("FreeVars() = %v, want %v", got, want)
	}

	tmpl2, err := Compile("{{ s1_start + params.LT_LEN }}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want2 := map[string]bool{"s1_start": true, "params": true}
	if got := tmpl2.FreeVars(); !reflect.DeepEqual(got, want2) {
		t.Errorf("FreeVars() = %v, want %v", got, want2)
	}
}

func TestLiteralCoercion(t *testing.T) {
	if got := render(t, "{{ true }}", nil, nil); got != true {
		t.Errorf("got %v, want true", got)
	}
	if got := render(t, "{{ null }}", nil, nil); got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if got := render(t, "not a template", nil, nil); got != "not a template" {
		t.Error("literal passthrough failed")
	}
}

func TestHasPlaceholder(t *testing.T) {
	if HasPlaceholder("plain") {
		t.Error("HasPlaceholder(\"plain\") = true, want false")
	}
	if !HasPlaceholder("{{ x }}") {
		t.Error("HasPlaceholder(\"{{ x }}\") = false, want true")
	}
}

func TestCache(t *testing.T) {
	var c Cache
	t1, err := c.Get("{{ 1 + 1 }}")
	if err != nil {
		t.Fatal(err)
	}
	t2, err := c.Get("{{ 1 + 1 }}")
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("Cache.Get did not return the same compiled Template for identical source")
	}
}
