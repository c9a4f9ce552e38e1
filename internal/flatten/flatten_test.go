// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flatten

import (
	"reflect"
	"testing"
)

func TestDotFlattensNestedMaps(t *testing.T) {
	in := map[string]any{
		"total_reads": 10,
		"failures_by_step": map[string]any{
			"m1": 2,
			"e1": 0,
		},
	}
	got := Dot(in)
	want := map[string]any{
		"total_reads":         10,
		"failures_by_step.m1": 2,
		"failures_by_step.e1": 0,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dot(%v) = %v, want %v", in, got, want)
	}
}

func TestDotLeavesFlatMapUnchanged(t *testing.T) {
	in := map[string]any{"a": 1, "b": "x"}
	got := Dot(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Dot(%v) = %v, want unchanged", in, got)
	}
}

func TestWithSepCustomSeparator(t *testing.T) {
	in := map[string]any{"a": map[string]any{"b": 1}}
	got := WithSep(in, "/")
	want := map[string]any{"a/b": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WithSep(%v) = %v, want %v", in, got, want)
	}
}
