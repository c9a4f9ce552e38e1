// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flatten implements the dotted-key flattening helper used to
// render nested mapping data (such as a parse log) as a single flat
// row for tabular display.
package flatten

// Dot flattens a nested map[string]any into a single-level map whose
// keys are the dotted paths to each non-mapping leaf value, e.g.
// {"a": {"b": 1, "c": 2}} becomes {"a.b": 1, "a.c": 2}.
//
// Grounded on original_source's flatten_dot; sep defaults to "." via
// DotSep when called through Dot.
func Dot(m map[string]any) map[string]any {
	return dot(m, "", DotSep)
}

// DotSep is the default path separator used by Dot.
const DotSep = "."

// WithSep flattens m using sep as the path separator instead of ".".
func WithSep(m map[string]any, sep string) map[string]any {
	return dot(m, "", sep)
}

func dot(m map[string]any, prefix, sep string) map[string]any {
	flat := make(map[string]any)
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + sep + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range dot(nested, path, sep) {
				flat[nk] = nv
			}
			continue
		}
		flat[path] = v
	}
	return flat
}
