// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// RawSpec is the on-disk pipeline specification format (§6): a mapping
// containing an ordered "pipeline" step list and an optional "params"
// globals table. Step fields are deliberately decoded as a generic
// map rather than per-operation Go structs — unlike the polymorphic
// command/uses fields in adest-aes-scripts' dslyaml package, every
// readbreak step field is plain-scalar-or-template, so yaml.v3's
// default interface{} decoding is sufficient without reaching for
// yaml.Node.
type RawSpec struct {
	Params   map[string]any   `yaml:"params"`
	Pipeline []map[string]any `yaml:"pipeline"`
}

// LoadSpec decodes a pipeline specification document from r.
func LoadSpec(r io.Reader) (*RawSpec, error) {
	var spec RawSpec
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("pipeline: decoding spec: %w", err)
	}
	normalizeMap(spec.Params)
	for _, step := range spec.Pipeline {
		normalizeMap(step)
	}
	return &spec, nil
}

// normalizeMap recursively rewrites the map[string]interface{} values
// yaml.v3 produces for nested mappings and coerces integer scalars to
// int64, giving the rest of the compiler a single stable set of Go
// types to switch on regardless of how a number was spelled in YAML.
func normalizeMap(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		normalizeMap(t)
		return t
	case int:
		return int64(t)
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}
