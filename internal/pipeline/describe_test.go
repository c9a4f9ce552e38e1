// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestPipelineString(t *testing.T) {
	p := mustCompile(t, `
pipeline:
  - id: m1
    op: match
    read: 1
    ref: "GGGTAC"
    max_wobble: 5
    max_mismatch: 0
    hamming_fn: hamming
    store_pos_as: s1_start
  - id: c1
    op: compute
    expression: "1"
    store_as: x
    must_pass: false
`)
	s := p.String()
	if !strings.Contains(s, "m1: match (read 1, must pass: true)") {
		t.Errorf("String() missing m1 summary line, got:\n%s", s)
	}
	if !strings.Contains(s, "c1: compute (read -, must pass: false)") {
		t.Errorf("String() missing c1 summary line, got:\n%s", s)
	}
}

func TestPipelineMarshalYAML(t *testing.T) {
	p := mustCompile(t, `
pipeline:
  - id: m1
    op: match
    read: 1
    ref: "GGGTAC"
    max_wobble: 5
    max_mismatch: 0
    hamming_fn: hamming
    store_pos_as: s1_start
  - id: e1
    op: extract
    read: 1
    start: "{{ s1_start + 6 }}"
    length: 4
    store_seq_as: tag
`)
	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "ref: GGGTAC") {
		t.Errorf("marshaled yaml missing frozen ref, got:\n%s", got)
	}
	if !strings.Contains(got, "s1_start + 6") {
		t.Errorf("marshaled yaml missing unfrozen start template, got:\n%s", got)
	}
}
