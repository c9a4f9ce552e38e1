// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"strings"
	"testing"

	"github.com/kortschak/readbreak/internal/fastqio"
	"github.com/kortschak/readbreak/internal/pipeline"
)

type fakeReader struct {
	pairs []fastqio.Pair
	i     int
}

func (r *fakeReader) Next() bool {
	if r.i >= len(r.pairs) {
		return false
	}
	r.i++
	return true
}

func (r *fakeReader) Pair() (fastqio.Pair, error) { return r.pairs[r.i-1], nil }
func (r *fakeReader) Err() error                  { return nil }

type fakeWriter struct {
	written []string
}

func (w *fakeWriter) Write(id, seq1, qual1, seq2, qual2 string) error {
	w.written = append(w.written, id+" "+seq1+" "+qual1+" "+seq2+" "+qual2)
	return nil
}

func mustCompile(t *testing.T, yamlSrc string) *pipeline.Pipeline {
	t.Helper()
	spec, err := pipeline.LoadSpec(strings.NewReader(yamlSrc))
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	p, err := pipeline.Compile(spec)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestRunSkipsFailuresAndWritesClippedSurvivors(t *testing.T) {
	p := mustCompile(t, `
pipeline:
  - id: m1
    op: match
    read: 1
    ref: "GGG"
    max_wobble: 0
    max_mismatch: 0
    store_pos_as: pos
    must_pass: true
`)
	reader := &fakeReader{pairs: []fastqio.Pair{
		{ReadID: "good", Seq1: "GGGAAAA", Qual1: "IIIIIII", Seq2: "CCCC", Qual2: "IIII"},
		{ReadID: "bad", Seq1: "TTTTTTT", Qual1: "IIIIIII", Seq2: "CCCC", Qual2: "IIII"},
	}}
	w := &fakeWriter{}
	log := p.NewLog()

	stats, err := Run(reader, p, log, w, DefaultDefaults)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Pairs != 2 || stats.Written != 1 {
		t.Errorf("stats = %+v, want {Pairs:2 Written:1}", stats)
	}
	if len(w.written) != 1 || !strings.HasPrefix(w.written[0], "good/1 ") {
		t.Errorf("written = %v, want one record for good/1", w.written)
	}
}

func TestRunAppliesContextTrimOverrides(t *testing.T) {
	p := mustCompile(t, `
pipeline:
  - id: c1
    op: compute
    expression: 3
    store_as: start_r1
  - id: c2
    op: compute
    expression: "{{ 'tag1' }}"
    store_as: read_tag
`)
	reader := &fakeReader{pairs: []fastqio.Pair{
		{ReadID: "r1", Seq1: "AAAGGGG", Qual1: "IIIIIII", Seq2: "CC", Qual2: "II"},
	}}
	w := &fakeWriter{}
	log := p.NewLog()

	_, err := Run(reader, p, log, w, DefaultDefaults)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.written) != 1 {
		t.Fatalf("written = %v, want 1 record", w.written)
	}
	want := "r1/1_tag1 GGGG IIII CC II"
	if w.written[0] != want {
		t.Errorf("written[0] = %q, want %q", w.written[0], want)
	}
}
