// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqmetric provides the mismatch-counting and bounded-offset
// search primitives used by the pipeline evaluator to locate and score
// approximate matches within a read.
package seqmetric

import "fmt"

// Func is a mismatch metric: it scores the dissimilarity between two
// equal-length sequences. Implementations must be pure and are expected
// to be called once per candidate offset during a Search.
type Func func(x, y string) int

// Hamming returns the number of positions at which x and y differ.
// It panics if len(x) != len(y); callers that compare variable-length
// substrings must truncate to equal length first (Search never passes
// a shorter window: it stops when the window would run off the end).
func Hamming(x, y string) int {
	if len(x) != len(y) {
		panic(fmt.Sprintf("seqmetric: unequal lengths %d, %d", len(x), len(y)))
	}
	n := 0
	for i := 0; i < len(x); i++ {
		if x[i] != y[i] {
			n++
		}
	}
	return n
}

// Asymmetric returns the Hamming distance between x and y, except that a
// position where x[i] == from and y[i] == to is not counted as a
// mismatch. This models a one-directional chemical conversion (e.g. a
// deaminase converting an unmodified base to another base) that should
// not be penalised when comparing a reference to a converted read.
func Asymmetric(from, to byte) Func {
	return func(x, y string) int {
		if len(x) != len(y) {
			panic(fmt.Sprintf("seqmetric: unequal lengths %d, %d", len(x), len(y)))
		}
		n := 0
		for i := 0; i < len(x); i++ {
			if x[i] != y[i] && !(x[i] == from && y[i] == to) {
				n++
			}
		}
		return n
	}
}

// Registry is the fixed set of metrics a pipeline step may name via its
// hamming_fn field. It is built once at package init and never mutated;
// an unknown name looked up against it is a configuration error.
var Registry = map[string]Func{
	"hamming":   Hamming,
	"hammingTC": Asymmetric('T', 'C'),
	"hammingAG": Asymmetric('A', 'G'),
}

// Lookup resolves a registered metric name. It returns an error rather
// than panicking because an unknown name is supplied by pipeline
// configuration, not by the program.
func Lookup(name string) (Func, error) {
	fn, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("seqmetric: unknown metric %q", name)
	}
	return fn, nil
}

// Search performs a bounded wobble search: for each offset from
// baseOffset to baseOffset+maxWobble inclusive, it compares target
// against the equal-length substring of test starting at that offset
// using h, and returns the first offset (relative to baseOffset) whose
// mismatch count is at most maxHamming. It returns -1 if the window
// runs past the end of test before a candidate qualifies, or if no
// candidate within range qualifies.
//
// The offset returned is relative: 0 means the match begins exactly at
// baseOffset. Candidates are tried in increasing order of absolute
// offset and the first qualifying one wins, even if a later offset in
// the window would have fewer mismatches.
func Search(test, target string, maxWobble, maxHamming, baseOffset int, h Func) int {
	for off := baseOffset; off <= baseOffset+maxWobble; off++ {
		end := off + len(target)
		if off > len(test) || end > len(test) {
			return -1
		}
		sub := test[off:end]
		if h(target, sub) <= maxHamming {
			return off - baseOffset
		}
	}
	return -1
}
