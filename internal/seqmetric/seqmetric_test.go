// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmetric

import "testing"

func TestHamming(t *testing.T) {
	for _, test := range []struct {
		x, y string
		want int
	}{
		{"ACGT", "ACGT", 0},
		{"ACGT", "CTAG", 4},
		{"", "", 0},
	} {
		if got := Hamming(test.x, test.y); got != test.want {
			t.Errorf("Hamming(%q, %q) = %d, want %d", test.x, test.y, got, test.want)
		}
		if got := Hamming(test.y, test.x); got != test.want {
			t.Errorf("Hamming is not symmetric for (%q, %q)", test.x, test.y)
		}
	}
}

func TestHammingSelf(t *testing.T) {
	for _, s := range []string{"A", "ACGTN", "TTTTTTTTTT"} {
		if got := Hamming(s, s); got != 0 {
			t.Errorf("Hamming(%q, %q) = %d, want 0", s, s, got)
		}
	}
}

func TestAsymmetric(t *testing.T) {
	tc := Asymmetric('T', 'C')
	if got, want := tc("TTTTT", "CCCCG"), 1; got != want {
		t.Errorf("hammingTC(TTTTT, CCCCG) = %d, want %d", got, want)
	}
	ag := Asymmetric('A', 'G')
	if got, want := ag("GGGGG", "GGGGT"), 1; got != want {
		t.Errorf("hammingAG(GGGGG, GGGGT) = %d, want %d", got, want)
	}

	// Asymmetric is never greater than plain Hamming, with equality iff
	// no position has the ignored conversion.
	x, y := "TACGT", "CACGC"
	if Asymmetric('T', 'C')(x, y) > Hamming(x, y) {
		t.Errorf("asymmetric metric exceeded plain Hamming for (%q, %q)", x, y)
	}
}

func TestRegistryLookup(t *testing.T) {
	for _, name := range []string{"hamming", "hammingTC", "hammingAG"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("hammingXX"); err == nil {
		t.Error("Lookup(\"hammingXX\"): expected error, got nil")
	}
}

func TestSearch(t *testing.T) {
	test := "NNNGGGTACCTAG"
	off := Search(test, "GGGTAC", 5, 0, 0, Hamming)
	if off != 3 {
		t.Errorf("Search offset = %d, want 3", off)
	}

	// No match within tolerance.
	if off := Search(test, "AAAAAA", 5, 0, 0, Hamming); off != -1 {
		t.Errorf("Search offset = %d, want -1", off)
	}

	// Window runs off the end before a candidate qualifies.
	if off := Search("AC", "ACGT", 3, 4, 0, Hamming); off != -1 {
		t.Errorf("Search offset = %d, want -1 (overrun)", off)
	}

	// First qualifying offset wins even if a later one has fewer
	// mismatches.
	tied := "XCYYAC" // "AC" at offset 4 exact; offset 0 "XC" has 1 mismatch vs "AC"
	if off := Search(tied, "AC", 4, 1, 0, Hamming); off != 0 {
		t.Errorf("Search tie-break offset = %d, want 0 (first qualifying offset)", off)
	}
}
