// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import "testing"

func TestQualityAccumulatorStats(t *testing.T) {
	var a QualityAccumulator
	a.Add("III") // Phred 40,40,40 at Sanger offset 33 ('I' = 73)
	a.Add("(((") // Phred 7,7,7 ('(' = 40)

	stats := a.Stats()
	if stats.N != 6 {
		t.Errorf("N = %d, want 6", stats.N)
	}
	wantMean := (40.0*3 + 7.0*3) / 6
	if diff := stats.Mean - wantMean; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Mean = %v, want %v", stats.Mean, wantMean)
	}
	if stats.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0 for a mixed-quality sample", stats.StdDev)
	}
}

func TestQualityAccumulatorEmpty(t *testing.T) {
	var a QualityAccumulator
	stats := a.Stats()
	if stats != (QualityStats{}) {
		t.Errorf("Stats() on empty accumulator = %+v, want zero value", stats)
	}
}
