// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"testing"

	"github.com/kortschak/readbreak/internal/flatten"
)

func TestParseLogSnapshotFlattensForTabularDisplay(t *testing.T) {
	l := NewParseLog([]Step{
		MatchStep{StepBase: StepBase{ID: "m1"}},
	})
	l.recordStepFailure("m1")
	l.recordPairFailure()
	l.recordOK()

	flat := flatten.Dot(l.Snapshot())
	if flat["total_reads"] != 2 {
		t.Errorf("total_reads = %v, want 2", flat["total_reads"])
	}
	if flat["failures_by_step.m1"] != 1 {
		t.Errorf("failures_by_step.m1 = %v, want 1", flat["failures_by_step.m1"])
	}
}
