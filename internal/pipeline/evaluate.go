// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import "fmt"

// Parse runs the compiled pipeline against one read pair (§4.5). It
// never panics: an unexpected error from an operation handler is
// caught and converted to a step failure, exactly like an operation
// returning false.
func (p *Pipeline) Parse(log *ParseLog, readID, seq1, qual1, seq2, qual2 string) *Outcome {
	ctx := NewContext()
	ctx.Set("read_id", readID)
	ctx.Set("len_seq1", int64(len(seq1)))
	ctx.Set("len_seq2", int64(len(seq2)))

	for _, step := range p.steps {
		base := step.base()
		seq := selectSeq(base, seq1, seq2)

		ok, err := p.runStepSafely(step, seq, ctx)
		if err == nil && ok {
			continue
		}

		msg := "step returned false"
		if err != nil {
			msg = err.Error()
		}
		log.recordStepFailure(base.ID)
		if base.MustPass {
			log.recordPairFailure()
			return &Outcome{
				ReadID:     readID,
				Status:     "fail",
				Context:    ctx,
				FailedStep: base.ID,
				Message:    msg,
			}
		}
	}

	log.recordOK()
	return &Outcome{
		ReadID:  readID,
		Status:  "ok",
		Context: ctx,
	}
}

// selectSeq picks seq1 or seq2 for a step according to its read
// field, defaulting to the empty string when the step names no read
// (§4.5 step 3).
func selectSeq(base StepBase, seq1, seq2 string) string {
	if !base.HasRead {
		return ""
	}
	switch base.Read {
	case 1:
		return seq1
	case 2:
		return seq2
	default:
		return ""
	}
}

// runStepSafely recovers a panicking operation handler (e.g. a
// seqmetric function called with mismatched lengths) and converts it
// to an error, keeping the containment guarantee of §5 even when an
// operation's own precondition is violated by bad step configuration.
func (p *Pipeline) runStepSafely(step Step, seq string, ctx *Context) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("pipeline: step %q panicked: %v", step.base().ID, r)
		}
	}()
	return runStep(p, step, seq, ctx)
}
