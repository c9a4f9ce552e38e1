// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"strings"
)

// String renders a short, one-line-per-step human summary of the
// compiled pipeline, paralleling original_source's ReadParser.__str__.
// It is a debugging aid only; it plays no part in compilation or
// evaluation.
func (p *Pipeline) String() string {
	var b strings.Builder
	b.WriteString("Pipeline:\n")
	for i, s := range p.steps {
		base := s.base()
		read := "-"
		if base.HasRead {
			read = fmt.Sprint(base.Read)
		}
		op := opName(s)
		fmt.Fprintf(&b, "[%3d]  %s: %s (read %s, must pass: %t)\n", i, base.ID, op, read, base.MustPass)
	}
	return strings.TrimRight(b.String(), "\n")
}

// opName returns the operation name a step was built from, the inverse
// of buildStep's switch.
func opName(s Step) string {
	switch s.(type) {
	case MatchStep:
		return "match"
	case ExtractStep:
		return "extract"
	case HammingTestStep:
		return "hamming_test"
	case RegexSearchStep:
		return "regex_search"
	case TestStep:
		return "test"
	case ComputeStep:
		return "compute"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the compiled pipeline back to the §6 step-list
// shape, paralleling original_source's ReadParser.to_yaml. A frozen
// field is emitted as its rendered literal rather than its original
// template text, since freezing has already thrown the source text
// away for that field; a field still awaiting per-read rendering is
// emitted as its original "{{ ... }}" text.
func (p *Pipeline) MarshalYAML() (any, error) {
	steps := make([]map[string]any, len(p.steps))
	for i, s := range p.steps {
		steps[i] = stepToMap(s)
	}
	return map[string]any{"pipeline": steps}, nil
}

func stepToMap(s Step) map[string]any {
	base := s.base()
	m := map[string]any{"id": base.ID, "op": opName(s), "must_pass": base.MustPass}
	if base.HasRead {
		m["read"] = base.Read
	}

	switch t := s.(type) {
	case MatchStep:
		m["ref"] = t.Ref.rawValue()
		m["max_wobble"] = t.MaxWobble.rawValue()
		m["max_mismatch"] = t.MaxMismatch.rawValue()
		m["base_offset"] = t.BaseOffset.rawValue()
		m["hamming_fn"] = t.HammingFn.rawValue()
		m["store_pos_as"] = t.StorePosAs
	case ExtractStep:
		m["start"] = t.Start.rawValue()
		m["length"] = t.Length.rawValue()
		m["store_seq_as"] = t.StoreSeqAs
		if t.HasWhitelist {
			m["whitelist"] = t.Whitelist
		}
		m["store_match_as"] = t.StoreMatchAs
	case HammingTestStep:
		m["ref"] = t.Ref.rawValue()
		m["start"] = t.Start.rawValue()
		m["length"] = t.Length.rawValue()
		m["max_mismatch"] = t.MaxMismatch.rawValue()
		m["hamming_fn"] = t.HammingFn.rawValue()
		m["store_result_as"] = t.StoreResultAs
	case RegexSearchStep:
		m["pattern"] = t.Pattern
		m["store_pos_as"] = t.StorePosAs
		if t.HasStoreMatchAs {
			m["store_match_as"] = t.StoreMatchAs
		}
		if t.HasDefault {
			m["default"] = t.Default
		}
	case TestStep:
		m["expression"] = t.Expression.rawValue()
		m["store_result_as"] = t.StoreResultAs
	case ComputeStep:
		m["expression"] = t.Expression.rawValue()
		m["store_as"] = t.StoreAs
		if t.HasPassIf {
			m["pass_if"] = t.PassIf.rawValue()
		}
	}
	return m
}
