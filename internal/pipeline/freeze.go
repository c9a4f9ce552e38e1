// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

// freezeSteps replaces every step field whose free variables are a
// subset of {namespace} with the literal Field produced by rendering
// it once against globals (§4.3.2). Fields that also reference any
// other name (a per-read context key) are left as templates to be
// rendered on every read.
func freezeSteps(steps []Step, namespace string, globals map[string]any) ([]Step, error) {
	out := make([]Step, len(steps))
	for i, s := range steps {
		frozen, err := freezeStep(s, namespace, globals)
		if err != nil {
			return nil, err
		}
		out[i] = frozen
	}
	return out, nil
}

func freezeStep(s Step, namespace string, globals map[string]any) (Step, error) {
	var err error
	fz := func(f Field) Field {
		if err != nil {
			return f
		}
		nf, _, ferr := f.freeze(namespace, globals)
		if ferr != nil {
			err = ferr
			return f
		}
		return nf
	}

	switch t := s.(type) {
	case MatchStep:
		t.Ref = fz(t.Ref)
		t.MaxWobble = fz(t.MaxWobble)
		t.MaxMismatch = fz(t.MaxMismatch)
		t.BaseOffset = fz(t.BaseOffset)
		t.HammingFn = fz(t.HammingFn)
		return t, err
	case ExtractStep:
		t.Start = fz(t.Start)
		t.Length = fz(t.Length)
		return t, err
	case HammingTestStep:
		t.Ref = fz(t.Ref)
		t.Start = fz(t.Start)
		t.Length = fz(t.Length)
		t.MaxMismatch = fz(t.MaxMismatch)
		t.HammingFn = fz(t.HammingFn)
		return t, err
	case RegexSearchStep:
		return t, nil
	case TestStep:
		t.Expression = fz(t.Expression)
		return t, err
	case ComputeStep:
		t.Expression = fz(t.Expression)
		if t.HasPassIf {
			t.PassIf = fz(t.PassIf)
		}
		return t, err
	default:
		return s, nil
	}
}
