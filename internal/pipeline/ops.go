// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"

	"github.com/kortschak/readbreak/internal/seqmetric"
)

func runStep(p *Pipeline, s Step, seq string, ctx *Context) (bool, error) {
	env := ctx.Map()
	switch t := s.(type) {
	case MatchStep:
		return execMatch(t, seq, env, p, ctx)
	case ExtractStep:
		return execExtract(t, seq, env, p, ctx)
	case HammingTestStep:
		return execHammingTest(t, seq, env, p, ctx)
	case RegexSearchStep:
		return execRegexSearch(t, seq, p, ctx)
	case TestStep:
		return execTest(t, env, p, ctx)
	case ComputeStep:
		return execCompute(t, env, p, ctx)
	default:
		return false, fmt.Errorf("pipeline: unhandled step type %T", s)
	}
}

func execMatch(s MatchStep, seq string, env map[string]any, p *Pipeline, ctx *Context) (bool, error) {
	ref, err := s.Ref.renderString(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	maxWobble, err := s.MaxWobble.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	maxMismatch, err := s.MaxMismatch.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	baseOffset, err := s.BaseOffset.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	fnName, err := s.HammingFn.renderString(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	fn, err := seqmetric.Lookup(fnName)
	if err != nil {
		return false, err
	}

	off := seqmetric.Search(seq, ref, maxWobble, maxMismatch, baseOffset, fn)
	if off == -1 {
		if s.MustPass {
			return false, nil
		}
		ctx.Set(s.StorePosAs, nil)
		return true, nil
	}
	ctx.Set(s.StorePosAs, int64(off))
	return true, nil
}

func execExtract(s ExtractStep, seq string, env map[string]any, p *Pipeline, ctx *Context) (bool, error) {
	start, err := s.Start.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	length, err := s.Length.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}

	fragment := sliceString(seq, start, length)
	ctx.Set(s.StoreSeqAs, fragment)

	if !s.HasWhitelist {
		return true, nil
	}
	wl, ok := p.whitelist[s.Whitelist]
	if !ok {
		return false, fmt.Errorf("pipeline: step %q: unknown whitelist %q", s.ID, s.Whitelist)
	}
	pass := wl.Contains(fragment)
	ctx.Set(s.StoreMatchAs, pass)
	return pass, nil
}

// sliceString returns seq[start:start+length] as used by extract (§4.4),
// clamping both bounds to the string instead of panicking, so an
// out-of-range window yields a shorter (possibly empty) fragment. A
// negative start is treated as 0; it does not count from the end.
func sliceString(s string, start, length int) string {
	n := len(s)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + length
	if end < start {
		end = start
	}
	if end > n {
		end = n
	}
	return s[start:end]
}

func execHammingTest(s HammingTestStep, seq string, env map[string]any, p *Pipeline, ctx *Context) (bool, error) {
	ref, err := s.Ref.renderString(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	start, err := s.Start.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	length, err := s.Length.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	maxMismatch, err := s.MaxMismatch.renderInt(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	fnName, err := s.HammingFn.renderString(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	fn, err := seqmetric.Lookup(fnName)
	if err != nil {
		return false, err
	}

	fragment := sliceString(seq, start, length)
	// Compare over the overlapping length rather than requiring equal
	// lengths: the original's hamming (sum(map(ne, x, y))) zips to the
	// shorter of its two arguments, so a boundary-truncated fragment
	// still compares against the corresponding prefix of ref instead of
	// erroring (see DESIGN.md's Open Question decisions).
	overlap := ref
	frag := fragment
	if n := min(len(overlap), len(frag)); len(overlap) != len(frag) {
		overlap = overlap[:n]
		frag = frag[:n]
	}
	d := fn(overlap, frag)
	result := d <= maxMismatch
	ctx.Set(s.StoreResultAs, result)
	return result, nil
}

func execRegexSearch(s RegexSearchStep, seq string, p *Pipeline, ctx *Context) (bool, error) {
	re, ok := p.regexes[s.Pattern]
	if !ok {
		return false, fmt.Errorf("pipeline: step %q: unknown regex pattern %q", s.ID, s.Pattern)
	}
	loc := re.FindStringIndex(seq)
	if loc == nil {
		ctx.Set(s.StorePosAs, s.Default)
		return false, nil
	}
	ctx.Set(s.StorePosAs, int64(loc[0]))
	if s.HasStoreMatchAs {
		ctx.Set(s.StoreMatchAs, seq[loc[0]:loc[1]])
	}
	return true, nil
}

func execTest(s TestStep, env map[string]any, p *Pipeline, ctx *Context) (bool, error) {
	result, err := s.Expression.renderBool(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	ctx.Set(s.StoreResultAs, result)
	return result, nil
}

func execCompute(s ComputeStep, env map[string]any, p *Pipeline, ctx *Context) (bool, error) {
	v, err := s.Expression.render(env, p.namespace, p.globals)
	if err != nil {
		return false, err
	}
	ctx.Set(s.StoreAs, v)
	if !s.HasPassIf {
		return true, nil
	}
	return s.PassIf.renderBool(ctx.Map(), p.namespace, p.globals)
}
