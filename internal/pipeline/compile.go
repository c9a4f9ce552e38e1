// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/kortschak/readbreak/internal/template"
)

// DefaultNamespace is the globals namespace name used when none is
// specified, matching the source's default "params".
const DefaultNamespace = "params"

// Pipeline is an immutable, compiled, read-only pipeline. Construction
// resolves globals to a fixed point, freezes globals-only step fields,
// compiles regexes, and loads whitelists; none of the resulting tables
// are mutated afterwards, so a *Pipeline may be shared across
// concurrently running evaluators as long as each owns its own
// *ParseLog (or the log's updates are synchronized externally).
type Pipeline struct {
	steps     []Step
	globals   map[string]any
	namespace string
	regexes   map[string]*regexp.Regexp
	whitelist map[string]*Whitelist
	cache     *template.Cache
}

// Option configures Compile.
type Option func(*compileOptions)

type compileOptions struct {
	namespace string
	baseDir   string
}

// WithNamespace overrides the default "params" globals namespace name.
func WithNamespace(name string) Option {
	return func(o *compileOptions) { o.namespace = name }
}

// WithBaseDir sets the directory whitelist file paths are resolved
// relative to.
func WithBaseDir(dir string) Option {
	return func(o *compileOptions) { o.baseDir = dir }
}

// NewLog returns a ParseLog pre-populated with a zeroed entry for
// every step in the pipeline (§4.3.5).
func (p *Pipeline) NewLog() *ParseLog { return NewParseLog(p.steps) }

// Steps returns the compiled step list in declared order.
func (p *Pipeline) Steps() []Step { return p.steps }

// Compile builds a Pipeline from a raw specification. See §4.3 for the
// five construction steps this performs, in order.
func Compile(spec *RawSpec, opts ...Option) (*Pipeline, error) {
	o := compileOptions{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}

	globals := map[string]any{}
	for k, v := range spec.Params {
		globals[k] = v
	}

	cache := &template.Cache{}

	if err := resolveGlobals(globals, o.namespace, cache); err != nil {
		return nil, err
	}

	steps, err := buildSteps(spec.Pipeline, cache)
	if err != nil {
		return nil, err
	}
	steps, err = freezeSteps(steps, o.namespace, globals)
	if err != nil {
		return nil, err
	}

	regexes, err := compileRegexPatterns(globals)
	if err != nil {
		return nil, err
	}

	barcodeWhitelists, _ := globals["barcode_whitelists"].(map[string]any)
	whitelists, err := loadWhitelists(barcodeWhitelists, o.baseDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		steps:     steps,
		globals:   globals,
		namespace: o.namespace,
		regexes:   regexes,
		whitelist: whitelists,
		cache:     cache,
	}, nil
}

// resolveGlobals repeatedly re-renders every templated global value
// against the current globals map until a pass produces no changes
// (§4.3.1). Iteration is over a deterministic, sorted key order so
// that a single pass sees as much intra-pass convergence as possible
// without depending on Go's randomized map order.
func resolveGlobals(globals map[string]any, namespace string, cache *template.Cache) error {
	const maxPasses = 100
	keys := make([]string, 0, len(globals))
	for k := range globals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, k := range keys {
			s, ok := globals[k].(string)
			if !ok || !template.HasPlaceholder(s) {
				continue
			}
			tmpl, err := cache.Get(s)
			if err != nil {
				return fmt.Errorf("pipeline: compiling global %q: %w", k, err)
			}
			rendered, err := tmpl.Render(globals, namespace, globals)
			if err != nil {
				return fmt.Errorf("pipeline: resolving global %q: %w", k, err)
			}
			if !valueEqual(rendered, globals[k]) {
				globals[k] = rendered
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
	return fmt.Errorf("pipeline: globals did not converge after %d passes (possible cycle)", maxPasses)
}

func valueEqual(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b) && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// buildSteps parses each raw step map into its typed Step variant.
func buildSteps(raw []map[string]any, cache *template.Cache) ([]Step, error) {
	steps := make([]Step, len(raw))
	for i, m := range raw {
		id, _ := m["id"].(string)
		if id == "" {
			id = fmt.Sprintf("step_%d", i)
		}
		mustPass := true
		if v, ok := m["must_pass"]; ok {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("pipeline: step %q: must_pass must be a boolean", id)
			}
			mustPass = b
		}
		base := StepBase{ID: id, MustPass: mustPass}
		if v, ok := m["read"]; ok {
			n, err := coerceInt(v)
			if err != nil {
				return nil, fmt.Errorf("pipeline: step %q: read: %w", id, err)
			}
			if n != 1 && n != 2 {
				return nil, fmt.Errorf("pipeline: step %q: read must be 1 or 2, got %d", id, n)
			}
			base.Read = n
			base.HasRead = true
		}

		op, _ := m["op"].(string)
		step, err := buildStep(base, op, m, cache)
		if err != nil {
			return nil, fmt.Errorf("pipeline: step %q: %w", id, err)
		}
		steps[i] = step
	}
	return steps, nil
}

func field(cache *template.Cache, m map[string]any, key string) (Field, error) {
	return newField(cache, m[key])
}

func requiredField(cache *template.Cache, m map[string]any, key string) (Field, error) {
	if _, ok := m[key]; !ok {
		return Field{}, fmt.Errorf("missing required field %q", key)
	}
	return newField(cache, m[key])
}

func requiredString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s, nil
}

func buildStep(base StepBase, op string, m map[string]any, cache *template.Cache) (Step, error) {
	switch op {
	case "match":
		ref, err := requiredField(cache, m, "ref")
		if err != nil {
			return nil, err
		}
		maxWobble, err := requiredField(cache, m, "max_wobble")
		if err != nil {
			return nil, err
		}
		maxMismatch, err := requiredField(cache, m, "max_mismatch")
		if err != nil {
			return nil, err
		}
		baseOffset, _ := field(cache, m, "base_offset")
		if _, ok := m["base_offset"]; !ok {
			baseOffset = literalField(int64(0))
		}
		hammingFn := literalField("hamming")
		if _, ok := m["hamming_fn"]; ok {
			hammingFn, err = field(cache, m, "hamming_fn")
			if err != nil {
				return nil, err
			}
		}
		storePosAs, err := requiredString(m, "store_pos_as")
		if err != nil {
			return nil, err
		}
		return MatchStep{
			StepBase:    base,
			Ref:         ref,
			MaxWobble:   maxWobble,
			MaxMismatch: maxMismatch,
			BaseOffset:  baseOffset,
			HammingFn:   hammingFn,
			StorePosAs:  storePosAs,
		}, nil

	case "extract":
		start, err := requiredField(cache, m, "start")
		if err != nil {
			return nil, err
		}
		length, err := requiredField(cache, m, "length")
		if err != nil {
			return nil, err
		}
		storeSeqAs, err := requiredString(m, "store_seq_as")
		if err != nil {
			return nil, err
		}
		whitelist, hasWhitelist := m["whitelist"].(string)
		storeMatchAs := base.ID + "_ok"
		if v, ok := m["store_match_as"]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("store_match_as must be a string")
			}
			storeMatchAs = s
		}
		return ExtractStep{
			StepBase:     base,
			Start:        start,
			Length:       length,
			StoreSeqAs:   storeSeqAs,
			Whitelist:    whitelist,
			HasWhitelist: hasWhitelist,
			StoreMatchAs: storeMatchAs,
		}, nil

	case "hamming_test":
		ref, err := requiredField(cache, m, "ref")
		if err != nil {
			return nil, err
		}
		start, err := requiredField(cache, m, "start")
		if err != nil {
			return nil, err
		}
		length, err := requiredField(cache, m, "length")
		if err != nil {
			return nil, err
		}
		maxMismatch, err := requiredField(cache, m, "max_mismatch")
		if err != nil {
			return nil, err
		}
		hammingFn, err := requiredField(cache, m, "hamming_fn")
		if err != nil {
			return nil, err
		}
		storeResultAs := base.ID
		if v, ok := m["store_result_as"]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("store_result_as must be a string")
			}
			storeResultAs = s
		}
		return HammingTestStep{
			StepBase:      base,
			Ref:           ref,
			Start:         start,
			Length:        length,
			MaxMismatch:   maxMismatch,
			HammingFn:     hammingFn,
			StoreResultAs: storeResultAs,
		}, nil

	case "regex_search":
		pattern, err := requiredString(m, "pattern")
		if err != nil {
			return nil, err
		}
		storePosAs, err := requiredString(m, "store_pos_as")
		if err != nil {
			return nil, err
		}
		storeMatchAs, hasStoreMatchAs := m["store_match_as"].(string)
		defaultVal, hasDefault := m["default"]
		return RegexSearchStep{
			StepBase:        base,
			Pattern:         pattern,
			StorePosAs:      storePosAs,
			StoreMatchAs:    storeMatchAs,
			HasStoreMatchAs: hasStoreMatchAs,
			Default:         defaultVal,
			HasDefault:      hasDefault,
		}, nil

	case "test":
		expr, err := requiredField(cache, m, "expression")
		if err != nil {
			return nil, err
		}
		storeResultAs := base.ID
		if v, ok := m["store_result_as"]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("store_result_as must be a string")
			}
			storeResultAs = s
		}
		return TestStep{StepBase: base, Expression: expr, StoreResultAs: storeResultAs}, nil

	case "compute":
		expr, err := requiredField(cache, m, "expression")
		if err != nil {
			return nil, err
		}
		storeAs, err := requiredString(m, "store_as")
		if err != nil {
			return nil, err
		}
		passIf, hasPassIf := Field{}, false
		if _, ok := m["pass_if"]; ok {
			passIf, err = field(cache, m, "pass_if")
			if err != nil {
				return nil, err
			}
			hasPassIf = true
		}
		return ComputeStep{
			StepBase:   base,
			Expression: expr,
			StoreAs:    storeAs,
			PassIf:     passIf,
			HasPassIf:  hasPassIf,
		}, nil

	case "":
		return nil, fmt.Errorf("missing required field \"op\"")
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
