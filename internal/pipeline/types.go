// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline implements the declarative read-parsing engine: the
// static compiler that turns a pipeline specification into an
// immutable, ready-to-run Pipeline, and the per-read-pair evaluator
// that runs it.
package pipeline

// StepBase holds the fields common to every step, regardless of
// operation.
type StepBase struct {
	ID       string
	MustPass bool
	Read     int  // 0 when HasRead is false
	HasRead  bool
}

// Step is the tagged-variant operation a compiled pipeline executes.
// Each concrete type below corresponds to one of the six operations in
// §4.4; the evaluator dispatches on a type switch rather than a
// string-keyed table.
type Step interface {
	base() StepBase
}

// MatchStep is the "match" operation: approximate positional search.
type MatchStep struct {
	StepBase
	Ref         Field
	MaxWobble   Field
	MaxMismatch Field
	BaseOffset  Field
	HammingFn   Field
	StorePosAs  string
}

func (s MatchStep) base() StepBase { return s.StepBase }

// ExtractStep is the "extract" operation: substring copy with an
// optional whitelist check.
type ExtractStep struct {
	StepBase
	Start        Field
	Length       Field
	StoreSeqAs   string
	Whitelist    string
	HasWhitelist bool
	StoreMatchAs string
}

func (s ExtractStep) base() StepBase { return s.StepBase }

// HammingTestStep is the "hamming_test" operation: fixed-position
// mismatch check.
type HammingTestStep struct {
	StepBase
	Ref           Field
	Start         Field
	Length        Field
	MaxMismatch   Field
	HammingFn     Field
	StoreResultAs string
}

func (s HammingTestStep) base() StepBase { return s.StepBase }

// RegexSearchStep is the "regex_search" operation: named precompiled
// regex search.
type RegexSearchStep struct {
	StepBase
	Pattern         string
	StorePosAs      string
	StoreMatchAs    string
	HasStoreMatchAs bool
	Default         any
	HasDefault      bool
}

func (s RegexSearchStep) base() StepBase { return s.StepBase }

// TestStep is the "test" operation: boolean expression.
type TestStep struct {
	StepBase
	Expression    Field
	StoreResultAs string
}

func (s TestStep) base() StepBase { return s.StepBase }

// ComputeStep is the "compute" operation: value-producing expression.
type ComputeStep struct {
	StepBase
	Expression Field
	StoreAs    string
	PassIf     Field
	HasPassIf  bool
}

func (s ComputeStep) base() StepBase { return s.StepBase }

// Context is the ordered per-read-pair mapping populated by pipeline
// steps. Order is preserved for deterministic serialization (§3); key
// lookup is O(1) via the companion map.
type Context struct {
	keys []string
	vals map[string]any
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{vals: make(map[string]any)}
}

// Set stores v under key, appending key to the order the first time it
// is written; a later write to an existing key updates its value in
// place without moving its position.
func (c *Context) Set(key string, v any) {
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key] = v
}

// Get returns the value stored under key, if any.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.vals[key]
	return v, ok
}

// Map returns the live backing map, suitable for use as a template
// rendering environment.
func (c *Context) Map() map[string]any { return c.vals }

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string { return c.keys }

// Ordered returns the context's entries as an ordered slice of
// key/value pairs.
func (c *Context) Ordered() []KV {
	out := make([]KV, len(c.keys))
	for i, k := range c.keys {
		out[i] = KV{Key: k, Value: c.vals[k]}
	}
	return out
}

// KV is a single ordered context entry.
type KV struct {
	Key   string
	Value any
}

// Outcome is the result of parsing one read pair (§3).
type Outcome struct {
	ReadID     string
	Status     string // "ok" or "fail"
	Context    *Context
	FailedStep string
	Message    string
}

// OK reports whether the outcome succeeded.
func (o *Outcome) OK() bool { return o.Status == "ok" }
