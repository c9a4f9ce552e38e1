// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// compileRegexPatterns builds the named regex table from the
// regex_patterns section of globals (§4.3.3). A "full" pattern matches
// sequence as-is; a "full_or_tail" pattern additionally matches any
// suffix-at-end formed by a prefix of sequence of length min_tail..len.
//
// Unlike the Python source, which logs a warning and stores a nil
// pattern for an unknown type (deferring the failure to first use),
// Compile treats an unknown type as a fatal compile-time error — see
// DESIGN.md's Open Question decision on this point.
func compileRegexPatterns(globals map[string]any) (map[string]*regexp.Regexp, error) {
	raw, _ := globals["regex_patterns"].(map[string]any)
	out := make(map[string]*regexp.Regexp, len(raw))
	for name, v := range raw {
		def, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pipeline: regex_patterns[%q] must be a mapping", name)
		}
		re, err := compileOnePattern(def)
		if err != nil {
			return nil, fmt.Errorf("pipeline: compiling regex pattern %q: %w", name, err)
		}
		out[name] = re
	}
	return out, nil
}

func compileOnePattern(def map[string]any) (*regexp.Regexp, error) {
	typ := "full"
	if v, ok := def["type"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("type must be a string")
		}
		typ = s
	}
	seqVal, ok := def["sequence"]
	if !ok {
		return nil, fmt.Errorf("missing required field \"sequence\"")
	}
	sequence, ok := seqVal.(string)
	if !ok {
		return nil, fmt.Errorf("\"sequence\" must be a string")
	}

	switch typ {
	case "full":
		re, err := regexp.Compile(sequence)
		if err != nil {
			return nil, fmt.Errorf("invalid sequence regex %q: %w", sequence, err)
		}
		return re, nil
	case "full_or_tail":
		minTail := 4
		if v, ok := def["min_tail"]; ok {
			i, err := coerceInt(v)
			if err != nil {
				return nil, fmt.Errorf("min_tail: %w", err)
			}
			minTail = i
		}
		if minTail < 0 {
			return nil, fmt.Errorf("min_tail (%d) must not be negative", minTail)
		}
		if minTail > len(sequence) {
			return nil, fmt.Errorf("min_tail (%d) is longer than sequence length (%d)", minTail, len(sequence))
		}
		alternates := make([]string, 0, len(sequence)-minTail+1)
		for i := minTail; i <= len(sequence); i++ {
			alternates = append(alternates, regexp.QuoteMeta(sequence[:i]))
		}
		pattern := fmt.Sprintf("%s|(%s)$", regexp.QuoteMeta(sequence), strings.Join(alternates, "|"))
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid full_or_tail pattern %q: %w", pattern, err)
		}
		return re, nil
	default:
		return nil, fmt.Errorf("unknown regex type %q", typ)
	}
}
