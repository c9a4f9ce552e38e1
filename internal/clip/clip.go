// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clip implements the §6 clip-and-write driver: it runs each
// read pair through a compiled pipeline, skips pairs that fail, and
// writes the trimmed, tagged survivors out through a fastqio.PairWriter.
package clip

import (
	"fmt"

	"github.com/kortschak/readbreak/internal/fastqio"
	"github.com/kortschak/readbreak/internal/pipeline"
)

// Defaults holds the fallback trim/tag values used when a pipeline's
// context does not set the corresponding override key, matching
// original_source's read_clip_and_write keyword defaults.
type Defaults struct {
	StartR1 int
	EndR1   int // -1 means "to the end of the read"
	StartR2 int
	EndR2   int
	ReadTag string
}

// DefaultDefaults mirrors original_source's read_clip_and_write
// defaults: whole-read output with no tag.
var DefaultDefaults = Defaults{StartR1: 0, EndR1: -1, StartR2: 0, EndR2: -1, ReadTag: ""}

// Stats accumulates counts of pairs seen and written across a Run.
type Stats struct {
	Pairs   int
	Written int
}

// Reader is the read-pair source Run consumes; *fastqio.PairReader
// satisfies it.
type Reader interface {
	Next() bool
	Pair() (fastqio.Pair, error)
	Err() error
}

// Writer is the clipped-pair sink Run writes to; *fastqio.PairWriter
// satisfies it.
type Writer interface {
	Write(id, seq1, qual1, seq2, qual2 string) error
}

// Run iterates reader, parses each pair against p, skips pairs whose
// outcome is not "ok", reads per-pair trim/tag overrides from the
// successful context, and writes the clipped, tagged pair through w.
func Run(reader Reader, p *pipeline.Pipeline, log *pipeline.ParseLog, w Writer, d Defaults) (Stats, error) {
	var stats Stats
	for reader.Next() {
		pair, err := reader.Pair()
		if err != nil {
			return stats, fmt.Errorf("clip: %w", err)
		}
		stats.Pairs++

		outcome := p.Parse(log, pair.ReadID, pair.Seq1, pair.Qual1, pair.Seq2, pair.Qual2)
		if !outcome.OK() {
			continue
		}

		s1 := intOr(outcome.Context, "start_r1", d.StartR1)
		e1 := endOr(outcome.Context, "end_r1", d.EndR1, len(pair.Seq1))
		s2 := intOr(outcome.Context, "start_r2", d.StartR2)
		e2 := endOr(outcome.Context, "end_r2", d.EndR2, len(pair.Seq2))
		tag := stringOr(outcome.Context, "read_tag", d.ReadTag)

		seq1, qual1 := clipString(pair.Seq1, s1, e1), clipString(pair.Qual1, s1, e1)
		seq2, qual2 := clipString(pair.Seq2, s2, e2), clipString(pair.Qual2, s2, e2)

		newID := pair.ReadID + "/1"
		if tag != "" {
			newID += "_" + tag
		}

		if err := w.Write(newID, seq1, qual1, seq2, qual2); err != nil {
			return stats, fmt.Errorf("clip: writing %q: %w", pair.ReadID, err)
		}
		stats.Written++
	}
	if err := reader.Err(); err != nil {
		return stats, fmt.Errorf("clip: %w", err)
	}
	return stats, nil
}

// clipString slices s[start:end], clamping to a valid range rather
// than panicking; trim bounds come from pipeline context values that
// have already been validated by the pipeline's own coercion, but a
// defensive clamp keeps a malformed override from crashing a run.
func clipString(s string, start, end int) string {
	n := len(s)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return s[start:end]
}

// intOr reads an integer override from ctx, falling back to def when
// the key is absent or not an integer.
func intOr(ctx *pipeline.Context, key string, def int) int {
	v, ok := ctx.Get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	default:
		return def
	}
}

// endOr is like intOr but additionally interprets -1 or null as "to
// the end of the read" (§6).
func endOr(ctx *pipeline.Context, key string, def, readLen int) int {
	v, ok := ctx.Get(key)
	if !ok {
		if def == -1 {
			return readLen
		}
		return def
	}
	if v == nil {
		return readLen
	}
	switch t := v.(type) {
	case int64:
		if t == -1 {
			return readLen
		}
		return int(t)
	case int:
		if t == -1 {
			return readLen
		}
		return t
	default:
		if def == -1 {
			return readLen
		}
		return def
	}
}

func stringOr(ctx *pipeline.Context, key, def string) string {
	v, ok := ctx.Get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}
