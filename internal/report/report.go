// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report supplements spec.md with the base-distribution
// reporting original_source's plot.py once provided (§ Supplemented
// features, SPEC_FULL.md): a bar chart of per-step failure counts
// alongside the mean/stddev of per-base Phred quality scores observed
// across a run, rendered to an image file via gonum.org/v1/plot.
package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kortschak/readbreak/internal/pipeline"
)

// QualityStats holds the mean and standard deviation of the Phred
// quality scores accumulated by a QualityAccumulator.
type QualityStats struct {
	Mean   float64
	StdDev float64
	N      int
}

// QualityAccumulator collects per-base Phred quality scores across a
// run so a final report can summarize their distribution; Add takes raw
// quality strings and decodes them as Sanger/Phred+33, the encoding
// fastqio uses.
type QualityAccumulator struct {
	scores []float64
}

// Add records the quality scores of one quality string, decoding each
// byte as Phred+33 (the encoding fastqio reads and writes).
func (a *QualityAccumulator) Add(qual string) {
	for _, c := range []byte(qual) {
		a.scores = append(a.scores, float64(c)-33)
	}
}

// Stats returns the accumulated mean/stddev, or the zero value if no
// scores have been recorded.
func (a *QualityAccumulator) Stats() QualityStats {
	if len(a.scores) == 0 {
		return QualityStats{}
	}
	mean, std := stat.MeanStdDev(a.scores, nil)
	return QualityStats{Mean: mean, StdDev: std, N: len(a.scores)}
}

// Summary is the complete content of a report: the run's parse log
// counters and the quality distribution observed while reading it.
type Summary struct {
	Log     *pipeline.ParseLog
	Quality QualityStats
}

// SavePNG renders s's failures_by_step counts as a bar chart, with the
// run's success rate and quality mean/stddev in the title, and writes
// it to path as a PNG.
func SavePNG(s Summary, path string) error {
	p := plot.New()

	failures := s.Log.FailuresByStep()
	ids := make([]string, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	values := make(plotter.Values, len(ids))
	for i, id := range ids {
		values[i] = float64(failures[id])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("report: building bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(ids...)
	p.Y.Label.Text = "step failures"
	p.Title.Text = fmt.Sprintf("success rate %.1f%% (mean Q%.1f ± %.1f, n=%d)",
		100*s.Log.SuccessRate(), s.Quality.Mean, s.Quality.StdDev, s.Quality.N)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving %q: %w", path, err)
	}
	return nil
}
