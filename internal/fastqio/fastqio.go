// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fastqio implements the read-pair source and writer of §6:
// a gzip-transparent, line-oriented FASTQ reader/writer for paired R1/R2
// files, built on biogo's own FASTQ codec rather than a hand-rolled
// line reader, the same way every cmd/* program in the teacher reads
// FASTA through biogo/io/seqio/fasta.
package fastqio

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// Pair is one read pair as defined by §3's data model: a stable
// identifier and the two mates' base calls and per-base qualities.
type Pair struct {
	ReadID string
	Seq1   string
	Qual1  string
	Seq2   string
	Qual2  string
}

// Open opens name for reading, transparently wrapping it in a gzip
// reader when its name ends in ".gz". The caller must Close the
// returned ReadCloser; closing it also closes the underlying file.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	err := g.gz.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates name for writing, transparently gzip-compressing the
// stream when its name ends in ".gz".
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipWriteCloser{gz: gz, f: f}, nil
}

type gzipWriteCloser struct {
	gz *gzip.Writer
	f  *os.File
}

func (g *gzipWriteCloser) Write(p []byte) (int, error) { return g.gz.Write(p) }
func (g *gzipWriteCloser) Close() error {
	err := g.gz.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// PairReader is the read-pair iterator of §6, yielding
// (read_id, seq1, qual1, seq2, qual2) over the two mate files in
// lock-step. The leading "@" is stripped from read_id; when trimTail
// is set, anything from the first whitespace character onward is also
// dropped, matching original_source's FastqReader.
type PairReader struct {
	r1, r2   *seqio.Scanner
	trimTail bool
}

// NewPairReader wraps r1 and r2 (already-decompressed FASTQ streams)
// in a PairReader.
func NewPairReader(r1, r2 io.Reader, trimTail bool) *PairReader {
	template := linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)
	return &PairReader{
		r1:       seqio.NewScanner(fastq.NewReader(r1, template)),
		r2:       seqio.NewScanner(fastq.NewReader(r2, template)),
		trimTail: trimTail,
	}
}

// Next advances to the next read pair, returning false at end of
// stream or on a read error (check Err to distinguish the two).
func (p *PairReader) Next() bool {
	ok1 := p.r1.Next()
	ok2 := p.r2.Next()
	return ok1 && ok2
}

// Err returns the first error encountered by either mate's scanner.
func (p *PairReader) Err() error {
	if err := p.r1.Error(); err != nil {
		return fmt.Errorf("fastqio: reading R1: %w", err)
	}
	if err := p.r2.Error(); err != nil {
		return fmt.Errorf("fastqio: reading R2: %w", err)
	}
	return nil
}

// Pair returns the read pair at the current iterator position.
func (p *PairReader) Pair() (Pair, error) {
	s1, ok := p.r1.Seq().(*linear.QSeq)
	if !ok {
		return Pair{}, fmt.Errorf("fastqio: R1 record is not a quality sequence")
	}
	s2, ok := p.r2.Seq().(*linear.QSeq)
	if !ok {
		return Pair{}, fmt.Errorf("fastqio: R2 record is not a quality sequence")
	}
	id1 := strings.TrimPrefix(s1.ID, "@")
	if p.trimTail {
		if i := strings.IndexAny(id1, " \t"); i >= 0 {
			id1 = id1[:i]
		}
	}
	return Pair{
		ReadID: id1,
		Seq1:   qseqBases(s1),
		Qual1:  qseqQuality(s1),
		Seq2:   qseqBases(s2),
		Qual2:  qseqQuality(s2),
	}, nil
}

func qseqBases(s *linear.QSeq) string {
	b := make([]byte, len(s.Seq))
	for i, ql := range s.Seq {
		b[i] = byte(ql.L)
	}
	return string(b)
}

func qseqQuality(s *linear.QSeq) string {
	b := make([]byte, len(s.Seq))
	for i, ql := range s.Seq {
		b[i] = s.Encoding.Encode(ql.Q)
	}
	return string(b)
}

// PairWriter writes trimmed, tagged read pairs via biogo's FASTQ
// writer (§6's clip-and-write driver).
type PairWriter struct {
	w1, w2 *fastq.Writer
	enc    alphabet.Encoding
}

// NewPairWriter wraps w1 and w2 in a PairWriter. Both streams are
// written in Sanger/Phred+33 encoding.
func NewPairWriter(w1, w2 io.Writer) *PairWriter {
	return &PairWriter{
		w1:  fastq.NewWriter(w1),
		w2:  fastq.NewWriter(w2),
		enc: alphabet.Sanger,
	}
}

// Write writes one read pair, clipped and tagged, to the two mate
// streams. id is the mate-1 id as formed by the clip driver (§6); the
// mate-2 record is written under the same id with its trailing "/1"
// replaced by "/2".
func (w *PairWriter) Write(id, seq1, qual1, seq2, qual2 string) error {
	id2 := id
	if strings.HasSuffix(id, "/1") {
		id2 = strings.TrimSuffix(id, "/1") + "/2"
	}
	s1, err := toQSeq(id, seq1, qual1, w.enc)
	if err != nil {
		return err
	}
	s2, err := toQSeq(id2, seq2, qual2, w.enc)
	if err != nil {
		return err
	}
	if _, err := w.w1.Write(s1); err != nil {
		return fmt.Errorf("fastqio: writing R1: %w", err)
	}
	if _, err := w.w2.Write(s2); err != nil {
		return fmt.Errorf("fastqio: writing R2: %w", err)
	}
	return nil
}

func toQSeq(id, seq, qual string, enc alphabet.Encoding) (*linear.QSeq, error) {
	if len(seq) != len(qual) {
		return nil, fmt.Errorf("fastqio: sequence length %d does not match quality length %d for %q", len(seq), len(qual), id)
	}
	ql := make([]alphabet.QLetter, len(seq))
	for i := range seq {
		ql[i] = alphabet.QLetter{L: alphabet.Letter(seq[i]), Q: enc.Decode(qual[i])}
	}
	s := linear.NewQSeq(id, ql, alphabet.DNA, enc)
	return s, nil
}
