// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/store/llrb"
)

// barcode is a llrb.Comparable string used to hold whitelist entries in
// a sorted tree rather than a bare map, matching the sorted-container
// idiom the rest of the biogo stack uses for indexed biological data.
type barcode string

// Compare implements llrb.Comparable.
func (b barcode) Compare(e llrb.Comparable) int {
	return strings.Compare(string(b), string(e.(barcode)))
}

// Whitelist is a fixed, read-only set of acceptable barcode strings.
type Whitelist struct {
	tree *llrb.Tree
}

// Contains reports whether s is a member of the whitelist.
func (w *Whitelist) Contains(s string) bool {
	if w == nil || w.tree == nil {
		return false
	}
	return w.tree.Get(barcode(s)) != nil
}

// Len returns the number of distinct entries in the whitelist. A
// duplicate barcode in the source file counts once: it reports
// w.tree.Len(), not the number of lines read.
func (w *Whitelist) Len() int {
	if w == nil || w.tree == nil {
		return 0
	}
	return w.tree.Len()
}

// loadWhitelists reads every name -> path entry in barcodeWhitelists,
// each relative to baseDir, into a Whitelist keyed by name. A file that
// cannot be read is a configuration error: unlike the Python source
// (which logs a warning and substitutes an always-empty set), Compile
// surfaces it immediately, consistent with every other configuration
// problem the compiler reports.
func loadWhitelists(barcodeWhitelists map[string]any, baseDir string) (map[string]*Whitelist, error) {
	out := make(map[string]*Whitelist, len(barcodeWhitelists))
	for name, v := range barcodeWhitelists {
		path, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("pipeline: barcode_whitelists[%q] must be a file path string", name)
		}
		full := path
		if baseDir != "" && !filepath.IsAbs(path) {
			full = filepath.Join(baseDir, path)
		}
		wl, err := loadWhitelistFile(full)
		if err != nil {
			return nil, fmt.Errorf("pipeline: loading whitelist %q: %w", name, err)
		}
		out[name] = wl
	}
	return out, nil
}

func loadWhitelistFile(path string) (*Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tree := &llrb.Tree{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tree.Insert(barcode(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Whitelist{tree: tree}, nil
}
