// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWhitelistLenDedupsDuplicateLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barcodes.txt")
	if err := os.WriteFile(path, []byte("CTAG\nTTAG\nCTAG\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	wl, err := loadWhitelistFile(path)
	if err != nil {
		t.Fatalf("loadWhitelistFile: %v", err)
	}
	if got, want := wl.Len(), 2; got != want {
		t.Errorf("Len() = %d, want %d (duplicate barcode should count once)", got, want)
	}
	if !wl.Contains("CTAG") || !wl.Contains("TTAG") {
		t.Errorf("expected both distinct barcodes to be members")
	}
}
