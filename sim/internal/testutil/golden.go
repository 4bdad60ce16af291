// Package testutil provides shared test infrastructure for the assembly-line
// simulator: golden output files and float comparison helpers.
package testutil

import (
	"encoding/json"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
)

var update = flag.Bool("update", false, "rewrite golden files with current results")

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// Golden compares got, encoded as indented JSON, with testdata/<name>.golden.json
// relative to the calling package. With -update the file is written instead and
// the comparison passes; without it a missing file fails the test.
// The returned bool reports whether a comparison took place.
func Golden(t *testing.T, name string, got any) bool {
	t.Helper()
	encoded, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
	encoded = append(encoded, '\n')

	path := filepath.Join("testdata", name+".golden.json")
	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create testdata: %v", err)
		}
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("wrote golden file %s", path)
		return false
	}
	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("Golden file %s is missing (run with -update to create it)", path)
	}
	if err != nil {
		t.Fatalf("Failed to read golden file: %v", err)
	}
	if string(want) != string(encoded) {
		t.Errorf("%s differs from %s (run with -update to accept)\ngot:\n%s\nwant:\n%s", name, path, encoded, want)
	}
	return true
}
