// Copyright © 2018-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package merge

import (
	"path/filepath"
	"testing"

	"github.com/shenwei356/meryl/db"
)

func buildDB(t *testing.T, name string, entries map[uint64]map[uint64]uint64) *db.Reader {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)

	w, err := db.Create(dir, 4, 2, 10, 1, 1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for prefix, suffixValues := range entries {
		var suffixes, values []uint64
		for s := uint64(0); s < 1024; s++ {
			if v, ok := suffixValues[s]; ok {
				suffixes = append(suffixes, s)
				values = append(values, v)
			}
		}
		if len(suffixes) == 0 {
			continue
		}
		if _, err := w.WriteBlock(prefix, suffixes, values, 10); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := db.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

// TestMergeSum grounds scenario S4: two databases sharing one k-mer, with
// two more k-mers only in a and one only in b, merged with SumReducer.
func TestMergeSum(t *testing.T) {
	a := buildDB(t, "a", map[uint64]map[uint64]uint64{
		0: {5: 2, 9: 1},
		3: {100: 4},
	})
	b := buildDB(t, "b", map[uint64]map[uint64]uint64{
		0: {5: 3},
		1: {20: 7},
	})
	defer a.Close()
	defer b.Close()

	e, err := New([]*db.Reader{a, b}, SumReducer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := map[[2]uint64]uint64{
		{0, 5}: 5,
		{0, 9}: 1,
		{1, 20}: 7,
		{3, 100}: 4,
	}
	got := map[[2]uint64]uint64{}
	for {
		prefix, suffix, value, ok := e.Next()
		if !ok {
			break
		}
		got[[2]uint64{prefix, suffix}] = value
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %v: got %d, want %d", k, got[k], v)
		}
	}
}

// TestMergeAnd grounds scenario S5: intersection keeps only k-mers common
// to both inputs.
func TestMergeAnd(t *testing.T) {
	a := buildDB(t, "a", map[uint64]map[uint64]uint64{
		0: {5: 2, 9: 1},
	})
	b := buildDB(t, "b", map[uint64]map[uint64]uint64{
		0: {5: 3},
	})
	defer a.Close()
	defer b.Close()

	e, err := New([]*db.Reader{a, b}, AndReducer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prefix, suffix, value, ok := e.Next()
	if !ok || prefix != 0 || suffix != 5 || value != 5 {
		t.Fatalf("got (%d,%d,%d,%v), want (0,5,5,true)", prefix, suffix, value, ok)
	}
	if _, _, _, ok := e.Next(); ok {
		t.Fatalf("expected only one surviving entry")
	}
}

func TestMergeRejectsIncompatibleInputs(t *testing.T) {
	a := buildDB(t, "a", map[uint64]map[uint64]uint64{0: {1: 1}})
	defer a.Close()

	dir := filepath.Join(t.TempDir(), "b")
	w, err := db.Create(dir, 8, 2, 10, 1, 1, false) // different K
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.WriteBlock(0, []uint64{1}, []uint64{1}, 10); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	b, err := db.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if _, err := New([]*db.Reader{a, b}, SumReducer); err != ErrIncompatibleInputs {
		t.Fatalf("got err %v, want ErrIncompatibleInputs", err)
	}
}

func TestWriteAllRoundTrip(t *testing.T) {
	a := buildDB(t, "a", map[uint64]map[uint64]uint64{
		0: {5: 2, 9: 1},
		3: {100: 4},
	})
	b := buildDB(t, "b", map[uint64]map[uint64]uint64{
		0: {5: 3},
		1: {20: 7},
	})
	defer a.Close()
	defer b.Close()

	e, err := New([]*db.Reader{a, b}, SumReducer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "out")
	w, err := db.Create(outDir, 4, 2, 10, 1, 1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, err := WriteAll(e, w, 10)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if n != 4 {
		t.Fatalf("got %d distinct k-mers, want 4", n)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out, err := db.Open(outDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer out.Close()

	count, ok, err := out.Count(0, 5)
	if err != nil || !ok || count != 5 {
		t.Fatalf("Count(0,5) = (%d,%v,%v), want (5,true,nil)", count, ok, err)
	}
}
