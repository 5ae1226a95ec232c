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

package db

import (
	"os"
	"path/filepath"
	"testing"
)

// buildTiny writes a small database covering prefixes 0..3 (prefixBits=2,
// filesBits=1, blocksBits=1) with a handful of suffixes each, grounding
// scenario S1 (tiny counting) against the full writer/reader round trip.
func buildTiny(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")

	w, err := Create(dir, 4, 2, 10, 1, 1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	data := map[uint64][]uint64{
		0: {1, 5, 9},
		1: {2},
		2: {},
		3: {3, 700, 900},
	}
	values := map[uint64][]uint64{
		0: {1, 2, 1},
		1: {5},
		3: {1, 1, 1},
	}
	for prefix, suffixes := range data {
		if len(suffixes) == 0 {
			continue
		}
		if _, err := w.WriteBlock(prefix, suffixes, values[prefix], 10); err != nil {
			t.Fatalf("WriteBlock(%d): %v", prefix, err)
		}
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return dir
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := buildTiny(t)

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	cases := []struct {
		prefix, suffix uint64
		wantCount      uint64
		wantOK         bool
	}{
		{0, 1, 1, true},
		{0, 5, 2, true},
		{0, 9, 1, true},
		{0, 2, 0, false},
		{1, 2, 5, true},
		{3, 700, 1, true},
		{2, 0, 0, false},
	}
	for _, c := range cases {
		got, ok, err := r.Count(c.prefix, c.suffix)
		if err != nil {
			t.Fatalf("Count(%d,%d): %v", c.prefix, c.suffix, err)
		}
		if ok != c.wantOK || got != c.wantCount {
			t.Fatalf("Count(%d,%d) = (%d,%v), want (%d,%v)", c.prefix, c.suffix, got, ok, c.wantCount, c.wantOK)
		}
	}
}

func TestStreamVisitsAllInOrder(t *testing.T) {
	dir := buildTiny(t)

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	var seen []uint64
	var lastPrefix uint64
	first := true
	err = r.Stream(func(prefix, suffix, value uint64) error {
		if !first && prefix < lastPrefix {
			t.Fatalf("stream out of order: prefix %d after %d", prefix, lastPrefix)
		}
		first, lastPrefix = false, prefix
		seen = append(seen, suffix)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(seen) != 7 {
		t.Fatalf("got %d entries, want 7", len(seen))
	}
}

func TestIndexStatisticsConsistent(t *testing.T) {
	dir := buildTiny(t)

	idxFile, err := os.Open(filepath.Join(dir, "merylIndex"))
	if err != nil {
		t.Fatalf("open merylIndex: %v", err)
	}
	defer idxFile.Close()

	idx, err := ReadIndex(idxFile)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}

	if idx.NumDistinct != 7 {
		t.Fatalf("NumDistinct = %d, want 7", idx.NumDistinct)
	}

	var bucketTotal, bucketMass uint64
	for v, c := range idx.Histogram {
		bucketTotal += c
		bucketMass += uint64(v) * c
	}
	if bucketTotal+idx.HistogramHuge != idx.NumDistinct {
		t.Fatalf("bucket counts (%d) + huge (%d) != NumDistinct (%d)", bucketTotal, idx.HistogramHuge, idx.NumDistinct)
	}
	if bucketMass+idx.HistogramMax != idx.NumTotal {
		t.Fatalf("bucket mass (%d) + huge mass (%d) != NumTotal (%d)", bucketMass, idx.HistogramMax, idx.NumTotal)
	}
	if idx.NumUnique != idx.Histogram[1] {
		t.Fatalf("NumUnique (%d) != histogram[1] (%d)", idx.NumUnique, idx.Histogram[1])
	}
}

func TestOpenRejectsUnfinishedDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	w, err := Create(dir, 4, 2, 10, 1, 1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = w // deliberately never call Finish

	if _, err := Open(dir); err == nil {
		t.Fatalf("Open succeeded on a database that was never Finish()ed")
	}
}
