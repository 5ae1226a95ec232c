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

package countarray

import "testing"

func TestAddAndCountKmersSetMode(t *testing.T) {
	c := New()
	c.Initialize(4, 10)

	for _, s := range []uint64{5, 3, 5, 5, 1, 3} {
		if err := c.Add(0, s); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	suf, val, err := c.CountKmers(0)
	if err != nil {
		t.Fatalf("CountKmers: %v", err)
	}
	want := map[uint64]uint64{1: 1, 3: 2, 5: 3}
	if len(suf) != len(want) {
		t.Fatalf("got %d distinct suffixes, want %d", len(suf), len(want))
	}
	for i, s := range suf {
		if i > 0 && suf[i-1] >= s {
			t.Fatalf("suffixes not strictly increasing: %v", suf)
		}
		if val[i] != want[s] {
			t.Fatalf("suffix %d: got count %d, want %d", s, val[i], want[s])
		}
	}
}

func TestAddValueWidensBucket(t *testing.T) {
	c := New()
	c.Initialize(1, 8)

	if err := c.AddValue(0, 1, 3); err != nil {
		t.Fatalf("AddValue: %v", err)
	}
	if err := c.AddValue(0, 2, 1<<40); err != nil {
		t.Fatalf("AddValue: %v", err)
	}
	suf, val, err := c.CountKmers(0)
	if err != nil {
		t.Fatalf("CountKmers: %v", err)
	}
	if suf[0] != 1 || val[0] != 3 {
		t.Fatalf("entry 0: got (%d,%d)", suf[0], val[0])
	}
	if suf[1] != 2 || val[1] != 1<<40 {
		t.Fatalf("entry 1: got (%d,%d)", suf[1], val[1])
	}
}

func TestMultiSetKeepsDuplicates(t *testing.T) {
	c := New()
	c.Initialize(1, 8)
	c.EnableMultiSet(true)

	for _, s := range []uint64{5, 3, 5} {
		if err := c.Add(0, s); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	suf, _, err := c.CountKmers(0)
	if err != nil {
		t.Fatalf("CountKmers: %v", err)
	}
	if len(suf) != 3 {
		t.Fatalf("multiset mode coalesced: got %v", suf)
	}
}

type recordingSink struct {
	prefix   uint64
	suffixes []uint64
	values   []uint64
}

func (s *recordingSink) WriteBlock(prefix uint64, suffixes, values []uint64, suffixBits int) (int64, error) {
	s.prefix = prefix
	s.suffixes = suffixes
	s.values = values
	return 0, nil
}

func TestDumpCountedKmers(t *testing.T) {
	c := New()
	c.Initialize(2, 8)
	c.Add(1, 9)
	c.Add(1, 2)

	sink := &recordingSink{}
	if _, err := c.DumpCountedKmers(1, sink); err != nil {
		t.Fatalf("DumpCountedKmers: %v", err)
	}
	if sink.prefix != 1 {
		t.Fatalf("got prefix %d, want 1", sink.prefix)
	}
	if len(sink.suffixes) != 2 || sink.suffixes[0] != 2 || sink.suffixes[1] != 9 {
		t.Fatalf("got suffixes %v", sink.suffixes)
	}

	c.RemoveCountedKmers(1)
	if c.BucketLen(1) != 0 {
		t.Fatalf("bucket not removed")
	}
}
