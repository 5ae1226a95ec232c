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

// Package merge combines several sorted databases into one ordered stream of
// (prefix, suffix, value) triples, the same N-way merge by heap that
// mergeChunksFile uses to fold sorted chunk files back together, generalized
// from a bare code stream to (kmer, value) pairs and a pluggable Reducer.
package merge

import (
	"container/heap"
	"errors"

	"github.com/shenwei356/meryl/countarray"
	"github.com/shenwei356/meryl/db"
)

// ErrIncompatibleInputs means the input databases don't share K, suffixBits
// or the multiset flag, so their codes can't be compared meaningfully.
var ErrIncompatibleInputs = errors.New("merge: inputs have incompatible K, suffixBits, or multiset flag")

// Reducer folds one k-mer's per-source contributions into a single output
// value, or drops the k-mer entirely. contrib and present are both indexed
// by source position; present[i] is false where source i has no entry for
// this k-mer, in which case contrib[i] is meaningless.
type Reducer func(contrib []uint64, present []bool) (value uint64, keep bool)

// SumReducer adds every contributing source's value (meryl's default
// count-sum merge).
func SumReducer(contrib []uint64, present []bool) (uint64, bool) {
	var sum uint64
	for i, p := range present {
		if p {
			sum += contrib[i]
		}
	}
	return sum, true
}

// MinReducer keeps the smallest contributing value.
func MinReducer(contrib []uint64, present []bool) (uint64, bool) {
	var min uint64
	first := true
	for i, p := range present {
		if p && (first || contrib[i] < min) {
			min, first = contrib[i], false
		}
	}
	return min, true
}

// MaxReducer keeps the largest contributing value.
func MaxReducer(contrib []uint64, present []bool) (uint64, bool) {
	var max uint64
	for i, p := range present {
		if p && contrib[i] > max {
			max = contrib[i]
		}
	}
	return max, true
}

// SubtractReducer keeps a k-mer only if the first source contains it, with
// value = first source's count minus every other source's count; the k-mer
// is dropped if that would go to zero or below.
func SubtractReducer(contrib []uint64, present []bool) (uint64, bool) {
	if len(present) == 0 || !present[0] {
		return 0, false
	}
	out := contrib[0]
	for i := 1; i < len(present); i++ {
		if !present[i] {
			continue
		}
		if contrib[i] >= out {
			return 0, false
		}
		out -= contrib[i]
	}
	return out, true
}

// AndReducer keeps only k-mers present in every source (set intersection),
// summing their values.
func AndReducer(contrib []uint64, present []bool) (uint64, bool) {
	for _, p := range present {
		if !p {
			return 0, false
		}
	}
	return SumReducer(contrib, present)
}

// OrReducer keeps every k-mer present in any source (set union), summing
// whichever sources contributed.
func OrReducer(contrib []uint64, present []bool) (uint64, bool) {
	return SumReducer(contrib, present)
}

// XorReducer keeps only k-mers present in exactly one source.
func XorReducer(contrib []uint64, present []bool) (uint64, bool) {
	count := 0
	var val uint64
	for i, p := range present {
		if p {
			count++
			val = contrib[i]
		}
	}
	if count != 1 {
		return 0, false
	}
	return val, true
}

type iterator interface {
	Next() (prefix, suffix, value uint64, err error)
}

type source struct {
	it      iterator
	prefix  uint64
	suffix  uint64
	value   uint64
	ok      bool
}

func (s *source) advance() {
	p, sf, v, err := s.it.Next()
	if err != nil {
		s.ok = false
		return
	}
	s.prefix, s.suffix, s.value, s.ok = p, sf, v, true
}

type heapEntry struct {
	idx            int
	prefix, suffix uint64
}

type entryHeap []heapEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].prefix != h[j].prefix {
		return h[i].prefix < h[j].prefix
	}
	return h[i].suffix < h[j].suffix
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Engine is an N-way merge over several sources of sorted (prefix, suffix,
// value) triples, grouping identical (prefix, suffix) keys across sources
// and folding them with a Reducer.
type Engine struct {
	sources []*source
	reducer Reducer
	h       entryHeap
}

// New builds an Engine over readers, validating that every database shares
// K, suffix width and multiset-ness before merging.
func New(readers []*db.Reader, reducer Reducer) (*Engine, error) {
	if len(readers) == 0 {
		return nil, ErrIncompatibleInputs
	}
	k := readers[0].Idx.K
	suffixBits := readers[0].Idx.SuffixBits
	multiset := readers[0].Idx.Multiset
	for _, r := range readers[1:] {
		if r.Idx.K != k || r.Idx.SuffixBits != suffixBits || r.Idx.Multiset != multiset {
			return nil, ErrIncompatibleInputs
		}
	}

	e := &Engine{reducer: reducer}
	for _, r := range readers {
		s := &source{it: r.Iterator()}
		s.advance()
		e.sources = append(e.sources, s)
	}
	for i, s := range e.sources {
		if s.ok {
			heap.Push(&e.h, heapEntry{idx: i, prefix: s.prefix, suffix: s.suffix})
		}
	}
	return e, nil
}

// Next returns the next merged (prefix, suffix, value) triple in ascending
// order, or ok=false once every source is exhausted. k-mers the reducer
// drops are skipped transparently.
func (e *Engine) Next() (prefix, suffix, value uint64, ok bool) {
	for e.h.Len() > 0 {
		top := e.h[0]
		prefix, suffix = top.prefix, top.suffix

		n := len(e.sources)
		contrib := make([]uint64, n)
		present := make([]bool, n)

		for e.h.Len() > 0 && e.h[0].prefix == prefix && e.h[0].suffix == suffix {
			he := heap.Pop(&e.h).(heapEntry)
			s := e.sources[he.idx]
			contrib[he.idx] = s.value
			present[he.idx] = true
			s.advance()
			if s.ok {
				heap.Push(&e.h, heapEntry{idx: he.idx, prefix: s.prefix, suffix: s.suffix})
			}
		}

		out, keep := e.reducer(contrib, present)
		if !keep {
			continue
		}
		return prefix, suffix, out, true
	}
	return 0, 0, 0, false
}

// WriteAll drains e entirely, batching contiguous same-prefix runs (e's
// output is already sorted, so every prefix's suffixes arrive together) and
// handing each batch to sink as one block. It returns the number of
// distinct k-mers written.
func WriteAll(e *Engine, sink countarray.BlockSink, suffixBits int) (int64, error) {
	var distinct int64
	var curPrefix uint64
	var haveCur bool
	var suffixes, values []uint64

	flush := func() error {
		if len(suffixes) == 0 {
			return nil
		}
		if _, err := sink.WriteBlock(curPrefix, suffixes, values, suffixBits); err != nil {
			return err
		}
		distinct += int64(len(suffixes))
		suffixes, values = nil, nil
		return nil
	}

	for {
		prefix, suffix, value, ok := e.Next()
		if !ok {
			break
		}
		if !haveCur {
			curPrefix, haveCur = prefix, true
		} else if prefix != curPrefix {
			if err := flush(); err != nil {
				return distinct, err
			}
			curPrefix = prefix
		}
		suffixes = append(suffixes, suffix)
		values = append(values, value)
	}
	if err := flush(); err != nil {
		return distinct, err
	}
	return distinct, nil
}
