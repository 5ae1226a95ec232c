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

import (
	"errors"
	"sort"
	"sync"

	"github.com/twotwotwo/sorts"
)

// Sentinel errors, mirrored from the meryl root package's error kinds so
// this package has no import-cycle dependency on it.
var (
	ErrInvalidState = errors.New("countarray: invalid state")
	ErrOutOfMemory  = errors.New("countarray: out of memory")
)

// BlockSink is the collaborator a drained bucket is handed to. The block
// package's Writer implements it; countarray never imports block, so a
// bucket never holds a long-lived reference to its writer -- dumpCountedKmers
// takes one as a borrowed, per-call argument instead.
type BlockSink interface {
	WriteBlock(prefix uint64, suffixes []uint64, values []uint64, suffixBits int) (offset int64, err error)
}

type bucket struct {
	suffixes *packedArray
	values   *packedArray
	mu       sync.Mutex
}

// CountArray is the in-memory accumulator keyed by prefix: each key owns a
// bit-packed suffix array and a parallel bit-packed value array.
type CountArray struct {
	mu sync.Mutex

	suffixBits uint
	buckets    []*bucket

	valueWidth uint
	multiset   bool

	memBudget int64 // bytes; 0 means unbounded
	memUsed   int64

	drain func(prefix int) error // set by the caller (DatabaseWriter) to drain-on-pressure
}

// New returns a CountArray with no buckets allocated yet; call Initialize.
func New() *CountArray {
	return &CountArray{valueWidth: 1}
}

// Initialize allocates prefixCount empty buckets, each over suffixBits-wide
// suffixes.
func (c *CountArray) Initialize(prefixCount int, suffixBits uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suffixBits = suffixBits
	c.buckets = make([]*bucket, prefixCount)
}

// InitializeValues sets the starting per-bucket value width from a hint at
// the largest value expected; it's widened lazily if exceeded.
func (c *CountArray) InitializeValues(maxValueHint uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valueWidth = widthFor(maxValueHint)
}

// EnableMultiSet switches to multiset semantics: duplicate k-mers remain as
// separate entries instead of being summed by countKmers.
func (c *CountArray) EnableMultiSet(flag bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.multiset = flag
}

// SetMemoryBudget bounds total bucket memory in bytes; 0 means unbounded.
// drain is called (with the CountArray unlocked) to relieve pressure by
// sorting, dumping and removing the largest bucket.
func (c *CountArray) SetMemoryBudget(bytes int64, drain func(prefix int) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memBudget = bytes
	c.drain = drain
}

func (c *CountArray) bucketAt(prefix int) *bucket {
	b := c.buckets[prefix]
	if b == nil {
		b = &bucket{
			suffixes: newPackedArray(c.suffixBits),
			values:   newPackedArray(c.valueWidth),
		}
		c.buckets[prefix] = b
	}
	return b
}

// Add appends suffix to bucket prefix's suffix array with an implicit value
// of 1 (the common counting path: addValue(prefix, 1) for every occurrence).
func (c *CountArray) Add(prefix int, suffix uint64) error {
	return c.AddValue(prefix, suffix, 1)
}

// AddValue appends (suffix, v) to bucket prefix, widening the value column
// if v doesn't fit, and enforces the memory budget by draining the largest
// bucket if needed.
func (c *CountArray) AddValue(prefix int, suffix, v uint64) error {
	c.mu.Lock()
	if prefix < 0 || prefix >= len(c.buckets) {
		c.mu.Unlock()
		return ErrInvalidState
	}
	b := c.bucketAt(prefix)
	c.mu.Unlock()

	b.mu.Lock()
	if need := widthFor(v); need > b.values.width {
		b.values.Widen(need)
	}
	b.suffixes.Append(suffix)
	b.values.Append(v)
	b.mu.Unlock()

	if c.memBudget > 0 && c.drain != nil {
		if c.TotalBytes() > c.memBudget {
			largest := c.largestBucket()
			if largest < 0 {
				return ErrOutOfMemory
			}
			if err := c.drain(largest); err != nil {
				return err
			}
		}
	}
	return nil
}

// TotalBytes sums the approximate memory footprint of every live bucket.
func (c *CountArray) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, b := range c.buckets {
		if b == nil {
			continue
		}
		total += int64(b.suffixes.Bytes() + b.values.Bytes())
	}
	return total
}

func (c *CountArray) largestBucket() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	best := -1
	bestSize := -1
	for i, b := range c.buckets {
		if b == nil {
			continue
		}
		size := b.suffixes.Bytes() + b.values.Bytes()
		if size > bestSize {
			bestSize = size
			best = i
		}
	}
	return best
}

// sortable adapts a bucket's parallel suffix/value arrays to sort.Interface
// (and twotwotwo/sorts's parallel-sort interface, which is the same shape)
// so CountArray can sort large buckets with multiple cores before handing
// them to a BlockWriter.
type sortable struct {
	suffix []uint64
	value  []uint64
}

func (s sortable) Len() int           { return len(s.suffix) }
func (s sortable) Less(i, j int) bool { return s.suffix[i] < s.suffix[j] }
func (s sortable) Swap(i, j int) {
	s.suffix[i], s.suffix[j] = s.suffix[j], s.suffix[i]
	s.value[i], s.value[j] = s.value[j], s.value[i]
}
func (s sortable) Key(i int) uint64 { return s.suffix[i] }

// CountKmers sorts bucket prefix by suffix and, outside multiset mode,
// coalesces equal suffixes by summing their values. The bucket's contents
// are replaced by the sorted (and possibly coalesced) result and the
// unpacked (suffix, value) slices are returned for BlockWriter.
func (c *CountArray) CountKmers(prefix int) (suffixes, values []uint64, err error) {
	c.mu.Lock()
	if prefix < 0 || prefix >= len(c.buckets) {
		c.mu.Unlock()
		return nil, nil, ErrInvalidState
	}
	b := c.buckets[prefix]
	c.mu.Unlock()
	if b == nil {
		return nil, nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.suffixes.Len()
	suf := make([]uint64, n)
	val := make([]uint64, n)
	for i := 0; i < n; i++ {
		suf[i] = b.suffixes.Get(i)
		val[i] = b.values.Get(i)
	}

	data := sortable{suffix: suf, value: val}
	if n > 4096 {
		sorts.ByParallel(data)
	} else {
		sort.Stable(data)
	}

	if c.multiset {
		b.suffixes.Reset()
		b.values.Reset()
		for i := 0; i < n; i++ {
			b.suffixes.Append(suf[i])
			b.values.Append(val[i])
		}
		return suf, val, nil
	}

	var outSuf, outVal []uint64
	for i := 0; i < n; i++ {
		if i > 0 && suf[i] == outSuf[len(outSuf)-1] {
			outVal[len(outVal)-1] += val[i]
			continue
		}
		outSuf = append(outSuf, suf[i])
		outVal = append(outVal, val[i])
	}

	b.suffixes.Reset()
	b.values.Reset()
	for i := range outSuf {
		b.suffixes.Append(outSuf[i])
		b.values.Append(outVal[i])
	}

	return outSuf, outVal, nil
}

// DumpCountedKmers sorts (if not already) and hands bucket prefix's data to
// sink, which is responsible for the on-disk block encoding.
func (c *CountArray) DumpCountedKmers(prefix int, sink BlockSink) (int64, error) {
	suf, val, err := c.CountKmers(prefix)
	if err != nil {
		return 0, err
	}
	if len(suf) == 0 {
		return 0, nil
	}
	return sink.WriteBlock(uint64(prefix), suf, val, int(c.suffixBits))
}

// RemoveCountedKmers frees bucket prefix's memory.
func (c *CountArray) RemoveCountedKmers(prefix int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix < 0 || prefix >= len(c.buckets) {
		return
	}
	c.buckets[prefix] = nil
}

// BucketLen reports how many entries bucket prefix currently holds (0 if
// the bucket hasn't been touched).
func (c *CountArray) BucketLen(prefix int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.buckets[prefix]
	if b == nil {
		return 0
	}
	return b.suffixes.Len()
}
