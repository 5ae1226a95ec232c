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

// Package countarray implements the in-memory prefix-bucketed accumulator
// that sits between KmerEncoder and BlockWriter: one bit-packed array per
// prefix, grown by doubling, widened lazily as larger values arrive.
package countarray

import "math/bits"

// packedArray is a growable array of fixed-width unsigned integers, packed
// MSB-first into a []uint64 buffer the way bitstream does, so CountArray's
// per-prefix bucket uses exactly ceil(n*width/64) words rather than one
// uint64 per element.
type packedArray struct {
	words []uint64
	n     int
	width uint
	cap   int // capacity in elements
}

func newPackedArray(width uint) *packedArray {
	if width == 0 {
		width = 1
	}
	return &packedArray{width: width}
}

func (a *packedArray) grow(minCap int) {
	newCap := a.cap
	if newCap == 0 {
		newCap = 64
	}
	for newCap < minCap {
		newCap *= 2
	}
	newWords := make([]uint64, wordsFor(newCap, a.width))
	copy(newWords, a.words)
	a.words = newWords
	a.cap = newCap
}

func wordsFor(n int, width uint) int {
	bitsTotal := uint64(n) * uint64(width)
	return int((bitsTotal + 127) / 64) // +1 word of slack for cross-word reads
}

// Append adds v (truncated to width bits) to the end of the array.
func (a *packedArray) Append(v uint64) {
	if a.n+1 > a.cap {
		a.grow(a.n + 1)
	}
	setBits(a.words, uint64(a.n)*uint64(a.width), a.width, v)
	a.n++
}

// Get returns the i'th element.
func (a *packedArray) Get(i int) uint64 {
	return getBits(a.words, uint64(i)*uint64(a.width), a.width)
}

// Set overwrites the i'th element.
func (a *packedArray) Set(i int, v uint64) {
	setBits(a.words, uint64(i)*uint64(a.width), a.width, v)
}

// Len returns the number of elements stored.
func (a *packedArray) Len() int { return a.n }

// Reset empties the array without releasing its backing storage.
func (a *packedArray) Reset() { a.n = 0 }

// Bytes approximates the array's current memory footprint.
func (a *packedArray) Bytes() int { return len(a.words) * 8 }

// Widen rebuilds the array in place with a larger element width, e.g. when a
// value wider than the current width arrives.
func (a *packedArray) Widen(newWidth uint) {
	if newWidth <= a.width {
		return
	}
	old := make([]uint64, a.n)
	for i := 0; i < a.n; i++ {
		old[i] = a.Get(i)
	}
	a.width = newWidth
	a.words = make([]uint64, wordsFor(a.cap, newWidth))
	for i, v := range old {
		setBits(a.words, uint64(i)*uint64(newWidth), newWidth, v)
	}
}

// widthFor returns ceil(log2(maxValue+1)), at least 1 bit.
func widthFor(maxValue uint64) uint {
	if maxValue == 0 {
		return 1
	}
	return uint(bits.Len64(maxValue))
}

// getBits/setBits re-implement bitstream's MSB-first field packing locally
// (countarray avoids importing bitstream: this accumulator is a pure
// in-memory structure, not a file format, and the two packages evolve
// independently even though the bit-twiddling is the same shape).
func mask(siz uint64) uint64 {
	if siz >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << siz) - 1
}

func getBits(ptr []uint64, pos uint64, siz uint) uint64 {
	s := uint64(siz)
	if s == 0 {
		return 0
	}
	wrd := pos >> 6
	bit := pos & 63
	b1 := 64 - bit
	var ret uint64
	if b1 >= s {
		ret = ptr[wrd] >> (b1 - s)
	} else {
		b2 := s - b1
		ret = (ptr[wrd] & mask(b1)) << b2
		ret |= (ptr[wrd+1] >> (64 - b2)) & mask(b2)
	}
	return ret & mask(s)
}

func setBits(ptr []uint64, pos uint64, siz uint, val uint64) {
	s := uint64(siz)
	if s == 0 {
		return
	}
	wrd := pos >> 6
	bit := pos & 63
	b1 := 64 - bit
	val &= mask(s)
	if b1 >= s {
		ptr[wrd] &^= mask(s) << (b1 - s)
		ptr[wrd] |= val << (b1 - s)
	} else {
		b2 := s - b1
		ptr[wrd] &^= mask(b1)
		ptr[wrd] |= (val & (mask(b1) << b2)) >> b2
		ptr[wrd+1] &^= mask(b2) << (64 - b2)
		ptr[wrd+1] |= (val & mask(b2)) << (64 - b2)
	}
}
