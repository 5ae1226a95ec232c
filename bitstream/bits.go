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

// Package bitstream packs and unpacks prefix-free codes into a stream of
// 64-bit words, MSB-first: the first bit written into a word is its highest
// bit. Reading the stream bit-by-bit therefore yields values high-order
// first, matching the on-disk layout that BlockWriter and the database
// writer build on top of it.
package bitstream

import "math/bits"

// maxCodeBits bounds how many bits a single prefix-free code (unary run,
// Elias-Gamma/Delta field or Zeckendorf digit string) may span before it's
// treated as corrupt. It's far beyond anything this format legitimately
// produces (Zeckendorf is bounded by len(fibonacciValues) ~93 bits, Gamma/
// Delta by 2*64-1), and exists so a stream that never sets a terminating
// bit fails with ErrCorruptData instead of scanning forever.
const maxCodeBits = 1 << 20

func mask(siz uint64) uint64 {
	if siz >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << siz) - 1
}

// getDecodedValue reads a siz-bit (0 <= siz <= 64) value starting at bit
// position pos (0-based, MSB-first) out of ptr, a slice of 64-bit words. It
// returns ErrCorruptData instead of indexing out of range if pos+siz falls
// outside ptr.
func getDecodedValue(ptr []uint64, pos, siz uint64) (uint64, error) {
	if siz == 0 {
		return 0, nil
	}
	wrd := pos >> 6
	bit := pos & 63
	b1 := 64 - bit
	if wrd >= uint64(len(ptr)) {
		return 0, ErrCorruptData
	}
	var ret uint64
	if b1 >= siz {
		ret = ptr[wrd] >> (b1 - siz)
	} else {
		if wrd+1 >= uint64(len(ptr)) {
			return 0, ErrCorruptData
		}
		b2 := siz - b1
		ret = (ptr[wrd] & mask(b1)) << b2
		ret |= (ptr[wrd+1] >> (64 - b2)) & mask(b2)
	}
	return ret & mask(siz), nil
}

// setDecodedValue writes the low siz bits of val into ptr starting at bit
// position pos, MSB-first.
func setDecodedValue(ptr []uint64, pos, siz, val uint64) {
	if siz == 0 {
		return
	}
	wrd := pos >> 6
	bit := pos & 63
	b1 := 64 - bit
	val &= mask(siz)
	if b1 >= siz {
		ptr[wrd] &^= mask(siz) << (b1 - siz)
		ptr[wrd] |= val << (b1 - siz)
	} else {
		b2 := siz - b1
		ptr[wrd] &^= mask(b1)
		ptr[wrd] |= (val & (mask(b1) << b2)) >> b2
		ptr[wrd+1] &^= mask(b2) << (64 - b2)
		ptr[wrd+1] |= (val & mask(b2)) << (64 - b2)
	}
}

// bitWidth returns the number of bits needed to hold v (bitWidth(0) == 1,
// since a width-0 field can't be read back as a bit count elsewhere).
func bitWidth(v uint64) int {
	if v == 0 {
		return 1
	}
	return bits.Len64(v)
}
