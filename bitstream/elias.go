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

package bitstream

// Unary, Elias-gamma and Elias-delta codes, built on top of getDecodedValue/
// setDecodedValue the same way Zeckendorf coding is: a prefix-free code is
// just a run of calls against the same word buffer, tracked by an external
// bit position.
//
// The write side (put*) still takes a ptr/pos pair directly: Writer always
// pre-sizes its buffer with ensureRoom before encoding, so there's nothing
// to bound. The read side (get*) instead takes a bitSource, which reads
// relative to whatever position its caller considers 0 and can refill a
// Reader's buffer mid-decode -- unlike a plain []uint64, it can tell a
// prefix-free code that runs past the end of the stream apart from one that
// just needs more of the stream paged in, and reports the former as
// ErrCorruptData instead of indexing out of range.
type bitSource interface {
	bit(n uint64) (uint64, error)
	bits(n, siz uint64) (uint64, error)
}

// putUnary writes val zero bits followed by a single 1 bit, returning the
// number of bits written (val+1).
func putUnary(ptr []uint64, pos, val uint64) uint64 {
	for i := uint64(0); i < val; i++ {
		setDecodedValue(ptr, pos+i, 1, 0)
	}
	setDecodedValue(ptr, pos+val, 1, 1)
	return val + 1
}

// getUnary reads zero bits until a 1 bit, and returns the zero count plus
// the number of bits consumed (count+1). It returns ErrCorruptData instead
// of looping forever if no 1 bit turns up within maxCodeBits.
func getUnary(b bitSource) (uint64, uint64, error) {
	n, err := countLeadingZeros(b)
	if err != nil {
		return 0, 0, err
	}
	return n, n + 1, nil
}

// countLeadingZeros returns the number of 0 bits before the first 1 bit,
// without consuming the 1 bit.
func countLeadingZeros(b bitSource) (uint64, error) {
	var n uint64
	for {
		bit, err := b.bit(n)
		if err != nil {
			return 0, err
		}
		if bit != 0 {
			return n, nil
		}
		n++
		if n > maxCodeBits {
			return 0, ErrCorruptData
		}
	}
}

// gammaBitLenRaw returns the number of bits putGammaRaw would emit for n>=1.
func gammaBitLenRaw(n uint64) uint64 {
	w := uint64(bitWidth(n))
	return 2*w - 1
}

// putGammaRaw Elias-gamma-encodes n (n must be >= 1): (w-1) zero bits
// followed by n itself in w bits, where w = bitWidth(n).
func putGammaRaw(ptr []uint64, pos, n uint64) uint64 {
	w := uint64(bitWidth(n))
	for i := uint64(0); i < w-1; i++ {
		setDecodedValue(ptr, pos+i, 1, 0)
	}
	setDecodedValue(ptr, pos+w-1, w, n)
	return 2*w - 1
}

// getGammaRaw decodes an Elias-gamma-coded n>=1, returning n and the number
// of bits consumed.
func getGammaRaw(b bitSource) (uint64, uint64, error) {
	z, err := countLeadingZeros(b)
	if err != nil {
		return 0, 0, err
	}
	w := z + 1
	n, err := b.bits(z, w)
	if err != nil {
		return 0, 0, err
	}
	return n, 2*w - 1, nil
}

// eliasGammaBitLen returns the number of bits putEliasGamma would emit for val.
func eliasGammaBitLen(val uint64) uint64 {
	return gammaBitLenRaw(val + 1)
}

// putEliasGamma Elias-gamma-encodes val (any uint64, including 0, by coding
// val+1 internally) and returns the number of bits written.
func putEliasGamma(ptr []uint64, pos, val uint64) uint64 {
	return putGammaRaw(ptr, pos, val+1)
}

// getEliasGamma decodes an Elias-gamma-coded value and returns it plus the
// number of bits consumed.
func getEliasGamma(b bitSource) (uint64, uint64, error) {
	n, bl, err := getGammaRaw(b)
	if err != nil {
		return 0, 0, err
	}
	return n - 1, bl, nil
}

// eliasDeltaBitLen returns the number of bits putEliasDelta would emit for val.
func eliasDeltaBitLen(val uint64) uint64 {
	n := val + 1
	w := uint64(bitWidth(n))
	if n == 0 { // val == MaxUint64: n is 2^64, one bit wider than a uint64
		w = 65
	}
	return gammaBitLenRaw(w) + (w - 1)
}

// putEliasDelta Elias-delta-encodes val (any uint64, coding val+1
// internally): the bit width w of n=val+1 is itself Elias-gamma-coded, then
// the low w-1 bits of n (the bits below its implicit leading 1) are written
// directly. Delta codes are shorter than gamma for large values.
func putEliasDelta(ptr []uint64, pos, val uint64) uint64 {
	n := val + 1
	w := uint64(bitWidth(n))
	if n == 0 { // val == MaxUint64: n is 2^64, whose low 64 bits are all zero
		w = 65
	}
	used := putGammaRaw(ptr, pos, w)
	setDecodedValue(ptr, pos+used, w-1, n&mask(w-1))
	return used + (w - 1)
}

// getEliasDelta decodes an Elias-delta-coded value and returns it plus the
// number of bits consumed.
func getEliasDelta(b bitSource) (uint64, uint64, error) {
	w, used, err := getGammaRaw(b)
	if err != nil {
		return 0, 0, err
	}
	low, err := b.bits(used, w-1)
	if err != nil {
		return 0, 0, err
	}
	n := (uint64(1) << (w - 1)) | low
	return n - 1, used + (w - 1), nil
}
