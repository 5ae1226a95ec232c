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

package meryl

// base2bit maps an ASCII base to its 2-bit code, or -1 if it isn't one of
// A/C/G/T (case-insensitive). Degenerate IUPAC bases are not accepted here:
// an Encoder resets its window rather than guess.
var base2bit [256]int8

func init() {
	for i := range base2bit {
		base2bit[i] = -1
	}
	base2bit['A'], base2bit['a'] = 0, 0
	base2bit['C'], base2bit['c'] = 1, 1
	base2bit['G'], base2bit['g'] = 2, 2
	base2bit['T'], base2bit['t'] = 3, 3
}

// Encoder incrementally builds K-mers from a stream of bases, maintaining a
// rolling window so each new base costs O(1) instead of re-encoding the
// whole K-mer. It mirrors unikmer's Iterator, generalized to 1<=K<=64 via
// Code's two-word representation and extended with homopolymer compression
// and a spaced-seed mask.
type Encoder struct {
	k         int
	hpc       bool   // homopolymer-compress before counting toward K
	seedMask  uint64 // optional spaced-seed mask over the K positions, bit i set means position i participates; 0 means "no mask" (all positions used)
	filled    int    // number of valid bases currently in the window
	lastBase  int8   // last base seen, for homopolymer compression
	fwd       Code   // forward-strand code of the current window
	rev       Code   // reverse-complement code of the current window
}

// NewEncoder returns an Encoder for K-mers of length k (1<=k<=64).
func NewEncoder(k int) (*Encoder, error) {
	if k <= 0 || k > 64 {
		return nil, ErrKOverflow
	}
	return &Encoder{k: k, lastBase: -1}, nil
}

// EnableHomopolymerCompression collapses runs of the same base into a
// single base before it counts toward the window, so "AAAC" and "AC" both
// contribute the same two effective bases.
func (e *Encoder) EnableHomopolymerCompression() { e.hpc = true }

// SetSpacedSeed restricts comparison/canonicalization to the K positions
// whose bit is set in mask (bit 0 = the most recent base). A zero mask
// means "use all K positions" (the default, contiguous k-mer).
func (e *Encoder) SetSpacedSeed(mask uint64) { e.seedMask = mask }

// Reset clears the rolling window, e.g. at a contig boundary.
func (e *Encoder) Reset() {
	e.filled = 0
	e.lastBase = -1
	e.fwd = Code{}
	e.rev = Code{}
}

// AddBase pushes one more base (A/C/G/T, case-insensitive) into the window.
// It returns false (with ErrIllegalBase) if the byte isn't a valid base, in
// which case the caller should Reset and resume the window past it.
func (e *Encoder) AddBase(b byte) (ok bool, err error) {
	code := base2bit[b]
	if code < 0 {
		return false, ErrIllegalBase
	}

	if e.hpc && e.filled > 0 && code == e.lastBase {
		return true, nil
	}
	e.lastBase = code

	k := e.k
	fhi, flo := shiftLeft2(e.fwd.Hi, e.fwd.Lo, uint64(code))
	if k <= 32 {
		flo &= mask32(k)
		fhi = 0
	} else {
		fhi &= mask32(k - 32)
	}
	e.fwd = Code{Hi: fhi, Lo: flo}

	rc := uint64(code) ^ 3
	rhi, rlo, _ := shiftRight2(e.rev.Hi, e.rev.Lo, 0)
	if k <= 32 {
		rlo |= rc << uint(2*(k-1))
	} else {
		rhi |= rc << uint(2*(k-33))
	}
	e.rev = Code{Hi: rhi, Lo: rlo}

	if e.filled < k {
		e.filled++
	}
	return true, nil
}

func mask32(bits int) uint64 {
	if bits <= 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*bits)) - 1
}

// HasKmer reports whether the window currently holds K valid bases.
func (e *Encoder) HasKmer() bool { return e.filled == e.k }

// Forward returns the forward-strand KmerCode of the current window.
// HasKmer must be true.
func (e *Encoder) Forward() KmerCode {
	return e.applySeed(KmerCode{Code: e.fwd, K: e.k})
}

// Reverse returns the reverse-complement KmerCode of the current window.
// HasKmer must be true.
func (e *Encoder) Reverse() KmerCode {
	return e.applySeed(KmerCode{Code: e.rev, K: e.k})
}

// Canonical returns the lexicographically smaller of Forward and Reverse.
func (e *Encoder) Canonical() KmerCode {
	f, r := e.Forward(), e.Reverse()
	if r.Code.Less(f.Code) {
		return r
	}
	return f
}

// applySeed zeroes out the 2-bit positions not selected by seedMask, when a
// spaced seed is in effect. Position 0 is the least-significant (most
// recent) base.
func (e *Encoder) applySeed(kc KmerCode) KmerCode {
	if e.seedMask == 0 {
		return kc
	}
	var hi, lo uint64
	for i := 0; i < kc.K; i++ {
		if e.seedMask&(1<<uint(i)) == 0 {
			continue
		}
		var b uint64
		if i < 32 {
			b = (kc.Code.Lo >> uint(2*i)) & 3
		} else {
			b = (kc.Code.Hi >> uint(2*(i-32))) & 3
		}
		if i < 32 {
			lo |= b << uint(2*i)
		} else {
			hi |= b << uint(2*(i-32))
		}
	}
	return KmerCode{Code: Code{Hi: hi, Lo: lo}, K: kc.K}
}
