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

// maskBits returns a bits-wide all-ones mask (bits in 0..64).
func maskBits(bits uint) uint64 {
	if bits == 0 {
		return 0
	}
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// SplitCode partitions a k-mer's 2K-bit code into its top prefixBits bits
// (the file/block address) and the remaining low bits (the suffix stored in
// a block). Both CountArray and DatabaseReader/Writer operate on the
// resulting (prefix, suffix) pair rather than the raw Code.
//
// The suffix and prefix both have to fit a uint64 -- this bounds K and
// prefixBits together (2*k - prefixBits <= 64 and prefixBits <= 64), which
// in practice is no real restriction since prefixBits is filesBits (fixed
// at 6) plus a small blocksBits.
func SplitCode(c Code, k int, prefixBits uint) (prefix, suffix uint64, err error) {
	total := uint(2 * k)
	if prefixBits > total {
		return 0, 0, ErrInvalidInput
	}
	suffixBits := total - prefixBits
	if suffixBits > 64 || prefixBits > 64 {
		return 0, 0, ErrKOverflow
	}

	suffix = c.Lo & maskBits(suffixBits)

	var shiftedLo uint64
	if suffixBits == 0 {
		shiftedLo = c.Lo
	} else {
		shiftedLo = c.Lo>>suffixBits | c.Hi<<(64-suffixBits)
	}
	prefix = shiftedLo & maskBits(prefixBits)
	return prefix, suffix, nil
}

// JoinCode reassembles a Code from a (prefix, suffix) pair produced by
// SplitCode, for the same (k, prefixBits).
func JoinCode(prefix, suffix uint64, k int, prefixBits uint) Code {
	total := uint(2 * k)
	suffixBits := total - prefixBits

	lo := suffix & maskBits(suffixBits)
	var hi uint64
	if suffixBits < 64 {
		lo |= (prefix & maskBits(prefixBits)) << suffixBits
		hi = (prefix & maskBits(prefixBits)) >> (64 - suffixBits)
	} else {
		hi = prefix & maskBits(prefixBits)
	}
	return Code{Hi: hi, Lo: lo}
}
