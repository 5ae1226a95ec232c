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

// Package meryl implements canonical/forward k-mer encoding shared by the
// bitstream, countarray, block, db and merge packages, the (prefix, suffix)
// split of a Code, and sort.Interface helpers over flat Code lists.
package meryl

// Code is a 2-bit-packed k-mer, up to K=64 (128 bits). Lo holds bases
// 0..31 (the rightmost/least-significant 32 bases), Hi holds bases 32..63.
// For K<=32, Hi is always zero, matching unikmer's single-uint64 encoding.
type Code struct {
	Hi, Lo uint64
}

// Less reports whether c sorts before other under the 2-bit ordering
// (A<C<G<T), comparing Hi first since it holds the more significant bases.
func (c Code) Less(other Code) bool {
	if c.Hi != other.Hi {
		return c.Hi < other.Hi
	}
	return c.Lo < other.Lo
}

// Equal reports whether two codes carry the same bits.
func (c Code) Equal(other Code) bool {
	return c.Hi == other.Hi && c.Lo == other.Lo
}

// shiftLeft2 shifts the (Hi,Lo) pair left by 2 bits, shifting in low2
// (which must fit in 2 bits) at the bottom.
func shiftLeft2(hi, lo uint64, low2 uint64) (nhi, nlo uint64) {
	nhi = hi<<2 | lo>>62
	nlo = lo<<2 | low2
	return
}

// shiftRight2 shifts the (Hi,Lo) pair right by 2 bits, shifting in high2
// (which must fit in 2 bits) at the top, and returns the 2 bits shifted out.
func shiftRight2(hi, lo uint64, high2 uint64) (nhi, nlo, out2 uint64) {
	out2 = lo & 3
	nlo = lo>>2 | (hi&3)<<62
	nhi = hi>>2 | high2<<62
	return
}

// Encode converts a byte slice (1..64 bases) into a Code.
//
// Codes:
//
//	A    00
//	C    01
//	G    10
//	T    11
//
// For degenerate IUPAC bases, only the first represented base is kept,
// same table as unikmer.Encode.
func Encode(kmer []byte) (code Code, err error) {
	k := len(kmer)
	if k == 0 || k > 64 {
		return Code{}, ErrKOverflow
	}

	var hi, lo uint64
	for i := range kmer {
		var b uint64
		switch kmer[k-1-i] {
		case 'G', 'g', 'K', 'k':
			b = 2
		case 'T', 't', 'U', 'u':
			b = 3
		case 'C', 'c', 'S', 's', 'B', 'b', 'Y', 'y':
			b = 1
		case 'A', 'a', 'N', 'n', 'M', 'm', 'V', 'v', 'H', 'h', 'R', 'r', 'D', 'd', 'W', 'w':
			b = 0
		default:
			return Code{}, ErrIllegalBase
		}
		if i < 32 {
			lo |= b << uint(i*2)
		} else {
			hi |= b << uint((i-32)*2)
		}
	}
	return Code{Hi: hi, Lo: lo}, nil
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a Code back to its original sequence of K bases.
func Decode(code Code, k int) []byte {
	if k <= 0 || k > 64 {
		panic(ErrKOverflow)
	}
	kmer := make([]byte, k)
	hi, lo := code.Hi, code.Lo
	for i := 0; i < k; i++ {
		var b uint64
		if i < 32 {
			b = lo & 3
			lo >>= 2
		} else {
			b = hi & 3
			hi >>= 2
		}
		kmer[k-1-i] = bit2base[b]
	}
	return kmer
}

// Reverse returns the code of the reversed (not complemented) sequence.
func Reverse(code Code, k int) Code {
	if k <= 0 || k > 64 {
		panic(ErrKOverflow)
	}
	hi, lo := code.Hi, code.Lo
	var rhi, rlo uint64
	for i := 0; i < k; i++ {
		var b uint64
		hi, lo, b = shiftRight2(hi, lo, 0)
		rhi, rlo = shiftLeft2(rhi, rlo, b)
	}
	return Code{Hi: rhi, Lo: rlo}
}

// Complement returns the code of the complement sequence (base-wise, no
// reversal): A<->T, C<->G, i.e. each 2-bit symbol XORed with 3.
func Complement(code Code, k int) Code {
	if k <= 0 || k > 64 {
		panic(ErrKOverflow)
	}
	var mask uint64
	if k > 32 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(2*k)) - 1
	}
	lo := code.Lo ^ mask
	var hi uint64
	if k > 32 {
		himask := (uint64(1) << uint(2*(k-32))) - 1
		hi = code.Hi ^ himask
	}
	return Code{Hi: hi, Lo: lo}
}

// RevComp returns the code of the reverse complement sequence.
func RevComp(code Code, k int) Code {
	if k <= 0 || k > 64 {
		panic(ErrKOverflow)
	}
	hi, lo := code.Hi, code.Lo
	var rhi, rlo uint64
	for i := 0; i < k; i++ {
		var b uint64
		hi, lo, b = shiftRight2(hi, lo, 0)
		b ^= 3
		rhi, rlo = shiftLeft2(rhi, rlo, b)
	}
	return Code{Hi: rhi, Lo: rlo}
}

// KmerCode pairs a Code with the K it was built from, mirroring
// unikmer.KmerCode.
type KmerCode struct {
	Code Code
	K    int
}

// NewKmerCode returns a new KmerCode from a byte slice.
func NewKmerCode(kmer []byte) (KmerCode, error) {
	code, err := Encode(kmer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{code, len(kmer)}, nil
}

// Equal checks whether two KmerCodes carry the same K and bits.
func (kcode KmerCode) Equal(other KmerCode) bool {
	return kcode.K == other.K && kcode.Code.Equal(other.Code)
}

// Less orders KmerCodes with equal K by Code.
func (kcode KmerCode) Less(other KmerCode) bool {
	return kcode.Code.Less(other.Code)
}

// Rev returns the KmerCode of the reversed sequence.
func (kcode KmerCode) Rev() KmerCode {
	return KmerCode{Reverse(kcode.Code, kcode.K), kcode.K}
}

// Comp returns the KmerCode of the complement sequence.
func (kcode KmerCode) Comp() KmerCode {
	return KmerCode{Complement(kcode.Code, kcode.K), kcode.K}
}

// RevComp returns the KmerCode of the reverse complement sequence.
func (kcode KmerCode) RevComp() KmerCode {
	return KmerCode{RevComp(kcode.Code, kcode.K), kcode.K}
}

// Canonical returns the lexicographically smaller of kcode and its reverse
// complement, under 2-bit order (A<C<G<T).
func (kcode KmerCode) Canonical() KmerCode {
	rc := kcode.RevComp()
	if rc.Code.Less(kcode.Code) {
		return rc
	}
	return kcode
}

// Bytes returns the kmer as a byte slice.
func (kcode KmerCode) Bytes() []byte {
	return Decode(kcode.Code, kcode.K)
}

// String returns the kmer as a string.
func (kcode KmerCode) String() string {
	return string(Decode(kcode.Code, kcode.K))
}
