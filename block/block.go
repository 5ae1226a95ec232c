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

// Package block serializes and decodes one prefix's worth of sorted k-mer
// suffixes and their values: an Elias-Fano-coded suffix list followed by a
// value column coded with whichever of Elias-Gamma/Zeckendorf is smaller.
// TagFixedWidth is defined but never chosen by Writer nor accepted by Read.
// Blocks are self-delimiting (fixed header + computed lengths) so
// they can be concatenated and later indexed by a per-file trailer.
package block

import (
	"bytes"
	"math/bits"

	"github.com/shenwei356/meryl/bitstream"
)

// Value-column code tags, written in the block header.
const (
	TagFixedWidth = 1
	TagEliasGamma = 2
	TagZeckendorf = 3
)

// suffixCodeTag identifies the suffix-list coding scheme; Elias-Fano is
// currently the only one, kept as an explicit tag for forward compatibility
// the way the value column's tag is.
const suffixCodeEliasFano = 1

// magicHi/magicLo are the two halves of the 128-bit block magic
// "merylDat"+"aFile00\n".
var (
	magicHi = [8]byte{'m', 'e', 'r', 'y', 'l', 'D', 'a', 't'}
	magicLo = [8]byte{'a', 'F', 'i', 'l', 'e', '0', '0', '\n'}
)

func beBytesToU64(b [8]byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

var magicHiWord = beBytesToU64(magicHi)
var magicLoWord = beBytesToU64(magicLo)

// Header describes one block's fixed-size preamble.
type Header struct {
	Prefix        uint64
	N             uint64
	SuffixTag     uint8
	UnaryBits     uint32
	BinaryBits    uint32
	ValueTag      uint8
}

// unaryBinarySplit computes Elias-Fano's unaryBits/binaryBits split for N
// sorted suffixes of suffixBits width (spec.md 4.D.1).
func unaryBinarySplit(n int, suffixBits int) (unaryBits, binaryBits int) {
	if n <= 1 {
		return 0, suffixBits
	}
	unaryBits = bits.Len(uint(n - 1))
	if unaryBits == 0 {
		unaryBits = 1
	}
	binaryBits = suffixBits - unaryBits
	if binaryBits < 0 {
		binaryBits = 0
		unaryBits = suffixBits
	}
	return
}

// chooseValueTag estimates the total bit length of each candidate value
// coding and picks the smallest.
//
// TagFixedWidth (spec.md 4.D) needs the chosen width to be available again
// at decode time, and the block header's layout (4.D, listed in a fixed
// field order inherited unchanged from the source format) has no slot for
// it alongside the three zero-filled reserved fields -- see DESIGN.md's open
// question on reserved header fields. So only the two self-describing,
// prefix-free codings are compared here; TagFixedWidth is never selected.
func chooseValueTag(values []uint64) (tag int, fixedWidth int) {
	var gammaBits, zeckBits uint64
	for _, v := range values {
		gammaBits += bitstream.EliasGammaBitLen(v)
		zeckBits += bitstream.ZeckendorfBitLen(v)
	}

	tag = TagEliasGamma
	if zeckBits < gammaBits {
		tag = TagZeckendorf
	}
	return tag, 0
}

// Writer appends blocks to an underlying byte sink, returning each block's
// starting byte offset so the caller can record it in a file-level trailer.
type Writer struct {
	w      interface{ Write([]byte) (int, error) }
	offset int64
}

// NewWriter returns a Writer appending to w, whose first block will be
// recorded at startOffset (the caller's current file position).
func NewWriter(w interface{ Write([]byte) (int, error) }, startOffset int64) *Writer {
	return &Writer{w: w, offset: startOffset}
}

// Offset returns the writer's current byte position (where the next block
// will start).
func (bw *Writer) Offset() int64 { return bw.offset }

// WriteBlock encodes one block for prefix over the sorted suffixes/values
// and appends it, returning the block's starting byte offset. It implements
// countarray.BlockSink.
func (bw *Writer) WriteBlock(prefix uint64, suffixes, values []uint64, suffixBits int) (int64, error) {
	n := len(suffixes)
	unaryBits, binaryBits := unaryBinarySplit(n, suffixBits)
	valueTag, fixedWidth := chooseValueTag(values)

	var buf bytes.Buffer
	s := bitstream.NewWriter(&buf)

	if err := s.PutBits(magicHiWord, 64); err != nil {
		return 0, err
	}
	if err := s.PutBits(magicLoWord, 64); err != nil {
		return 0, err
	}
	if err := s.PutBits(prefix, 64); err != nil {
		return 0, err
	}
	if err := s.PutBits(uint64(n), 64); err != nil {
		return 0, err
	}
	if err := s.PutBits(suffixCodeEliasFano, 8); err != nil {
		return 0, err
	}
	if err := s.PutBits(uint64(unaryBits), 32); err != nil {
		return 0, err
	}
	if err := s.PutBits(uint64(binaryBits), 32); err != nil {
		return 0, err
	}
	if err := s.PutBits(0, 64); err != nil { // reserved
		return 0, err
	}
	if err := s.PutBits(uint64(valueTag), 8); err != nil {
		return 0, err
	}
	if err := s.PutBits(0, 64); err != nil { // reserved
		return 0, err
	}
	if err := s.PutBits(0, 64); err != nil { // reserved
		return 0, err
	}

	var prev uint64
	for _, suf := range suffixes {
		delta := (suf >> uint(binaryBits)) - (prev >> uint(binaryBits))
		if err := s.PutUnary(delta); err != nil {
			return 0, err
		}
		if binaryBits > 0 {
			if err := s.PutBits(suf&bitstream.Mask(uint64(binaryBits)), uint(binaryBits)); err != nil {
				return 0, err
			}
		}
		prev = suf
	}

	for _, v := range values {
		var err error
		switch valueTag {
		case TagFixedWidth:
			err = s.PutBits(v, uint(fixedWidth))
		case TagEliasGamma:
			err = s.PutEliasGamma(v)
		case TagZeckendorf:
			err = s.PutZeckendorf(v)
		}
		if err != nil {
			return 0, err
		}
	}

	if err := s.Flush(); err != nil {
		return 0, err
	}

	start := bw.offset
	nbytes, err := bw.w.Write(buf.Bytes())
	if err != nil {
		return 0, err
	}
	bw.offset += int64(nbytes)
	return start, nil
}
