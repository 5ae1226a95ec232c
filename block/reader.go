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

package block

import (
	"errors"
	"io"

	"github.com/shenwei356/meryl/bitstream"
)

// ErrCorruptBlock means a block's magic didn't match, or a code underflowed
// while decoding.
var ErrCorruptBlock = errors.New("block: corrupt block")

// Decoded is one fully-read block: its header plus the reconstructed sorted
// suffix list and parallel value column.
type Decoded struct {
	Header    Header
	Suffixes  []uint64
	Values    []uint64
}

// Read decodes one block from r, which must be positioned at the block's
// first byte. suffixBits is the caller's configured suffix width (needed to
// validate unaryBits+binaryBits against it).
func Read(r io.Reader, suffixBits int) (*Decoded, error) {
	s := bitstream.NewReader(r)

	hi, err := s.GetBits(64)
	if err != nil {
		return nil, ErrCorruptBlock
	}
	lo, err := s.GetBits(64)
	if err != nil {
		return nil, ErrCorruptBlock
	}
	if hi != magicHiWord || lo != magicLoWord {
		return nil, ErrCorruptBlock
	}

	var h Header
	var v64 uint64
	var v8, v32a, v32b uint64
	if v64, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptBlock
	}
	h.Prefix = v64
	if v64, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptBlock
	}
	h.N = v64
	if v8, err = s.GetBits(8); err != nil {
		return nil, ErrCorruptBlock
	}
	h.SuffixTag = uint8(v8)
	if v32a, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptBlock
	}
	h.UnaryBits = uint32(v32a)
	if v32b, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptBlock
	}
	h.BinaryBits = uint32(v32b)
	if _, err = s.GetBits(64); err != nil { // reserved
		return nil, ErrCorruptBlock
	}
	if v8, err = s.GetBits(8); err != nil {
		return nil, ErrCorruptBlock
	}
	h.ValueTag = uint8(v8)
	if _, err = s.GetBits(64); err != nil { // reserved
		return nil, ErrCorruptBlock
	}
	if _, err = s.GetBits(64); err != nil { // reserved
		return nil, ErrCorruptBlock
	}

	if h.SuffixTag != suffixCodeEliasFano {
		return nil, ErrCorruptBlock
	}
	if int(h.UnaryBits)+int(h.BinaryBits) != suffixBits && h.N > 1 {
		return nil, ErrCorruptBlock
	}

	// A block can never legitimately hold more entries than there are
	// distinct suffixBits-wide suffixes; a corrupt or truncated header
	// claiming more than that is rejected before it drives an allocation.
	var maxN uint64 = ^uint64(0)
	if suffixBits < 64 {
		maxN = uint64(1) << uint(suffixBits)
	}
	if h.N > maxN {
		return nil, ErrCorruptBlock
	}

	n := int(h.N)
	suffixes := make([]uint64, n)
	var prev uint64
	for i := 0; i < n; i++ {
		delta, derr := s.GetUnary()
		if derr != nil {
			return nil, ErrCorruptBlock
		}
		high := (prev >> h.BinaryBits) + delta
		var low uint64
		if h.BinaryBits > 0 {
			low, err = s.GetBits(uint(h.BinaryBits))
			if err != nil {
				return nil, ErrCorruptBlock
			}
		}
		suf := (high << h.BinaryBits) | low
		suffixes[i] = suf
		prev = suf
	}

	values := make([]uint64, n)
	for i := 0; i < n; i++ {
		var val uint64
		var verr error
		switch h.ValueTag {
		case TagEliasGamma:
			val, verr = s.GetEliasGamma()
		case TagZeckendorf:
			val, verr = s.GetZeckendorf()
		default:
			return nil, ErrCorruptBlock
		}
		if verr != nil {
			return nil, ErrCorruptBlock
		}
		values[i] = val
	}

	return &Decoded{Header: h, Suffixes: suffixes, Values: values}, nil
}
