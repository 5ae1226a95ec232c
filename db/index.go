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

// Package db implements the partitioned on-disk database: the top-level
// merylIndex header/statistics file plus the 2^filesBits *.data files it
// describes, each a run of block.Writer blocks followed by a trailer.
package db

import (
	"errors"
	"io"

	"github.com/shenwei356/meryl/bitstream"
)

// ErrCorruptData, ErrVersionMismatch and ErrNotFound are the failure modes
// a merylIndex read can hit (spec.md 4.F).
var (
	ErrCorruptData     = errors.New("db: corrupt merylIndex")
	ErrVersionMismatch = errors.New("db: unsupported merylIndex version")
	ErrNotFound        = errors.New("db: no merylIndex in directory")
)

const histogramBuckets = 64

// indexMagicHi is constant; indexMagicLo carries the version and switches
// between an "incomplete" sentinel (written when the writer opens) and the
// real version tag (written only once every file has closed), the same
// crash-detection trick libmeryl.C's ImagicX/ImagicV pair uses.
var (
	indexMagicHi          = beWord([8]byte{'m', 'e', 'r', 'y', 'l', 'I', 'n', 'd'})
	indexMagicLoComplete  = beWord([8]byte{'e', 'x', '_', '_', 'v', '.', '0', '3'})
	indexMagicLoIncomplet = beWord([8]byte{'e', 'x', '_', '_', 'v', 'X', 'X', 'X'})
)

func beWord(b [8]byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// Index is the parsed merylIndex header and summary statistics.
type Index struct {
	PrefixBits uint32
	SuffixBits uint32
	FilesBits  uint32
	BlocksBits uint32
	Multiset   bool
	K          uint64

	NumDistinct uint64
	NumUnique   uint64
	NumTotal    uint64

	HistogramHuge uint64 // count of distinct k-mers whose value >= 64
	HistogramMax  uint64 // sum of values over entries counted in HistogramHuge (see DESIGN.md)
	Histogram     [histogramBuckets]uint64
}

// Observe folds one distinct k-mer's value into the running statistics,
// used by both DatabaseWriter (while draining buckets) and MergeEngine
// (while writing merged output).
func (idx *Index) Observe(value uint64) {
	idx.NumDistinct++
	idx.NumTotal += value
	if value == 1 {
		idx.NumUnique++
	}
	if value >= histogramBuckets {
		idx.HistogramHuge++
		idx.HistogramMax += value
	} else {
		idx.Histogram[value]++
	}
}

// writeHeader writes the fixed-size merylIndex preamble (everything but the
// version half of the magic, which the caller controls) to w.
func writeHeader(w io.Writer, magicLo uint64, idx *Index) error {
	s := bitstream.NewWriter(w)
	if err := s.PutBits(indexMagicHi, 64); err != nil {
		return err
	}
	if err := s.PutBits(magicLo, 64); err != nil {
		return err
	}
	if err := s.PutBits(uint64(idx.PrefixBits), 32); err != nil {
		return err
	}
	if err := s.PutBits(uint64(idx.SuffixBits), 32); err != nil {
		return err
	}
	if err := s.PutBits(uint64(idx.FilesBits), 32); err != nil {
		return err
	}
	if err := s.PutBits(uint64(idx.BlocksBits), 32); err != nil {
		return err
	}
	var flags uint64
	if idx.Multiset {
		flags |= 1
	}
	if err := s.PutBits(flags, 32); err != nil {
		return err
	}
	if err := s.PutBits(idx.K, 64); err != nil {
		return err
	}
	if err := s.PutBits(idx.NumDistinct, 64); err != nil {
		return err
	}
	if err := s.PutBits(idx.NumUnique, 64); err != nil {
		return err
	}
	if err := s.PutBits(idx.NumTotal, 64); err != nil {
		return err
	}
	if err := s.PutBits(idx.HistogramHuge, 64); err != nil {
		return err
	}
	if err := s.PutBits(idx.HistogramMax, 64); err != nil {
		return err
	}
	for _, h := range idx.Histogram {
		if err := s.PutBits(h, 64); err != nil {
			return err
		}
	}
	return s.Flush()
}

// WriteIncomplete writes the merylIndex preamble with the "incomplete"
// sentinel version, all statistics zeroed. Called once, at
// DatabaseWriter.Create.
func WriteIncomplete(w io.Writer, prefixBits, suffixBits, filesBits, blocksBits uint32, k uint64, multiset bool) error {
	idx := &Index{PrefixBits: prefixBits, SuffixBits: suffixBits, FilesBits: filesBits, BlocksBits: blocksBits, K: k, Multiset: multiset}
	return writeHeader(w, indexMagicLoIncomplet, idx)
}

// WriteFinal overwrites the merylIndex with the real version magic and the
// final statistics. The caller must pass an io.Writer positioned at the
// start of the file (os.File.Seek(0, io.SeekStart) first).
func WriteFinal(w io.Writer, idx *Index) error {
	return writeHeader(w, indexMagicLoComplete, idx)
}

// ReadIndex parses a merylIndex file, failing loudly if the writer that
// produced it never reached WriteFinal (the incomplete-magic sentinel is
// still in place) or the version is unsupported.
func ReadIndex(r io.Reader) (*Index, error) {
	s := bitstream.NewReader(r)

	hi, err := s.GetBits(64)
	if err != nil {
		return nil, ErrCorruptData
	}
	lo, err := s.GetBits(64)
	if err != nil {
		return nil, ErrCorruptData
	}
	if hi != indexMagicHi {
		return nil, ErrCorruptData
	}
	if lo == indexMagicLoIncomplet {
		return nil, ErrCorruptData
	}
	if lo != indexMagicLoComplete {
		return nil, ErrVersionMismatch
	}

	idx := &Index{}
	var v uint64
	if v, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptData
	}
	idx.PrefixBits = uint32(v)
	if v, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptData
	}
	idx.SuffixBits = uint32(v)
	if v, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptData
	}
	idx.FilesBits = uint32(v)
	if v, err = s.GetBits(32); err != nil {
		return nil, ErrCorruptData
	}
	idx.BlocksBits = uint32(v)
	flags, err := s.GetBits(32)
	if err != nil {
		return nil, ErrCorruptData
	}
	idx.Multiset = flags&1 != 0
	if idx.K, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	if idx.NumDistinct, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	if idx.NumUnique, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	if idx.NumTotal, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	if idx.HistogramHuge, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	if idx.HistogramMax, err = s.GetBits(64); err != nil {
		return nil, ErrCorruptData
	}
	for i := range idx.Histogram {
		if idx.Histogram[i], err = s.GetBits(64); err != nil {
			return nil, ErrCorruptData
		}
	}
	return idx, nil
}
