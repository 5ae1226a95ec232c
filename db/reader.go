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

package db

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/shenwei356/meryl/block"
)

const trailerEntrySize = 8 + 8 + 8 // prefix, offset, count

type openFile struct {
	f       *os.File
	trailer []trailerEntry // indexed by block slot, in file order
}

// Reader gives random-access and streaming access to a finished database
// directory. It keeps every file's trailer in memory (small: one entry per
// block) and caches the single most recently decoded block, mirroring the
// one-block working set a sorted stream needs.
type Reader struct {
	dir string
	Idx *Index

	blocksMask uint64
	files      []*openFile

	cachedFile  int
	cachedBlock int
	cached      *block.Decoded
}

// Open reads merylIndex and every *.data file's trailer from dir. It fails
// with ErrCorruptData if merylIndex still carries the incomplete sentinel
// (the writer that produced it never called Finish).
func Open(dir string) (*Reader, error) {
	indexFile, err := os.Open(filepath.Join(dir, "merylIndex"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer indexFile.Close()

	idx, err := ReadIndex(indexFile)
	if err != nil {
		return nil, err
	}

	numFiles := 1 << idx.FilesBits
	numBlocks := 1 << idx.BlocksBits
	files := make([]*openFile, numFiles)
	for i := 0; i < numFiles; i++ {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("%04d.data", i)))
		if err != nil {
			return nil, err
		}
		trailer, err := readTrailer(f, numBlocks)
		if err != nil {
			return nil, err
		}
		files[i] = &openFile{f: f, trailer: trailer}
	}

	return &Reader{
		dir:         dir,
		Idx:         idx,
		blocksMask:  1<<idx.BlocksBits - 1,
		files:       files,
		cachedFile:  -1,
		cachedBlock: -1,
	}, nil
}

func readTrailer(f *os.File, numBlocks int) ([]trailerEntry, error) {
	size, err := f.Seek(0, 2)
	if err != nil {
		return nil, err
	}
	trailerBytes := int64(numBlocks*trailerEntrySize) + 4 + 8
	if size < trailerBytes {
		return nil, ErrCorruptData
	}
	if _, err := f.Seek(size-trailerBytes, 0); err != nil {
		return nil, err
	}

	entries := make([]trailerEntry, numBlocks)
	for i := range entries {
		var prefix, offset, count uint64
		if err := binary.Read(f, binary.BigEndian, &prefix); err != nil {
			return nil, err
		}
		if err := binary.Read(f, binary.BigEndian, &offset); err != nil {
			return nil, err
		}
		if err := binary.Read(f, binary.BigEndian, &count); err != nil {
			return nil, err
		}
		entries[i] = trailerEntry{Prefix: prefix, Offset: offset, Count: count}
	}

	var blocksBits uint32
	if err := binary.Read(f, binary.BigEndian, &blocksBits); err != nil {
		return nil, err
	}
	var magic uint64
	if err := binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != dataFileMagic {
		return nil, ErrCorruptData
	}
	return entries, nil
}

// Close releases every open *.data file handle.
func (r *Reader) Close() error {
	var firstErr error
	for _, of := range r.files {
		if err := of.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Reader) loadBlock(fileIdx, blockIdx int) (*block.Decoded, error) {
	if r.cachedFile == fileIdx && r.cachedBlock == blockIdx {
		return r.cached, nil
	}
	of := r.files[fileIdx]
	entry := of.trailer[blockIdx]
	if entry.Count == 0 {
		return nil, nil
	}
	if _, err := of.f.Seek(int64(entry.Offset), 0); err != nil {
		return nil, err
	}
	dec, err := block.Read(of.f, int(r.Idx.SuffixBits))
	if err != nil {
		return nil, err
	}
	r.cachedFile, r.cachedBlock, r.cached = fileIdx, blockIdx, dec
	return dec, nil
}

func (r *Reader) locate(prefix uint64) (fileIdx, blockIdx int) {
	return int(prefix >> r.Idx.BlocksBits), int(prefix & r.blocksMask)
}

// Count returns the stored value for (prefix, suffix), and whether the
// k-mer is present at all.
func (r *Reader) Count(prefix uint64, suffix uint64) (uint64, bool, error) {
	fileIdx, blockIdx := r.locate(prefix)
	if fileIdx >= len(r.files) {
		return 0, false, nil
	}
	dec, err := r.loadBlock(fileIdx, blockIdx)
	if err != nil || dec == nil {
		return 0, false, err
	}
	i := sort.Search(len(dec.Suffixes), func(i int) bool { return dec.Suffixes[i] >= suffix })
	if i < len(dec.Suffixes) && dec.Suffixes[i] == suffix {
		return dec.Values[i], true, nil
	}
	return 0, false, nil
}

// Exists reports whether (prefix, suffix) is present in the database.
func (r *Reader) Exists(prefix, suffix uint64) (bool, error) {
	_, ok, err := r.Count(prefix, suffix)
	return ok, err
}

// Iterator pulls (prefix, suffix, value) triples from a Reader in ascending
// order, one at a time -- the shape MergeEngine's heap needs, as opposed to
// Stream/StreamRange's push callback.
type Iterator struct {
	r           *Reader
	fileIdx     int
	blockIdx    int
	dec         *block.Decoded
	i           int
	done        bool
}

// Iterator returns a fresh pull-based cursor over the whole database.
func (r *Reader) Iterator() *Iterator {
	return &Iterator{r: r, blockIdx: -1}
}

// Next returns the next (prefix, suffix, value) triple, or io.EOF once
// every entry has been visited.
func (it *Iterator) Next() (prefix, suffix, value uint64, err error) {
	for {
		if it.done {
			return 0, 0, 0, io.EOF
		}
		if it.dec == nil || it.i >= len(it.dec.Suffixes) {
			if !it.advanceBlock() {
				it.done = true
				return 0, 0, 0, io.EOF
			}
			continue
		}
		p := (uint64(it.fileIdx) << it.r.Idx.BlocksBits) | uint64(it.blockIdx)
		suffix = it.dec.Suffixes[it.i]
		value = it.dec.Values[it.i]
		it.i++
		return p, suffix, value, nil
	}
}

// advanceBlock moves the cursor to the next non-empty block, loading it.
// Returns false once every file/block slot has been exhausted.
func (it *Iterator) advanceBlock() bool {
	for {
		it.blockIdx++
		if it.blockIdx >= len(it.r.files[it.fileIdx].trailer) {
			it.fileIdx++
			it.blockIdx = 0
			if it.fileIdx >= len(it.r.files) {
				return false
			}
		}
		entry := it.r.files[it.fileIdx].trailer[it.blockIdx]
		if entry.Count == 0 {
			continue
		}
		dec, err := it.r.loadBlock(it.fileIdx, it.blockIdx)
		if err != nil || dec == nil {
			continue
		}
		it.dec, it.i = dec, 0
		return true
	}
}

// VisitFunc is called once per stored k-mer, in ascending (prefix, suffix)
// order, during Stream/StreamRange.
type VisitFunc func(prefix, suffix, value uint64) error

// Stream visits every stored k-mer in ascending order.
func (r *Reader) Stream(visit VisitFunc) error {
	return r.StreamRange(0, uint64(len(r.files))<<r.Idx.BlocksBits-1, visit)
}

// StreamRange visits every stored k-mer whose prefix lies in [loPrefix,
// hiPrefix], in ascending order.
func (r *Reader) StreamRange(loPrefix, hiPrefix uint64, visit VisitFunc) error {
	for fileIdx := range r.files {
		base := uint64(fileIdx) << r.Idx.BlocksBits
		for blockIdx := 0; blockIdx < len(r.files[fileIdx].trailer); blockIdx++ {
			prefix := base | uint64(blockIdx)
			if prefix < loPrefix || prefix > hiPrefix {
				continue
			}
			dec, err := r.loadBlock(fileIdx, blockIdx)
			if err != nil {
				return err
			}
			if dec == nil {
				continue
			}
			for i := range dec.Suffixes {
				if err := visit(prefix, dec.Suffixes[i], dec.Values[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
