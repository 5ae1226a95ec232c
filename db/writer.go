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
	"os"
	"path/filepath"

	"github.com/shenwei356/meryl/block"
)

// dataFileMagic ("merylEnd") closes each *.data file's trailer, the same way
// the top-level merylIndex is bookended by its own magic.
var dataFileMagic = beWord([8]byte{'m', 'e', 'r', 'y', 'l', 'E', 'n', 'd'})

type trailerEntry struct {
	Prefix uint64
	Offset uint64
	Count  uint64
}

type dataFile struct {
	f       *os.File
	bw      *block.Writer
	trailer []trailerEntry
}

// Writer builds a partitioned database on disk: one merylIndex header/stats
// file plus 2^filesBits *.data files, each holding a run of blocks followed
// by a fixed-size index trailer. It implements countarray.BlockSink, so a
// CountArray can dump directly into it.
type Writer struct {
	dir string

	prefixBits uint32
	suffixBits uint32
	filesBits  uint32
	blocksBits uint32
	blocksMask uint64

	indexFile *os.File
	files     []*dataFile

	idx *Index
}

// Create lays out a fresh database directory: the merylIndex file (written
// with the incomplete sentinel magic) and 2^filesBits empty *.data files.
func Create(dir string, k uint64, prefixBits, suffixBits, filesBits, blocksBits uint32, multiset bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	indexFile, err := os.Create(filepath.Join(dir, "merylIndex"))
	if err != nil {
		return nil, err
	}
	if err := WriteIncomplete(indexFile, prefixBits, suffixBits, filesBits, blocksBits, k, multiset); err != nil {
		indexFile.Close()
		return nil, err
	}

	numFiles := 1 << filesBits
	numBlocks := 1 << blocksBits
	files := make([]*dataFile, numFiles)
	for i := 0; i < numFiles; i++ {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%04d.data", i)))
		if err != nil {
			return nil, err
		}
		files[i] = &dataFile{
			f:       f,
			bw:      block.NewWriter(f, 0),
			trailer: make([]trailerEntry, numBlocks),
		}
	}

	return &Writer{
		dir:        dir,
		prefixBits: prefixBits,
		suffixBits: suffixBits,
		filesBits:  filesBits,
		blocksBits: blocksBits,
		blocksMask: 1<<blocksBits - 1,
		indexFile:  indexFile,
		files:      files,
		idx:        &Index{PrefixBits: prefixBits, SuffixBits: suffixBits, FilesBits: filesBits, BlocksBits: blocksBits, K: k, Multiset: multiset},
	}, nil
}

// WriteBlock routes one finished CountArray bucket to the *.data file its
// prefix belongs to and records the trailer entry for later lookup. It
// satisfies countarray.BlockSink.
func (w *Writer) WriteBlock(prefix uint64, suffixes, values []uint64, suffixBits int) (int64, error) {
	fileIdx := prefix >> w.blocksBits
	blockIdx := prefix & w.blocksMask
	if fileIdx >= uint64(len(w.files)) {
		return 0, ErrCorruptData
	}

	df := w.files[fileIdx]
	offset, err := df.bw.WriteBlock(prefix, suffixes, values, suffixBits)
	if err != nil {
		return 0, err
	}
	df.trailer[blockIdx] = trailerEntry{Prefix: prefix, Offset: uint64(offset), Count: uint64(len(suffixes))}

	for _, v := range values {
		w.idx.Observe(v)
	}
	return offset, nil
}

// Finish appends each *.data file's trailer (one entry per block slot, in
// prefix order, then blocksBits and a closing magic), overwrites merylIndex
// with its final statistics and the real version magic, and closes every
// file. The database is only safe to open for reading once Finish returns
// nil -- before that, merylIndex still carries its incomplete sentinel.
func (w *Writer) Finish() error {
	for _, df := range w.files {
		for _, e := range df.trailer {
			for _, v := range []uint64{e.Prefix, e.Offset, e.Count} {
				if err := binary.Write(df.f, binary.BigEndian, v); err != nil {
					return err
				}
			}
		}
		if err := binary.Write(df.f, binary.BigEndian, w.blocksBits); err != nil {
			return err
		}
		if err := binary.Write(df.f, binary.BigEndian, dataFileMagic); err != nil {
			return err
		}
		if err := df.f.Close(); err != nil {
			return err
		}
	}

	if _, err := w.indexFile.Seek(0, 0); err != nil {
		return err
	}
	if err := WriteFinal(w.indexFile, w.idx); err != nil {
		return err
	}
	return w.indexFile.Close()
}

// Stats exposes the running statistics accumulated so far, for a caller that
// wants to report progress before Finish.
func (w *Writer) Stats() *Index { return w.idx }
