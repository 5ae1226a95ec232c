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

import "errors"

// Error kinds of the root package. Each concrete error below maps to one of
// the concept-level error kinds; bitstream, countarray, block, db and merge
// define their own sentinels rather than importing these.
var (
	// ErrInvalidInput is returned when a caller-supplied parameter is out
	// of range, e.g. K > 64 or K == 0.
	ErrInvalidInput = errors.New("meryl: invalid input")

	// ErrIllegalBase means a byte outside {A,C,G,T,a,c,g,t} was seen where
	// a valid base was required.
	ErrIllegalBase = errors.New("meryl: illegal base")

	// ErrKOverflow means K is outside 1..64.
	ErrKOverflow = errors.New("meryl: K (1-64) overflow")

	// ErrKMismatch means two KmerCodes or a KmerCode and a Header disagree on K.
	ErrKMismatch = errors.New("meryl: K mismatch")

	// ErrIoError wraps an underlying file or memory-map failure.
	ErrIoError = errors.New("meryl: I/O error")

	// ErrCorruptData means a magic mismatch, a prefix-free code that did
	// not terminate, or histogram totals inconsistent with block sums.
	ErrCorruptData = errors.New("meryl: corrupt data")

	// ErrVersionMismatch means the on-disk format version is not supported
	// by this reader.
	ErrVersionMismatch = errors.New("meryl: version mismatch")

	// ErrIncompatibleInputs means merge inputs disagree on K, canonical
	// flag, or prefixBits.
	ErrIncompatibleInputs = errors.New("meryl: incompatible inputs")

	// ErrInvalidState means an API was used out of its allowed sequence,
	// e.g. a write after finish().
	ErrInvalidState = errors.New("meryl: invalid state")

	// ErrOutOfMemory means the CountArray memory budget was exceeded and
	// no bucket could be drained to relieve pressure.
	ErrOutOfMemory = errors.New("meryl: out of memory")

	// ErrInvalidPrefix means a block was handed to a file outside its
	// assigned prefix range.
	ErrInvalidPrefix = errors.New("meryl: prefix outside file range")

	// ErrUnsorted means a stream of k-mers fed to a sorted consumer arrived
	// out of order. Nothing in this module returns it: block.Writer and
	// merge.Engine do not check the order of their input.
	ErrUnsorted = errors.New("meryl: k-mers not in sorted order")
)
