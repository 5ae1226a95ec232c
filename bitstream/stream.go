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

import (
	"bufio"
	"encoding/binary"
	"io"
)

// defaultBufferWords mirrors bitPackedFile's BUFFER_SIZE (1MB worth of
// 64-bit words). A Zeckendorf code needs at most 93 bits (two words), so
// flush()/fill() keep a 2-word margin at all times.
const defaultBufferWords = 1048576 / 8

const minBufferWords = 4

// Writer packs unary, Elias-gamma, Elias-delta and Zeckendorf codes (plus
// raw fixed-width fields) MSB-first into consecutive 64-bit words, buffering
// them in memory and flushing full words out to an io.Writer as they fill.
type Writer struct {
	w        io.Writer
	buf      []uint64
	bufWords uint64
	bit      uint64 // bit offset into buf of the next unwritten bit
	total    uint64 // total bits ever written, across flushes
}

// NewWriter returns a Writer with the default buffer size.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, defaultBufferWords)
}

// NewWriterSize returns a Writer with a caller-chosen word buffer size (at
// least 4 words, to leave headroom for the longest supported code).
func NewWriterSize(w io.Writer, bufWords int) *Writer {
	if bufWords < minBufferWords {
		bufWords = minBufferWords
	}
	return &Writer{
		w:        w,
		buf:      make([]uint64, bufWords),
		bufWords: uint64(bufWords),
	}
}

// flush writes out every complete word before the one holding the next
// unwritten bit, then slides the partially written word (and the zeroed
// words after it) to the front.
func (s *Writer) flush() error {
	done := s.bit >> 6
	if done == 0 {
		return nil
	}
	if err := binary.Write(s.w, binary.BigEndian, s.buf[:done]); err != nil {
		return err
	}
	copy(s.buf, s.buf[done:])
	for i := s.bufWords - done; i < s.bufWords; i++ {
		s.buf[i] = 0
	}
	s.bit -= done * 64
	return nil
}

func (s *Writer) ensureRoom(siz uint64) error {
	if (s.bit+siz)>>6 >= s.bufWords-2 {
		return s.flush()
	}
	return nil
}

// BitPosition returns the number of bits written so far.
func (s *Writer) BitPosition() uint64 { return s.total }

// PutBits writes the low siz bits of val (0 <= siz <= 64).
func (s *Writer) PutBits(val uint64, siz uint) error {
	if err := s.ensureRoom(uint64(siz)); err != nil {
		return err
	}
	setDecodedValue(s.buf, s.bit, uint64(siz), val)
	s.bit += uint64(siz)
	s.total += uint64(siz)
	return nil
}

// PutUnary writes val as val zero bits followed by a 1 bit.
func (s *Writer) PutUnary(val uint64) error {
	if err := s.ensureRoom(val + 1); err != nil {
		return err
	}
	n := putUnary(s.buf, s.bit, val)
	s.bit += n
	s.total += n
	return nil
}

// PutEliasGamma writes val Elias-gamma-coded.
func (s *Writer) PutEliasGamma(val uint64) error {
	if err := s.ensureRoom(eliasGammaBitLen(val)); err != nil {
		return err
	}
	n := putEliasGamma(s.buf, s.bit, val)
	s.bit += n
	s.total += n
	return nil
}

// PutEliasDelta writes val Elias-delta-coded.
func (s *Writer) PutEliasDelta(val uint64) error {
	if err := s.ensureRoom(eliasDeltaBitLen(val)); err != nil {
		return err
	}
	n := putEliasDelta(s.buf, s.bit, val)
	s.bit += n
	s.total += n
	return nil
}

// PutZeckendorf writes val Fibonacci/Zeckendorf-coded.
func (s *Writer) PutZeckendorf(val uint64) error {
	if err := s.ensureRoom(zeckendorfBitLen(val) + 64); err != nil {
		return err
	}
	n := setZeckendorf(s.buf, s.bit, val)
	s.bit += n
	s.total += n
	return nil
}

// Flush writes out every word touched so far (the last word is zero-padded
// in its low bits) and resets the in-memory buffer. Call this, not PutBits,
// when the stream is done.
func (s *Writer) Flush() error {
	numWords := (s.bit + 63) / 64
	if numWords > 0 {
		if err := binary.Write(s.w, binary.BigEndian, s.buf[:numWords]); err != nil {
			return err
		}
	}
	for i := uint64(0); i < s.bufWords; i++ {
		s.buf[i] = 0
	}
	s.bit = 0
	return nil
}

// Reader unpacks codes written by Writer, reading from an io.Reader (and,
// when Seek is used, an io.Seeker backing the same data).
type Reader struct {
	r         *bufio.Reader
	src       io.ReadSeeker // non-nil only if the underlying reader supports Seek
	buf       []uint64
	bufWords  uint64
	bit       uint64 // read position within buf
	filled    uint64 // number of valid bits currently in buf (>= bit, may be < bufWords*64 near EOF)
	wordBase  uint64 // absolute bit offset of buf[0] in the logical stream
}

// NewReader returns a Reader with the default buffer size.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultBufferWords)
}

// NewReaderSize returns a Reader with a caller-chosen word buffer size.
func NewReaderSize(r io.Reader, bufWords int) *Reader {
	if bufWords < minBufferWords {
		bufWords = minBufferWords
	}
	s := &Reader{
		r:        bufio.NewReaderSize(r, bufWords*8),
		buf:      make([]uint64, bufWords),
		bufWords: uint64(bufWords),
	}
	if rs, ok := r.(io.ReadSeeker); ok {
		s.src = rs
	}
	s.fill()
	return s
}

// fill slides any unread words in buf to the front and reads more words in
// behind them, mirroring bitPackedFileReader::fill().
func (s *Reader) fill() {
	readWords := s.bit >> 6
	remainingBits := s.filled - readWords*64
	remainingWords := remainingBits / 64
	if remainingBits%64 != 0 {
		remainingWords++
	}
	copy(s.buf, s.buf[readWords:readWords+remainingWords])
	s.wordBase += readWords * 64
	s.bit -= readWords * 64
	s.filled = remainingWords * 64

	for i := remainingWords; i < s.bufWords; i++ {
		var word uint64
		if err := binary.Read(s.r, binary.BigEndian, &word); err != nil {
			s.buf[i] = 0
			continue
		}
		s.buf[i] = word
		s.filled += 64
	}
}

// bitCursor implements bitSource against a Reader's current read position,
// refilling the Reader's buffer on demand. n is always relative to the
// Reader's s.bit at the moment of the decode call, so a fill() mid-decode
// (which slides s.bit and wordBase together) never invalidates it.
type bitCursor struct{ s *Reader }

func (c bitCursor) bit(n uint64) (uint64, error) {
	return c.bits(n, 1)
}

func (c bitCursor) bits(n, siz uint64) (uint64, error) {
	if n > maxCodeBits {
		return 0, ErrCorruptData
	}
	s := c.s
	if s.bit+n+siz > s.filled {
		s.fill()
		if s.bit+n+siz > s.filled {
			return 0, ErrCorruptData
		}
	}
	return getDecodedValue(s.buf, s.bit+n, siz)
}

// BitPosition returns the absolute bit offset of the next unread bit.
func (s *Reader) BitPosition() uint64 { return s.wordBase + s.bit }

// Seek repositions the reader to bitPos. It requires the underlying reader
// to support io.Seeker.
func (s *Reader) Seek(bitPos uint64) error {
	if s.src == nil {
		return ErrNotSeekable
	}
	wordIdx := bitPos / 64
	if _, err := s.src.Seek(int64(wordIdx)*8, io.SeekStart); err != nil {
		return err
	}
	s.r.Reset(s.src)
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.bit = 0
	s.filled = 0
	s.wordBase = wordIdx * 64
	s.fill()
	s.bit = bitPos - s.wordBase
	return nil
}

// GetBits reads a fixed-width siz-bit field (0 <= siz <= 64), returning
// ErrCorruptData if the stream ends before siz bits are available.
func (s *Reader) GetBits(siz uint) (uint64, error) {
	val, err := (bitCursor{s}).bits(0, uint64(siz))
	if err != nil {
		return 0, err
	}
	s.bit += uint64(siz)
	return val, nil
}

// GetUnary reads a unary-coded value, returning ErrCorruptData instead of
// running past the end of the stream if no terminating 1 bit appears.
func (s *Reader) GetUnary() (uint64, error) {
	val, n, err := getUnary(bitCursor{s})
	if err != nil {
		return 0, err
	}
	s.bit += n
	return val, nil
}

// GetEliasGamma reads an Elias-gamma-coded value.
func (s *Reader) GetEliasGamma() (uint64, error) {
	val, n, err := getEliasGamma(bitCursor{s})
	if err != nil {
		return 0, err
	}
	s.bit += n
	return val, nil
}

// GetEliasDelta reads an Elias-delta-coded value.
func (s *Reader) GetEliasDelta() (uint64, error) {
	val, n, err := getEliasDelta(bitCursor{s})
	if err != nil {
		return 0, err
	}
	s.bit += n
	return val, nil
}

// GetZeckendorf reads a Fibonacci/Zeckendorf-coded value.
func (s *Reader) GetZeckendorf() (uint64, error) {
	val, n, err := getZeckendorf(bitCursor{s})
	if err != nil {
		return 0, err
	}
	s.bit += n
	return val, nil
}
