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
	"bytes"
	"math/rand"
	"testing"
)

func TestPutGetBitsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	type field struct {
		val uint64
		siz uint
	}
	var fields []field
	for i := 0; i < 5000; i++ {
		siz := uint(1 + rng.Intn(64))
		val := rng.Uint64() & mask(uint64(siz))
		fields = append(fields, field{val, siz})
		if err := w.PutBits(val, siz); err != nil {
			t.Fatalf("PutBits: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i, f := range fields {
		got, err := r.GetBits(f.siz)
		if err != nil {
			t.Fatalf("field %d: GetBits: %v", i, err)
		}
		if got != f.val {
			t.Fatalf("field %d: got %d, want %d (siz=%d)", i, got, f.val, f.siz)
		}
	}
}

func TestZeckendorfRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	values := []uint64{0, 1, 2, 3, 4, 5, 100, 1000, 1 << 20}
	for i := 0; i < 2000; i++ {
		values = append(values, rng.Uint64())
	}
	for _, v := range values {
		if err := w.PutZeckendorf(v); err != nil {
			t.Fatalf("PutZeckendorf(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i, v := range values {
		got, err := r.GetZeckendorf()
		if err != nil {
			t.Fatalf("value %d: GetZeckendorf: %v", i, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d, want %d", i, got, v)
		}
	}
}

func TestEliasGammaRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	values := []uint64{0, 1, 2, 3, 7, 8, 255, 256, 1 << 16, 1<<32 - 1}
	for _, v := range values {
		if err := w.PutEliasGamma(v); err != nil {
			t.Fatalf("PutEliasGamma(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i, v := range values {
		got, err := r.GetEliasGamma()
		if err != nil {
			t.Fatalf("value %d: GetEliasGamma: %v", i, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d, want %d", i, got, v)
		}
	}
}

func TestEliasDeltaRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	values := []uint64{0, 1, 2, 3, 7, 8, 255, 256, 1 << 16, 1 << 40, 1<<64 - 1}
	for _, v := range values {
		if err := w.PutEliasDelta(v); err != nil {
			t.Fatalf("PutEliasDelta(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i, v := range values {
		got, err := r.GetEliasDelta()
		if err != nil {
			t.Fatalf("value %d: GetEliasDelta: %v", i, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d, want %d", i, got, v)
		}
	}
}

func TestUnaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	values := []uint64{0, 1, 2, 5, 10, 63, 64, 65, 100}
	for _, v := range values {
		if err := w.PutUnary(v); err != nil {
			t.Fatalf("PutUnary(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i, v := range values {
		got, err := r.GetUnary()
		if err != nil {
			t.Fatalf("value %d: GetUnary: %v", i, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d, want %d", i, got, v)
		}
	}
}

func TestSeek(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 16)

	var positions []uint64
	var values []uint64
	for i := 0; i < 200; i++ {
		positions = append(positions, w.BitPosition())
		v := uint64(i * 97)
		values = append(values, v)
		if err := w.PutBits(v, 32); err != nil {
			t.Fatalf("PutBits: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 16)
	for i := len(positions) - 1; i >= 0; i-- {
		if err := r.Seek(positions[i]); err != nil {
			t.Fatalf("Seek(%d): %v", positions[i], err)
		}
		got, err := r.GetBits(32)
		if err != nil {
			t.Fatalf("after seek to record %d: GetBits: %v", i, err)
		}
		if got != values[i] {
			t.Fatalf("after seek to record %d: got %d, want %d", i, got, values[i])
		}
	}
}

func TestFlushAcrossBufferBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 4) // minimum buffer: forces flush() mid-stream
	rng := rand.New(rand.NewSource(99))

	var values []uint64
	for i := 0; i < 500; i++ {
		v := rng.Uint64()
		values = append(values, v)
		if err := w.PutBits(v, 64); err != nil {
			t.Fatalf("PutBits: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReaderSize(bytes.NewReader(buf.Bytes()), 4)
	for i, v := range values {
		got, err := r.GetBits(64)
		if err != nil {
			t.Fatalf("value %d: GetBits: %v", i, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d, want %d", i, got, v)
		}
	}
}

// TestTruncatedStreamReturnsError feeds each decoder a stream that ends
// before the code it's reading can terminate (an all-zero unary/Zeckendorf
// run with no closing 1 bit, and a field shorter than its declared width),
// and requires a graceful ErrCorruptData instead of a panic or an infinite
// loop.
func TestTruncatedStreamReturnsError(t *testing.T) {
	t.Run("GetBits", func(t *testing.T) {
		r := NewReaderSize(bytes.NewReader([]byte{0xff}), 4)
		if _, err := r.GetBits(64); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})

	t.Run("GetUnary", func(t *testing.T) {
		zeros := make([]byte, 64) // no 1 bit anywhere: unary never terminates
		r := NewReaderSize(bytes.NewReader(zeros), 4)
		if _, err := r.GetUnary(); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})

	t.Run("GetEliasGamma", func(t *testing.T) {
		zeros := make([]byte, 64)
		r := NewReaderSize(bytes.NewReader(zeros), 4)
		if _, err := r.GetEliasGamma(); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})

	t.Run("GetEliasDelta", func(t *testing.T) {
		zeros := make([]byte, 64)
		r := NewReaderSize(bytes.NewReader(zeros), 4)
		if _, err := r.GetEliasDelta(); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})

	t.Run("GetZeckendorf", func(t *testing.T) {
		zeros := make([]byte, 64)
		r := NewReaderSize(bytes.NewReader(zeros), 4)
		if _, err := r.GetZeckendorf(); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})

	t.Run("EmptyStream", func(t *testing.T) {
		r := NewReaderSize(bytes.NewReader(nil), 4)
		if _, err := r.GetBits(1); err != ErrCorruptData {
			t.Fatalf("got err=%v, want ErrCorruptData", err)
		}
	})
}
