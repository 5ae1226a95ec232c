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
	"bytes"
	"math/rand"
	"testing"
)

// TestEliasFanoSplit mirrors spec scenario S3: suffixes=[0,1,5,6,7,31],
// suffixBits=5, N=6 -> unaryBits=3, binaryBits=2.
func TestEliasFanoSplit(t *testing.T) {
	unaryBits, binaryBits := unaryBinarySplit(6, 5)
	if unaryBits != 3 || binaryBits != 2 {
		t.Fatalf("got unaryBits=%d binaryBits=%d, want 3,2", unaryBits, binaryBits)
	}
}

func TestWriteReadBlockRoundTrip(t *testing.T) {
	suffixBits := 5
	suffixes := []uint64{0, 1, 5, 6, 7, 31}
	values := []uint64{1, 2, 1, 1, 3, 7}

	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	offset, err := w.WriteBlock(42, suffixes, values, suffixBits)
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if offset != 0 {
		t.Fatalf("got offset %d, want 0", offset)
	}

	dec, err := Read(bytes.NewReader(buf.Bytes()), suffixBits)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dec.Header.Prefix != 42 {
		t.Fatalf("got prefix %d, want 42", dec.Header.Prefix)
	}
	if dec.Header.N != uint64(len(suffixes)) {
		t.Fatalf("got N %d, want %d", dec.Header.N, len(suffixes))
	}
	for i, s := range suffixes {
		if dec.Suffixes[i] != s {
			t.Fatalf("suffix %d: got %d, want %d", i, dec.Suffixes[i], s)
		}
		if dec.Values[i] != values[i] {
			t.Fatalf("value %d: got %d, want %d", i, dec.Values[i], values[i])
		}
	}
}

func TestWriteReadBlockRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	suffixBits := 20

	n := 300
	seen := map[uint64]bool{}
	var suffixes []uint64
	for len(suffixes) < n {
		v := uint64(rng.Intn(1 << uint(suffixBits)))
		if seen[v] {
			continue
		}
		seen[v] = true
		suffixes = append(suffixes, v)
	}
	sortUint64s(suffixes)

	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(rng.Intn(1000))
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, 0)
	if _, err := w.WriteBlock(7, suffixes, values, suffixBits); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	dec, err := Read(bytes.NewReader(buf.Bytes()), suffixBits)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range suffixes {
		if dec.Suffixes[i] != suffixes[i] || dec.Values[i] != values[i] {
			t.Fatalf("entry %d: got (%d,%d), want (%d,%d)", i, dec.Suffixes[i], dec.Values[i], suffixes[i], values[i])
		}
	}
}

// TestReadTruncatedBlock feeds Read the first half of a well-formed block
// (for this small block the cut falls inside the header's fixed fields),
// and a header whose N wildly exceeds what suffixBits can represent. Both
// must come back as ErrCorruptBlock, never a panic.
func TestReadTruncatedBlock(t *testing.T) {
	t.Run("TruncatedHalf", func(t *testing.T) {
		suffixBits := 5
		suffixes := []uint64{0, 1, 5, 6, 7, 31}
		values := []uint64{1, 2, 1, 1, 3, 7}

		var buf bytes.Buffer
		w := NewWriter(&buf, 0)
		if _, err := w.WriteBlock(42, suffixes, values, suffixBits); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}

		full := buf.Bytes()
		truncated := full[:len(full)/2]
		if _, err := Read(bytes.NewReader(truncated), suffixBits); err != ErrCorruptBlock {
			t.Fatalf("got err=%v, want ErrCorruptBlock", err)
		}
	})

	t.Run("ImplausibleN", func(t *testing.T) {
		suffixBits := 5
		suffixes := []uint64{0, 1, 5, 6, 7, 31}
		values := []uint64{1, 2, 1, 1, 3, 7}

		var buf bytes.Buffer
		w := NewWriter(&buf, 0)
		if _, err := w.WriteBlock(42, suffixes, values, suffixBits); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}

		// Corrupt the N field (the first 64-bit word after the 128-bit
		// magic and the 64-bit Prefix field) to a value no 5-bit suffix
		// space could hold.
		raw := buf.Bytes()
		binaryPutUint64(raw[24:32], ^uint64(0))

		if _, err := Read(bytes.NewReader(raw), suffixBits); err != ErrCorruptBlock {
			t.Fatalf("got err=%v, want ErrCorruptBlock", err)
		}
	})
}

func binaryPutUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v)
		v >>= 8
	}
}

func sortUint64s(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
