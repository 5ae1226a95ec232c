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

import (
	"math/rand"
	"testing"
)

func TestSplitJoinCodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 2000; trial++ {
		k := 1 + rng.Intn(64)
		prefixBits := uint(rng.Intn(8))
		total := uint(2 * k)
		if prefixBits > total {
			prefixBits = total
		}
		if total-prefixBits > 64 {
			continue
		}

		var hi, lo uint64
		if k > 32 {
			lo = rng.Uint64()
			hi = rng.Uint64() & maskBits(uint(2*(k-32)))
		} else {
			lo = rng.Uint64() & maskBits(uint(2*k))
		}
		c := Code{Hi: hi, Lo: lo}

		prefix, suffix, err := SplitCode(c, k, prefixBits)
		if err != nil {
			t.Fatalf("SplitCode: %v", err)
		}
		got := JoinCode(prefix, suffix, k, prefixBits)
		if got != c {
			t.Fatalf("k=%d prefixBits=%d: got %+v, want %+v", k, prefixBits, got, c)
		}
	}
}

func TestSplitCodeRejectsOversizedSuffix(t *testing.T) {
	if _, _, err := SplitCode(Code{}, 64, 0); err != ErrKOverflow {
		t.Fatalf("got %v, want ErrKOverflow", err)
	}
}
