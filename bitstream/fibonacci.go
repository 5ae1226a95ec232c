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

// fibonacciValues[i] holds the (i+2)'th Fibonacci number (F(2)=1, F(3)=2,
// F(4)=3, F(5)=5, ...): Zeckendorf coding represents a value as a sum of
// non-consecutive entries of this table, terminated by two consecutive set
// bits. 92 entries is enough to represent any 64-bit value (stored as
// val+1, since Zeckendorf codes can't represent zero).
var fibonacciValues [92]uint64

func init() {
	fibonacciValues[0] = 1
	fibonacciValues[1] = 2
	for i := 2; i < len(fibonacciValues); i++ {
		fibonacciValues[i] = fibonacciValues[i-1] + fibonacciValues[i-2]
	}
}

// zeckendorfBitLen returns the number of bits setZeckendorf would emit for val.
func zeckendorfBitLen(val uint64) uint64 {
	val++
	var fibmax uint64
	fib := len(fibonacciValues)
	for fib > 0 {
		fib--
		if val >= fibonacciValues[fib] {
			val -= fibonacciValues[fib]
			if fibmax == 0 {
				fibmax = uint64(fib) + 1
			}
		}
	}
	return fibmax + 1
}

// setZeckendorf encodes val (any uint64, including 0) into ptr starting at
// bit pos, MSB-first, terminated by two consecutive set bits, and returns
// the number of bits written. ptr must have room for the word straddled by
// pos plus the returned length.
func setZeckendorf(ptr []uint64, pos, val uint64) uint64 {
	val++

	var out1, out2 uint64
	var fibmax uint64
	fib := len(fibonacciValues)

	for fib > 0 {
		fib--
		if val >= fibonacciValues[fib] {
			if fib >= 64 {
				out2 |= 1 << uint(127-fib)
			} else {
				out1 |= 1 << uint(63-fib)
			}

			val -= fibonacciValues[fib]

			if fibmax == 0 {
				fibmax = uint64(fib) + 1
				if fibmax >= 64 {
					out2 |= 1 << uint(127-fibmax)
				} else {
					out1 |= 1 << uint(63-fibmax)
				}
			}
		}
	}

	fibmax++

	if fibmax > 64 {
		setDecodedValue(ptr, pos, 64, out1)
		out2 >>= 128 - fibmax
		setDecodedValue(ptr, pos+64, fibmax-64, out2)
	} else {
		out1 >>= 64 - fibmax
		setDecodedValue(ptr, pos, fibmax, out1)
	}

	return fibmax
}

// getZeckendorf decodes a Zeckendorf-coded value and returns it plus the
// number of bits consumed. It returns ErrCorruptData if the terminating pair
// of set bits never appears within len(fibonacciValues) digits, or if b runs
// out of data first.
func getZeckendorf(b bitSource) (uint64, uint64, error) {
	var val uint64
	var fib uint64

	oldbit, err := b.bit(0)
	if err != nil {
		return 0, 0, err
	}
	newbit, err := b.bit(1)
	if err != nil {
		return 0, 0, err
	}
	pos := uint64(2)

	for oldbit == 0 || newbit == 0 {
		if fib >= uint64(len(fibonacciValues)) {
			return 0, 0, ErrCorruptData
		}
		if oldbit != 0 {
			val += fibonacciValues[fib]
		}
		fib++
		oldbit = newbit
		newbit, err = b.bit(pos)
		if err != nil {
			return 0, 0, err
		}
		pos++
	}

	if fib >= uint64(len(fibonacciValues)) {
		return 0, 0, ErrCorruptData
	}
	val += fibonacciValues[fib]

	return val - 1, fib + 2, nil
}
