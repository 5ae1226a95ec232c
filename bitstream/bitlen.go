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

// These let a caller (e.g. block.Writer, choosing the smallest value-column
// encoding) estimate a code's length without writing it.

// EliasGammaBitLen returns the number of bits PutEliasGamma would emit for val.
func EliasGammaBitLen(val uint64) uint64 { return eliasGammaBitLen(val) }

// EliasDeltaBitLen returns the number of bits PutEliasDelta would emit for val.
func EliasDeltaBitLen(val uint64) uint64 { return eliasDeltaBitLen(val) }

// ZeckendorfBitLen returns the number of bits PutZeckendorf would emit for val.
func ZeckendorfBitLen(val uint64) uint64 { return zeckendorfBitLen(val) }

// BitWidth returns ceil(log2(val+1)), the width of a fixed-width field that
// can hold val (minimum 1).
func BitWidth(val uint64) int { return bitWidth(val) }

// Mask returns a siz-bit all-ones mask (siz >= 64 saturates to all 64 bits).
func Mask(siz uint64) uint64 { return mask(siz) }
