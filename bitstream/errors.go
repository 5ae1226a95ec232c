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

import "errors"

// ErrNotSeekable is returned by Reader.Seek when the underlying io.Reader
// does not also implement io.Seeker.
var ErrNotSeekable = errors.New("bitstream: underlying reader is not seekable")

// ErrCorruptData is returned by any Get* method when the stream ends (or a
// prefix-free code runs past maxCodeBits) before the code it's decoding
// terminates. Mirrored, not imported, by the meryl and db packages' own
// ErrCorruptData and the block package's ErrCorruptBlock, the same way countarray mirrors its
// sentinel errors instead of importing the root package.
var ErrCorruptData = errors.New("bitstream: corrupt or truncated data")
