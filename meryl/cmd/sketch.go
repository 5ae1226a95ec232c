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

package cmd

import (
	"io"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/will-rowe/nthash"
)

// sketchSampleValueHint runs a cheap ntHash pass over the first input file to
// estimate the per-bucket value width CountArray.InitializeValues should
// start at, instead of every bucket starting at width 1 and widening on the
// fly. It puts every k-mer into one of 1<<prefixBits buckets by the top
// prefixBits bits of its canonical ntHash value (the real run buckets by the
// k-mer code's own prefix instead), and returns the average number of
// k-mers landing in each bucket actually touched -- a coarse hint, not a
// bound: CountArray still widens a bucket if an actual run exceeds it.
func sketchSampleValueHint(file string, k int, prefixBits uint) (uint64, error) {
	r, err := fastx.NewDefaultReader(file)
	if err != nil {
		return 1, err
	}

	shift := uint(64) - prefixBits
	touched := make(map[uint64]struct{})
	var total uint64

	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 1, err
		}
		if len(record.Seq.Seq) < k {
			continue
		}
		seq := record.Seq.Seq
		hasher, err := nthash.NewHasher(&seq, uint(k))
		if err != nil {
			continue
		}
		for {
			code, ok := hasher.Next(true)
			if !ok {
				break
			}
			touched[code>>shift] = struct{}{}
			total++
		}
	}

	if len(touched) == 0 {
		return 1, nil
	}
	hint := total / uint64(len(touched))
	if hint < 1 {
		hint = 1
	}
	return hint, nil
}
