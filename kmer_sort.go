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

// CodeSlice attaches sort.Interface to a []Code, ordering by 2-bit code
// (Hi first, then Lo).
type CodeSlice []Code

func (s CodeSlice) Len() int           { return len(s) }
func (s CodeSlice) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s CodeSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// KmerCodeSlice attaches sort.Interface to a []KmerCode.
type KmerCodeSlice []KmerCode

func (s KmerCodeSlice) Len() int           { return len(s) }
func (s KmerCodeSlice) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s KmerCodeSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// CodeCount pairs a Code with an accumulated count.
type CodeCount struct {
	Code  Code
	Count uint64
}

// CodeCountSlice attaches sort.Interface to a []CodeCount, ordering by Code
// only (Count is payload, not sort key). CountArray does not use it: it
// sorts its own parallel suffix/value slices (countarray's sortable).
type CodeCountSlice []CodeCount

func (s CodeCountSlice) Len() int           { return len(s) }
func (s CodeCountSlice) Less(i, j int) bool { return s[i].Code.Less(s[j].Code) }
func (s CodeCountSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
