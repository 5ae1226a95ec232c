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
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shenwei356/meryl/db"
	"github.com/shenwei356/meryl/merge"
)

// operatorByName maps meryl-merge.C's --operator flag values onto the
// MergeEngine reducers (SPEC_FULL.md's supplemented merylOp feature).
var operatorByName = map[string]merge.Reducer{
	"sum":      merge.SumReducer,
	"min":      merge.MinReducer,
	"max":      merge.MaxReducer,
	"subtract": merge.SubtractReducer,
	"and":      merge.AndReducer,
	"or":       merge.OrReducer,
	"xor":      merge.XorReducer,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "merge two or more k-mer databases with a chosen reducer",
	Long: `merge two or more k-mer databases with a chosen reducer

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		_ = opt

		if len(args) < 2 {
			checkError(fmt.Errorf("merge requires at least two input databases and an -o/--output"))
		}

		opName := getFlagString(cmd, "operator")
		reducer, ok := operatorByName[opName]
		if !ok {
			checkError(fmt.Errorf("unknown --operator %q (want one of sum|min|max|and|or|xor|subtract)", opName))
		}
		outDir := expandPath(getFlagString(cmd, "output"))

		var readers []*db.Reader
		for _, dir := range args {
			r, err := db.Open(expandPath(dir))
			checkError(errors.Wrap(err, dir))
			readers = append(readers, r)
			defer r.Close()
		}

		engine, err := merge.New(readers, reducer)
		checkError(err)

		first := readers[0].Idx
		w, err := db.Create(outDir, first.K, first.PrefixBits, first.SuffixBits, first.FilesBits, first.BlocksBits, first.Multiset)
		checkError(errors.Wrap(err, outDir))

		n, err := merge.WriteAll(engine, w, int(first.SuffixBits))
		checkError(err)
		checkError(w.Finish())

		if opt.Verbose {
			log.Infof("merged %s databases with operator %q into %s (%s distinct k-mers)",
				humanize.Comma(int64(len(args))), opName, outDir, humanize.Comma(n))
		}
	},
}

func init() {
	RootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringP("operator", "p", "sum", "reducer: sum|min|max|and|or|xor|subtract")
	mergeCmd.Flags().StringP("output", "o", "", "output database directory")
}
