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
	"bufio"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	meryl "github.com/shenwei356/meryl"
	"github.com/shenwei356/meryl/db"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "dump a database's k-mers and values as tab-delimited text",
	Long: `dump a database's k-mers and values as tab-delimited text

`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("dump takes exactly one database directory"))
		}

		r, err := db.Open(expandPath(args[0]))
		checkError(errors.Wrap(err, args[0]))
		defer r.Close()

		k := int(r.Idx.K)
		prefixBits := uint(r.Idx.PrefixBits)

		outFile := getFlagString(cmd, "output")
		if outFile == "" {
			outFile = "-"
		}
		// xopen transparently gzips the output when outFile ends in .gz,
		// the same convention unikmer's own dump verb uses.
		out, err := xopen.Wopen(expandPath(outFile))
		checkError(errors.Wrap(err, outFile))
		defer out.Close()
		bw := bufio.NewWriter(out)
		defer bw.Flush()

		err = r.Stream(func(prefix, suffix, value uint64) error {
			code := meryl.JoinCode(prefix, suffix, k, prefixBits)
			_, werr := fmt.Fprintf(bw, "%s\t%d\n", meryl.Decode(code, k), value)
			return werr
		})
		checkError(err)
	},
}

func init() {
	RootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringP("output", "o", "-", "output file, \"-\" for stdout")
}
