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
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shenwei356/meryl/db"
)

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "print the value-frequency histogram stored in a database",
	Long: `print the value-frequency histogram stored in a database

`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("histogram takes exactly one database directory"))
		}

		r, err := db.Open(expandPath(args[0]))
		checkError(errors.Wrap(err, args[0]))
		defer r.Close()

		idx := r.Idx
		tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintf(tw, "value\tdistinct-kmers\n")
		for v, n := range idx.Histogram {
			if n == 0 {
				continue
			}
			fmt.Fprintf(tw, "%d\t%s\n", v, humanize.Comma(int64(n)))
		}
		if idx.HistogramHuge > 0 {
			fmt.Fprintf(tw, ">=64\t%s (value mass %s)\n",
				humanize.Comma(int64(idx.HistogramHuge)), humanize.Comma(int64(idx.HistogramMax)))
		}
		tw.Flush()

		fmt.Printf("\nK=%d  distinct=%s  unique=%s  total=%s  multiset=%v\n",
			idx.K,
			humanize.Comma(int64(idx.NumDistinct)),
			humanize.Comma(int64(idx.NumUnique)),
			humanize.Comma(int64(idx.NumTotal)),
			idx.Multiset)
	},
}

func init() {
	RootCmd.AddCommand(histogramCmd)
}
