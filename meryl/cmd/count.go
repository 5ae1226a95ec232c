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
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"

	meryl "github.com/shenwei356/meryl"
	"github.com/shenwei356/meryl/countarray"
	"github.com/shenwei356/meryl/db"
)

const filesBits = 6 // 64 data files per database, fixed (spec.md 3)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "count k-mers from FASTA/FASTQ files into a database directory",
	Long: `count k-mers from FASTA/FASTQ files into a database directory

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)
		seq.ValidateSeq = false

		k := getFlagPositiveInt(cmd, "kmer-len")
		if k > 64 {
			checkError(meryl.ErrKOverflow)
		}
		blocksBits := getFlagInt(cmd, "blocks-bits")
		if blocksBits < 0 {
			checkError(fmt.Errorf("--blocks-bits must be >= 0"))
		}
		multiset := getFlagBool(cmd, "multiset")
		outDir := expandPath(getFlagString(cmd, "output"))
		memBudget := int64(getFlagPositiveInt(cmd, "mem-budget-mb")) << 20

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one input file required"))
		}

		prefixBits := uint(filesBits + blocksBits)
		suffixBits := uint(2*k) - prefixBits

		enc, err := meryl.NewEncoder(k)
		checkError(err)

		writer, err := db.Create(outDir, uint64(k), uint32(prefixBits), uint32(suffixBits), filesBits, uint32(blocksBits), multiset)
		checkError(errors.Wrap(err, outDir))

		ca := countarray.New()
		ca.Initialize(1<<prefixBits, suffixBits)
		ca.EnableMultiSet(multiset)

		if getFlagBool(cmd, "presize") {
			hint, serr := sketchSampleValueHint(args[0], k, prefixBits)
			if serr != nil {
				checkError(errors.Wrap(serr, args[0]))
			}
			if opt.Verbose {
				log.Infof("presize sketch of %s: starting value hint at %d", args[0], hint)
			}
			ca.InitializeValues(hint)
		}
		ca.SetMemoryBudget(memBudget, func(prefix int) error {
			if _, err := ca.DumpCountedKmers(prefix, writer); err != nil {
				return err
			}
			ca.RemoveCountedKmers(prefix)
			return nil
		})

		var record *fastx.Record
		var fastxReader *fastx.Reader
		for _, file := range args {
			if opt.Verbose {
				log.Infof("counting k-mers in %s", file)
			}
			fastxReader, err = fastx.NewDefaultReader(file)
			checkError(errors.Wrap(err, file))
			for {
				record, err = fastxReader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(errors.Wrap(err, file))
					break
				}

				enc.Reset()
				for _, b := range record.Seq.Seq {
					ok, aerr := enc.AddBase(b)
					if !ok || aerr != nil {
						enc.Reset()
						continue
					}
					if !enc.HasKmer() {
						continue
					}
					kc := enc.Canonical()
					prefix, suffix, serr := meryl.SplitCode(kc.Code, k, prefixBits)
					checkError(serr)
					checkError(ca.Add(int(prefix), suffix))
				}
			}
		}

		for prefix := 0; prefix < 1<<prefixBits; prefix++ {
			if ca.BucketLen(prefix) == 0 {
				continue
			}
			if _, err := ca.DumpCountedKmers(prefix, writer); err != nil {
				checkError(err)
			}
			ca.RemoveCountedKmers(prefix)
		}

		checkError(writer.Finish())

		if opt.Verbose {
			log.Infof("wrote %s distinct k-mers (%s total) to %s",
				humanize.Comma(int64(writer.Stats().NumDistinct)),
				humanize.Comma(int64(writer.Stats().NumTotal)),
				outDir)
		}
	},
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().IntP("kmer-len", "k", 21, "k-mer length (1-64)")
	countCmd.Flags().IntP("blocks-bits", "b", 4, "log2 of blocks per data file, on top of the fixed 64 files")
	countCmd.Flags().StringP("output", "o", "", "output database directory")
	countCmd.Flags().BoolP("multiset", "M", false, "keep duplicate k-mers as separate entries instead of summing counts")
	countCmd.Flags().IntP("mem-budget-mb", "m", 1024, "approximate in-memory accumulator budget, in MiB")
	countCmd.Flags().Bool("presize", false, "ntHash-sketch the first input file to pre-size the value accumulator")
}
