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

// Package cmd implements the meryl command-line verb set: count, merge,
// intersect, dump and histogram, each a thin cobra layer over the core
// bitstream/countarray/block/db/merge packages, plus compress/decompress
// for archiving a database directory.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// VERSION is reported by the root command's long help text.
const VERSION = "0.1.0"

// RootCmd is the base command when meryl is invoked without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "meryl",
	Short: "k-mer counting and persistent k-mer database engine",
	Long: fmt.Sprintf(`meryl - k-mer counting and persistent k-mer database engine

Counts k-mers from FASTA/FASTQ input into a prefix-partitioned, bit-packed
on-disk database, and merges/queries/dumps such databases.

Version: %s

`, VERSION),
}

// Execute runs the CLI; each child command registers itself with RootCmd in
// its own file's init. Called once from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 4 {
		defaultThreads = 4
	}
	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "print progress information")
}
