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
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// compressCmd and decompressCmd pack/unpack a whole database directory (the
// merylIndex file plus every *.data file) into a single gzip-compressed tar
// stream, beside the binary layout rather than inside it -- a finished
// database is never decoded while compressed, only archived for transfer or
// cold storage.
var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "pack a database directory into a single gzip-compressed archive",
	Long: `pack a database directory into a single gzip-compressed archive

`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("compress takes exactly one database directory"))
		}
		dir := expandPath(args[0])
		outFile := getFlagString(cmd, "output")
		if outFile == "" {
			outFile = dir + ".tar.gz"
		}

		entries, err := os.ReadDir(dir)
		checkError(errors.Wrap(err, dir))

		f, err := os.Create(expandPath(outFile))
		checkError(errors.Wrap(err, outFile))
		defer f.Close()

		gw := gzip.NewWriter(f)
		defer gw.Close()
		tw := tar.NewWriter(gw)
		defer tw.Close()

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := addFileToArchive(tw, dir, entry.Name()); err != nil {
				checkError(errors.Wrap(err, entry.Name()))
			}
		}
	},
}

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "unpack a database archive produced by compress",
	Long: `unpack a database archive produced by compress

`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("decompress takes exactly one archive file"))
		}
		archive := expandPath(args[0])
		outDir := getFlagString(cmd, "output")
		if outDir == "" {
			outDir = deriveOutputDir(archive)
		} else {
			outDir = expandPath(outDir)
		}
		checkError(errors.Wrap(os.MkdirAll(outDir, 0755), outDir))

		f, err := os.Open(archive)
		checkError(errors.Wrap(err, archive))
		defer f.Close()

		gr, err := gzip.NewReader(f)
		checkError(errors.Wrap(err, archive))
		defer gr.Close()

		tr := tar.NewReader(gr)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			checkError(errors.Wrap(err, archive))

			out, err := os.Create(filepath.Join(outDir, filepath.Base(hdr.Name)))
			checkError(errors.Wrap(err, hdr.Name))
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				checkError(errors.Wrap(err, hdr.Name))
			}
			out.Close()
		}
	},
}

func addFileToArchive(tw *tar.Writer, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// deriveOutputDir strips a trailing ".tar.gz", ".tgz" or ".gz" from an
// archive path to guess its extraction directory when --output isn't given,
// or appends ".out" when the path has none of those suffixes.
func deriveOutputDir(path string) string {
	for _, suffix := range []string{".tar.gz", ".tgz", ".gz"} {
		if len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix {
			return path[:len(path)-len(suffix)]
		}
	}
	return path + ".out"
}

func init() {
	RootCmd.AddCommand(compressCmd)
	RootCmd.AddCommand(decompressCmd)

	compressCmd.Flags().StringP("output", "o", "", "output archive path (default: <dir>.tar.gz)")
	decompressCmd.Flags().StringP("output", "o", "", "output directory (default: derived from archive name)")
}
