// Copyright (c) 2025 Stefano Scafiti
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

// Command mftdump prints a quick summary of an NTFS volume's boot sector
// and its first few decoded MFT records, for eyeballing a volume without
// running a full scan.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/ntfsdig/ntfsdig/pkg/ntfs"
)

type rootParameters struct {
	Filepath string `short:"f" long:"filepath" description:"Path to the NTFS volume or disk image" required:"true"`
	Limit    int    `short:"n" long:"limit" description:"Maximum number of records to print" default:"20"`
}

var rootArguments = new(rootParameters)

func main() {
	p := flags.NewParser(rootArguments, flags.Default)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}

	if err := run(rootArguments); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args *rootParameters) error {
	parser, err := ntfs.Open(args.Filepath)
	if err != nil {
		return err
	}
	defer parser.Close()

	fmt.Printf("MFT record slots: %d\n\n", parser.Count())

	buf := make([]ntfs.MftFile, args.Limit)
	n, _, err := parser.ReadBatch(buf)
	if err != nil {
		return err
	}

	for _, f := range buf[:n] {
		kind := "file"
		if f.Directory {
			kind = "dir "
		}
		fmt.Printf("%-5s id=%-8d parent=%-8d size=%-10d %s\n", kind, f.ID, f.Parent, f.Size, f.Name)
	}

	stats := parser.Stats()
	fmt.Printf("\nscanned=%d emitted=%d skipped=%d\n", stats.RecordsScanned, stats.RecordsEmitted, stats.RecordsSkipped)
	return nil
}
