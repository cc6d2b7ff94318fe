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

// Package csvreport renders a flat spreadsheet view of scanned MFT entries,
// alongside the primary DFXML report.
package csvreport

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// Row is one scanned MFT entry, tagged for gocsv's header/field mapping.
type Row struct {
	RecordID  uint64 `csv:"record_id"`
	ParentID  uint64 `csv:"parent_id"`
	Name      string `csv:"name"`
	Size      uint64 `csv:"size"`
	Directory bool   `csv:"directory"`
	Created   string `csv:"created"`
	Modified  string `csv:"modified"`
	Accessed  string `csv:"accessed"`
}

// MftFile is the subset of ntfs.MftFile a CSV row needs, mirrored here
// rather than importing pkg/ntfs, the same separation dfxml.MftFileObject
// uses.
type MftFile struct {
	ID        uint64
	Parent    uint64
	Name      string
	Size      uint64
	Created   int64
	Accessed  int64
	Modified  int64
	Directory bool
}

func toRow(f MftFile) Row {
	return Row{
		RecordID:  f.ID,
		ParentID:  f.Parent,
		Name:      f.Name,
		Size:      f.Size,
		Directory: f.Directory,
		Created:   formatUnix(f.Created),
		Modified:  formatUnix(f.Modified),
		Accessed:  formatUnix(f.Accessed),
	}
}

func formatUnix(s int64) string {
	if s == 0 {
		return ""
	}
	return time.Unix(s, 0).UTC().Format(time.RFC3339)
}

// Writer accumulates rows and flushes them as CSV on Close.
type Writer struct {
	w    io.Writer
	rows []Row
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Add appends one scanned file to the pending report.
func (r *Writer) Add(f MftFile) {
	r.rows = append(r.rows, toRow(f))
}

// Close marshals every accumulated row as CSV, header first.
func (r *Writer) Close() error {
	return gocsv.Marshal(&r.rows, r.w)
}
