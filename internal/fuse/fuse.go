//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// Entry is one MFT record surfaced as a flat directory listing: metadata
// only, no byte content. The FUSE tree here is a forensic index, not a
// reconstruction of the original directory hierarchy (§4.11 — NTFS data
// runs aren't resolved into file bytes by this tool).
type Entry struct {
	Name      string
	RecordID  uint64
	Parent    uint64
	Size      uint64
	Directory bool
	Modified  time.Time
}

// MftFS presents every in-use, named MFT record as a read-only entry in a
// single flat directory, keyed by name.
type MftFS struct {
	mtx     sync.RWMutex
	entries map[string]Entry

	mountpoint string
}

func (fs *MftFS) Root() (fs.Node, error) {
	return &Dir{fs: fs}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *MftFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.RLock()
	e, ok := d.fs.entries[name]
	d.fs.mtx.RUnlock()
	if !ok {
		return nil, fuse.ENOENT
	}
	return File{entry: e}, nil
}

func (d Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	i := 0
	dirEntries := make([]fuse.Dirent, len(d.fs.entries))
	for _, e := range d.fs.entries {
		typ := fuse.DT_File
		if e.Directory {
			typ = fuse.DT_Dir
		}
		dirEntries[i] = fuse.Dirent{
			Inode: e.RecordID,
			Name:  e.Name,
			Type:  typ,
		}
		i++
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	return dirEntries, nil
}

// File exposes one MFT record's metadata. Read always fails: this mount
// indexes records carved straight from the MFT, it never resolves a
// $DATA attribute's data runs into file content.
type File struct {
	entry Entry
}

func (f File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.entry.RecordID
	if f.entry.Directory {
		a.Mode = os.ModeDir | 0555
	} else {
		a.Mode = 0444
	}
	a.Size = f.entry.Size
	a.Mtime = f.entry.Modified
	return nil
}

func (f File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	return fuse.ENOSYS
}
