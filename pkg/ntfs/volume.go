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
package ntfs

import (
	"fmt"
	"io"

	"github.com/ntfsdig/ntfsdig/internal/disk"
	"github.com/ntfsdig/ntfsdig/internal/fs"
)

// volume is the core's only I/O dependency: positioned reads of whole
// sectors/clusters from a raw block device or disk image, per §2.2. It
// wraps internal/fs.File so the same core works against a live \\.\C:
// handle on Windows, a plain file on POSIX, or any other io.ReaderAt the
// caller supplies (an in-memory fixture in tests, a mmap-backed image).
type volume struct {
	r      io.ReaderAt
	closer io.Closer
}

// openVolume opens path as a raw volume handle through internal/fs.
func openVolume(path string) (*volume, error) {
	f, err := fs.Open(disk.NormalizeVolumePath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVolumeOpenFailed, err)
	}
	return &volume{r: f, closer: f}, nil
}

// newVolumeFromReaderAt adapts an already-open io.ReaderAt (a test
// fixture, an internal/mmap.MmapFile) as a volume without requiring a
// path-based open.
func newVolumeFromReaderAt(r io.ReaderAt) *volume {
	closer, _ := r.(io.Closer)
	return &volume{r: r, closer: closer}
}

// readAt reads exactly len(buf) bytes at off, or returns ErrShortRead.
func (v *volume) readAt(buf []byte, off int64) error {
	n, err := v.r.ReadAt(buf, off)
	if n < len(buf) {
		if err != nil && err != io.EOF {
			return fmt.Errorf("%w: %v", ErrShortRead, err)
		}
		return ErrShortRead
	}
	return nil
}

func (v *volume) close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer.Close()
}
