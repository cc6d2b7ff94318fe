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
	"encoding/binary"
	"fmt"
)

// view is a length-checked, read-only window into a raw byte region. It never
// copies; every accessor bounds-checks the requested offset and width against
// the region length before touching memory, so a malformed or truncated
// record yields an error instead of a panic or an out-of-bounds read.
type view []byte

func (v view) need(off, n int) error {
	if off < 0 || n < 0 || off+n > len(v) {
		return fmt.Errorf("ntfs: field at offset %d (width %d) exceeds region of %d bytes", off, n, len(v))
	}
	return nil
}

func (v view) uint8At(off int) (uint8, error) {
	if err := v.need(off, 1); err != nil {
		return 0, err
	}
	return v[off], nil
}

func (v view) uint16At(off int) (uint16, error) {
	if err := v.need(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v[off:]), nil
}

func (v view) uint32At(off int) (uint32, error) {
	if err := v.need(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v[off:]), nil
}

func (v view) uint64At(off int) (uint64, error) {
	if err := v.need(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v[off:]), nil
}

func (v view) sliceAt(off, n int) (view, error) {
	if err := v.need(off, n); err != nil {
		return nil, err
	}
	return v[off : off+n], nil
}
