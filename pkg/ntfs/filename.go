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

import "unicode/utf16"

// NameType classifies a $FILE_NAME value's namespace.
type NameType uint8

const (
	NameTypePosix      NameType = 0
	NameTypeWin32      NameType = 1
	NameTypeDOS        NameType = 2
	NameTypeWin32AndDOS NameType = 3
)

const fileNameValueMinSize = 66 // through NameLength/NameType, before the name itself

// windowsToUnixEpochTicks is the number of 100ns ticks between the
// Windows FILETIME epoch (1601-01-01) and the Unix epoch (1970-01-01).
const windowsToUnixEpochTicks = 116444736000000000

// fileName is the decoded value of a resident $FILE_NAME attribute (§3).
type fileName struct {
	Parent        uint64 // low 48 bits of parent_directory_reference
	Created       int64  // windows-epoch ticks, raw
	Changed       int64
	Written       int64
	Accessed      int64
	AllocatedSize uint64
	DataSize      uint64
	NameType      NameType
	Name          string
}

// decodeFileName parses a resident $FILE_NAME value per §3. Returns an
// error only on truncation; an empty decoded Name is a valid outcome left
// for the caller to reject.
func decodeFileName(v view) (*fileName, error) {
	if err := v.need(0, fileNameValueMinSize); err != nil {
		return nil, err
	}

	parentRef, err := v.uint64At(0)
	if err != nil {
		return nil, err
	}
	created, err := v.uint64At(8)
	if err != nil {
		return nil, err
	}
	changed, err := v.uint64At(16)
	if err != nil {
		return nil, err
	}
	written, err := v.uint64At(24)
	if err != nil {
		return nil, err
	}
	accessed, err := v.uint64At(32)
	if err != nil {
		return nil, err
	}
	allocatedSize, err := v.uint64At(40)
	if err != nil {
		return nil, err
	}
	dataSize, err := v.uint64At(48)
	if err != nil {
		return nil, err
	}
	// offset 56: flags (u32), offset 60: reparse tag / eas length (u32) — unused by this parser.
	nameLength, err := v.uint8At(64)
	if err != nil {
		return nil, err
	}
	nameType, err := v.uint8At(65)
	if err != nil {
		return nil, err
	}

	nameBytes, err := v.sliceAt(66, int(nameLength)*2)
	if err != nil {
		return nil, err
	}

	return &fileName{
		Parent:        parentRef & 0x0000_FFFF_FFFF_FFFF,
		Created:       int64(created),
		Changed:       int64(changed),
		Written:       int64(written),
		Accessed:      int64(accessed),
		AllocatedSize: allocatedSize,
		DataSize:      dataSize,
		NameType:      NameType(nameType),
		Name:          decodeUTF16Name(nameBytes),
	}, nil
}

func decodeUTF16Name(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}

// windowsTicksToUnix converts a 100ns-tick Windows FILETIME value to Unix
// epoch seconds, per §4.7: zero maps to epoch zero, and any negative result
// (a tick value predating the Unix epoch) clamps to zero rather than
// going negative.
func windowsTicksToUnix(ticks int64) int64 {
	if ticks == 0 {
		return 0
	}
	unix := (ticks - windowsToUnixEpochTicks) / 10_000_000
	if unix < 0 {
		return 0
	}
	return unix
}
