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

import "fmt"

// BootSectorSize is the canonical size of an NTFS boot sector. Readers should
// request exactly this many bytes; decodeBootSector itself only requires
// enough of the slice to reach the fields it actually touches.
const BootSectorSize = 512

// VolumeParams holds the per-volume geometry derived once at Open, per the
// fields laid out in the boot sector's BIOS Parameter Block.
type VolumeParams struct {
	BytesPerSector        uint16
	SectorsPerCluster     uint8
	MftStartLcn           uint64
	ClustersPerFileRecord int32

	BytesPerCluster    uint64
	BytesPerFileRecord uint64
	MftStartByte       uint64
}

// decodeBootSector parses sector 0 into VolumeParams. data is the raw bytes
// read from sector 0 of the volume; per §4.1 the decoder does not assume
// more than what was actually returned by the read.
func decodeBootSector(data []byte) (*VolumeParams, error) {
	v := view(data)

	oem, err := v.sliceAt(3, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: boot sector: %v", ErrShortRead, err)
	}
	if string(oem[:4]) != "NTFS" {
		return nil, ErrNotNTFS
	}

	bytesPerSector, err := v.uint16At(11)
	if err != nil {
		return nil, fmt.Errorf("%w: boot sector: %v", ErrShortRead, err)
	}
	sectorsPerCluster, err := v.uint8At(13)
	if err != nil {
		return nil, fmt.Errorf("%w: boot sector: %v", ErrShortRead, err)
	}
	mftStartLcn, err := v.uint64At(48)
	if err != nil {
		return nil, fmt.Errorf("%w: boot sector: %v", ErrShortRead, err)
	}
	clustersPerFileRecordRaw, err := v.uint32At(64)
	if err != nil {
		return nil, fmt.Errorf("%w: boot sector: %v", ErrShortRead, err)
	}

	p := &VolumeParams{
		BytesPerSector:        bytesPerSector,
		SectorsPerCluster:     sectorsPerCluster,
		MftStartLcn:           mftStartLcn,
		ClustersPerFileRecord: int32(clustersPerFileRecordRaw),
	}

	p.BytesPerCluster = uint64(bytesPerSector) * uint64(sectorsPerCluster)

	// Signed-magnitude encoding: below 0x80 it's a cluster count, at or
	// above it's a negative power-of-two byte count.
	if clustersPerFileRecordRaw < 0x80 {
		p.BytesPerFileRecord = uint64(clustersPerFileRecordRaw) * p.BytesPerCluster
	} else {
		p.BytesPerFileRecord = uint64(1) << (0x100 - clustersPerFileRecordRaw)
	}

	p.MftStartByte = mftStartLcn * p.BytesPerCluster
	return p, nil
}
