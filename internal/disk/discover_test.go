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
package disk_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsdig/ntfsdig/internal/disk"
)

// putMBREntry writes one 16-byte partition table entry at index n of a
// 512-byte MBR sector.
func putMBREntry(sector []byte, n int, partType disk.MBRPartition, startLBA, totalSectors uint32) {
	off := 0x1BE + n*16
	sector[off] = 0x00 // not bootable
	sector[off+0x04] = byte(partType)
	binary.LittleEndian.PutUint32(sector[off+0x08:], startLBA)
	binary.LittleEndian.PutUint32(sector[off+0x0C:], totalSectors)
}

func TestDiscoverNTFSPartitionsFiltersNonNTFSEntries(t *testing.T) {
	sector := make([]byte, 512)
	putMBREntry(sector, 0, disk.PartitionTypeFAT32LBA, 2048, 204800)
	putMBREntry(sector, 1, disk.PartitionTypeNTFSHPFSexFATQNX, 206848, 409600)
	binary.LittleEndian.PutUint16(sector[0x1FE:], 0xAA55)

	partitions, err := disk.DiscoverNTFSPartitions(bytes.NewReader(sector), uint64(len(sector)))
	require.NoError(t, err)
	require.Len(t, partitions, 1)

	p := partitions[0]
	require.EqualValues(t, 206848*disk.DefaultBlocksize, p.Offset)
	require.EqualValues(t, 409600*disk.DefaultBlocksize, p.Size)
}

func TestDiscoverNTFSPartitionsFallsBackToWholeImageWithoutMBR(t *testing.T) {
	sector := make([]byte, 512) // no 0xAA55 signature: not a valid MBR

	partitions, err := disk.DiscoverNTFSPartitions(bytes.NewReader(sector), 1<<20)
	require.NoError(t, err)
	require.Len(t, partitions, 1)
	require.EqualValues(t, 0, partitions[0].Offset)
	require.EqualValues(t, 1<<20, partitions[0].Size)
}
