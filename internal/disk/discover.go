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
package disk

import "io"

// DiscoverNTFSPartitions reads the image's first sector as an MBR and
// returns every partition entry typed NTFS/HPFS/exFAT/QNX (0x07 — the byte
// is shared across that family; only the NTFS boot sector itself, decoded
// downstream, tells them apart). A GPT protective MBR yields a single
// partition spanning the protective entry's LBA range, since this package
// never parses the real GPT header. When no valid MBR is found at all, the
// whole image is returned as one partition, matching a bare NTFS-formatted
// volume image with no partition table.
func DiscoverNTFSPartitions(img io.ReaderAt, imgSize uint64) ([]Partition, error) {
	var firstSector [512]byte
	if _, err := img.ReadAt(firstSector[:], 0); err != nil {
		return nil, err
	}

	mbr, err := ParseMBR(firstSector[:])
	if err != nil {
		return []Partition{fullDiskPartition(imgSize)}, nil
	}

	if p := mbr.PartitionEntries[0]; p.PartitionType == PartitionTypeGPT {
		offset := uint64(p.ReadStartLBA()) * DefaultBlocksize
		size := uint64(p.ReadTotalSectors()) * DefaultBlocksize
		return []Partition{{
			FSType:    FSType(PartitionTypeNTFSHPFSexFATQNX),
			Num:       0,
			Offset:    offset,
			Size:      size,
			BlockSize: DefaultBlocksize,
		}}, nil
	}

	var partitions []Partition
	for n, p := range mbr.PartitionEntries {
		if p.PartitionType != PartitionTypeNTFSHPFSexFATQNX {
			continue
		}
		partitions = append(partitions, Partition{
			FSType:    FSType(PartitionTypeNTFSHPFSexFATQNX),
			Num:       n,
			Offset:    uint64(p.ReadStartLBA()) * DefaultBlocksize,
			Size:      uint64(p.ReadTotalSectors()) * DefaultBlocksize,
			BlockSize: DefaultBlocksize,
		})
	}
	if len(partitions) == 0 {
		return []Partition{fullDiskPartition(imgSize)}, nil
	}
	return partitions, nil
}

func fullDiskPartition(size uint64) Partition {
	return Partition{
		FSType:    FSType(PartitionTypeNTFSHPFSexFATQNX),
		Num:       0,
		Offset:    0,
		Size:      size,
		BlockSize: DefaultBlocksize,
	}
}
