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

// Run is one entry of a decoded data-run list: count clusters starting at
// LCN, or a sparse run of count clusters with no backing storage.
type Run struct {
	LCN    uint64
	Count  uint64
	Sparse bool
}

// decodeDataRuns walks the run array of a non-resident attribute starting
// at offset within v, per §4.6. It stops at the 0x00 terminator byte or
// once the clusters read would reach clusterBudget, whichever comes first;
// clusterBudget is last_vcn-first_vcn+1, the contract the run list promises
// to satisfy.
func decodeDataRuns(v view, offset int, clusterBudget uint64) ([]Run, error) {
	var runs []Run
	var previousLCN int64
	var total uint64

	for total < clusterBudget {
		header, err := v.uint8At(offset)
		if err != nil {
			return nil, fmt.Errorf("%w: run header: %v", ErrShortRead, err)
		}
		if header == 0 {
			break
		}
		offset++

		lengthWidth := int(header & 0x0F)
		offsetWidth := int(header >> 4)

		countBytes, err := v.sliceAt(offset, lengthWidth)
		if err != nil {
			return nil, fmt.Errorf("%w: run count: %v", ErrShortRead, err)
		}
		offset += lengthWidth
		count := readUintLE(countBytes)

		sparse := offsetWidth == 0
		var absoluteLCN int64
		if sparse {
			absoluteLCN = 0
		} else {
			deltaBytes, err := v.sliceAt(offset, offsetWidth)
			if err != nil {
				return nil, fmt.Errorf("%w: run lcn delta: %v", ErrShortRead, err)
			}
			offset += offsetWidth
			lcnDelta := signExtendLE(deltaBytes)
			absoluteLCN = previousLCN + lcnDelta
			previousLCN = absoluteLCN
		}

		runs = append(runs, Run{LCN: uint64(absoluteLCN), Count: count, Sparse: sparse})
		total += count
	}

	return runs, nil
}

// readUintLE interprets b as an unsigned little-endian integer.
func readUintLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

// signExtendLE implements §4.6 step 3: the top (last) byte of the
// little-endian sequence is read as signed 8-bit, shifted into the high
// position, then OR-combined with the remaining low-order bytes.
func signExtendLE(b []byte) int64 {
	n := len(b)
	top := int64(int8(b[n-1]))
	v := top << (8 * (n - 1))
	for i := n - 2; i >= 0; i-- {
		v |= int64(b[i]) << (8 * i)
	}
	return v
}
