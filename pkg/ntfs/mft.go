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

	bitmaplib "github.com/boljen/go-bitmap"
)

// mftLocation is everything the streaming parser needs to walk the MFT
// itself, derived once from MFT record 0 (§4.2).
type mftLocation struct {
	runs          []Run
	recordCount   uint64
	bitmap        []byte // raw $BITMAP value, presence-gated only (§4.2)
}

// findAttribute runs the bounded attribute search §4.4 describes for the
// MFT locator: terminator-authoritative iteration capped at
// min(8, next_attribute_number).
func findAttribute(r *fileRecord, typ AttributeType) (*AttributeHeader, bool) {
	limit := int(r.nextAttributeNumber)
	if limit > 8 {
		limit = 8
	}
	it := newAttributeIterator(r.data, int(r.attributesOffset), r.bytesInUse, limit)
	for {
		hdr, ok := it.next()
		if !ok {
			return nil, false
		}
		if hdr.Type == typ {
			return hdr, true
		}
	}
}

// locateMFT parses record #0 of the MFT (already read into cluster, the
// MFT's own first cluster) and resolves its $DATA and $BITMAP attributes.
func locateMFT(cluster []byte, params *VolumeParams) (*mftLocation, error) {
	if uint64(len(cluster)) < params.BytesPerFileRecord {
		return nil, fmt.Errorf("%w: mft record 0", ErrShortRead)
	}
	record := make([]byte, params.BytesPerFileRecord)
	copy(record, cluster[:params.BytesPerFileRecord])

	raw, ok := parseFileRecord(record)
	if !ok {
		return nil, ErrMftUnreadable
	}
	if !applyFixup(record, raw.usaOffset, raw.usaCount) {
		return nil, ErrMftUnreadable
	}
	// Re-parse: applyFixup mutated record in place, but the header fields
	// read before fix-up (offsets outside the USA-touched words) are
	// unaffected; re-parsing keeps the view backed by the fixed-up bytes.
	raw, ok = parseFileRecord(record)
	if !ok {
		return nil, ErrMftUnreadable
	}

	dataAttr, ok := findAttribute(raw, AttrData)
	if !ok || !dataAttr.NonResident {
		return nil, ErrMftAttributesMissing
	}
	bitmapAttr, ok := findAttribute(raw, AttrBitmap)
	if !ok {
		return nil, ErrMftAttributesMissing
	}

	dataInfo, err := dataAttr.nonResident()
	if err != nil {
		return nil, fmt.Errorf("%w: mft $DATA: %v", ErrMftAttributesMissing, err)
	}

	clusterBudget := dataInfo.LastVCN - dataInfo.FirstVCN + 1
	runs, err := decodeDataRuns(dataAttr.base, int(dataInfo.RunArrayOffset), clusterBudget)
	if err != nil {
		return nil, err
	}

	recordCount := dataInfo.DataSize / params.BytesPerFileRecord

	loc := &mftLocation{
		runs:        runs,
		recordCount: recordCount,
	}

	// $BITMAP's presence is the gate (§4.2); its content is only exposed
	// through the opt-in Bitmap() accessor below when it happens to be
	// resident, never consumed by the core walk itself.
	if !bitmapAttr.NonResident {
		if raw, err := bitmapAttr.residentValue(); err == nil {
			loc.bitmap = append([]byte(nil), raw...)
		}
	}

	return loc, nil
}

// bitmapAt reports whether bit i of a raw $BITMAP value is set, using
// go-bitmap's byte-slice-backed Bitmap rather than hand-rolled shifting.
func bitmapAt(raw []byte, i int) bool {
	if raw == nil {
		return false
	}
	bm := bitmaplib.Bitmap(raw)
	if i < 0 || i >= bm.Len() {
		return false
	}
	return bm.Get(i)
}
