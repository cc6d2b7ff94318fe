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

// sectorSize is the fixed sector size the Update Sequence Array protects,
// independent of the volume's BytesPerSector field.
const sectorSize = 512

// maxUsaCount is the largest update-sequence-array length this parser will
// trust; anything larger marks the record malformed (§4.3).
const maxUsaCount = 4

// applyFixup patches the Update Sequence Array into record in place. The
// first USA word is the update-sequence number itself and is not applied;
// the remaining usaCount-1 words are written back over the last word of
// each 512-byte sector in the record, undoing the substitution NTFS makes
// on disk to detect torn multi-sector writes.
//
// Returns false if the record is malformed and must be skipped: usaCount
// exceeds maxUsaCount, or the USA itself doesn't fit inside the record.
func applyFixup(record []byte, usaOffset, usaCount uint16) bool {
	if usaCount > maxUsaCount {
		return false
	}
	usaEnd := int(usaOffset) + int(usaCount)*2
	if usaEnd > len(record) {
		return false
	}
	usa := record[usaOffset:usaEnd]

	for i := 1; i < int(usaCount); i++ {
		wordOffset := sectorSize*i - 2
		if wordOffset+2 > len(record) {
			return false
		}
		// No check that record[wordOffset:wordOffset+2] equalled the
		// update-sequence number prior to this overwrite; see DESIGN.md.
		copy(record[wordOffset:wordOffset+2], usa[i*2:i*2+2])
	}
	return true
}
