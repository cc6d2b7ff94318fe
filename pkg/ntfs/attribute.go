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

// AttributeType is the 32-bit attribute type code found in every attribute
// header. Only the terminator (0xFFFFFFFF) ends attribute iteration; other
// values, known or not, are yielded as they are.
type AttributeType uint32

const (
	AttrStandardInformation AttributeType = 0x10
	AttrAttributeList       AttributeType = 0x20
	AttrFileName            AttributeType = 0x30
	AttrObjectID            AttributeType = 0x40
	AttrSecurityDescriptor  AttributeType = 0x50
	AttrVolumeName          AttributeType = 0x60
	AttrVolumeInformation   AttributeType = 0x70
	AttrData                AttributeType = 0x80
	AttrIndexRoot           AttributeType = 0x90
	AttrIndexAllocation     AttributeType = 0xA0
	AttrBitmap              AttributeType = 0xB0
	AttrReparsePoint        AttributeType = 0xC0
	AttrEAInformation       AttributeType = 0xD0
	AttrEA                  AttributeType = 0xE0
	AttrPropertySet         AttributeType = 0xF0
	AttrLoggedUtilityStream AttributeType = 0x100

	firstAttributeType AttributeType = AttrStandardInformation
	lastAttributeType  AttributeType = AttrLoggedUtilityStream
	attrTerminator     AttributeType = 0xFFFFFFFF
)

const (
	fileRecordMagic          = "FILE"
	fileRecordHeaderMinSize  = 48
	attributeCommonHeaderLen = 16
	nonResidentHeaderLen     = 64 // common header + fields through InitializedSize

	fileRecordFlagInUse     uint16 = 0x0001
	fileRecordFlagDirectory uint16 = 0x0002
)

// fileRecord is a read-only view of one fixed-size MFT slot, after fix-up.
type fileRecord struct {
	data                view
	usaOffset, usaCount  uint16
	attributesOffset     uint16
	flags                uint16
	bytesInUse           uint32
	bytesAllocated       uint32
	nextAttributeNumber  uint16
	recordID             uint32
}

// parseFileRecord reads the fixed-offset fields of a file record header
// (§6) without applying fix-up; callers apply fix-up to the raw slot first.
func parseFileRecord(data []byte) (*fileRecord, bool) {
	v := view(data)
	if len(v) < 4 || string(v[:4]) != fileRecordMagic {
		return nil, false
	}
	usaOffset, err := v.uint16At(4)
	if err != nil {
		return nil, false
	}
	usaCount, err := v.uint16At(6)
	if err != nil {
		return nil, false
	}
	attributesOffset, err := v.uint16At(20)
	if err != nil {
		return nil, false
	}
	flags, err := v.uint16At(22)
	if err != nil {
		return nil, false
	}
	bytesInUse, err := v.uint32At(24)
	if err != nil {
		return nil, false
	}
	bytesAllocated, err := v.uint32At(28)
	if err != nil {
		return nil, false
	}
	nextAttributeNumber, err := v.uint16At(40)
	if err != nil {
		return nil, false
	}
	recordID, err := v.uint32At(44)
	if err != nil {
		return nil, false
	}

	return &fileRecord{
		data:                v,
		usaOffset:           usaOffset,
		usaCount:            usaCount,
		attributesOffset:    attributesOffset,
		flags:               flags,
		bytesInUse:          bytesInUse,
		bytesAllocated:      bytesAllocated,
		nextAttributeNumber: nextAttributeNumber,
		recordID:            recordID,
	}, true
}

func (r *fileRecord) inUse() bool     { return r.flags&fileRecordFlagInUse != 0 }
func (r *fileRecord) directory() bool { return r.flags&fileRecordFlagDirectory != 0 }

// AttributeHeader is the common prefix shared by resident and non-resident
// attributes, plus a bounded view of the attribute's own bytes for value
// decoding.
type AttributeHeader struct {
	Type            AttributeType
	Length          uint32
	NonResident     bool
	NameLength      uint8
	NameOffset      uint16
	Flags           uint16
	AttributeNumber uint16

	base view
}

func decodeAttributeHeader(record view, offset int) (*AttributeHeader, error) {
	typ, err := record.uint32At(offset + 0)
	if err != nil {
		return nil, err
	}
	length, err := record.uint32At(offset + 4)
	if err != nil {
		return nil, err
	}
	nonResident, err := record.uint8At(offset + 8)
	if err != nil {
		return nil, err
	}
	nameLength, err := record.uint8At(offset + 9)
	if err != nil {
		return nil, err
	}
	nameOffset, err := record.uint16At(offset + 10)
	if err != nil {
		return nil, err
	}
	flags, err := record.uint16At(offset + 12)
	if err != nil {
		return nil, err
	}
	attributeNumber, err := record.uint16At(offset + 14)
	if err != nil {
		return nil, err
	}

	// base runs from the attribute's start to the end of the record; value
	// decoders bound their own reads against Length/ValueLength.
	base, err := record.sliceAt(offset, len(record)-offset)
	if err != nil {
		return nil, err
	}

	return &AttributeHeader{
		Type:            AttributeType(typ),
		Length:          length,
		NonResident:     nonResident != 0,
		NameLength:      nameLength,
		NameOffset:      nameOffset,
		Flags:           flags,
		AttributeNumber: attributeNumber,
		base:            base,
	}, nil
}

// attributeIterator walks the attribute stream inside one file record,
// implementing the advance rule of §4.4: advance by Length when it's
// strictly between 0 and bytesInUse; fall back to the non-resident header
// size for broken non-resident attributes; otherwise stop. The terminator
// type is authoritative and is checked before each attribute is decoded.
type attributeIterator struct {
	record     view
	bytesInUse uint32
	offset     int
	maxCount   int
	yielded    int
	done       bool
}

// newAttributeIterator bounds iteration to maxCount attributes, a defensive
// cap derived from next_attribute_number (§4.4's "outer safety cap").
func newAttributeIterator(record view, attributesOffset int, bytesInUse uint32, maxCount int) *attributeIterator {
	return &attributeIterator{
		record:     record,
		bytesInUse: bytesInUse,
		offset:     attributesOffset,
		maxCount:   maxCount,
	}
}

func (it *attributeIterator) next() (*AttributeHeader, bool) {
	if it.done || it.yielded >= it.maxCount {
		return nil, false
	}
	if it.offset < 0 || uint32(it.offset) >= it.bytesInUse || it.offset+4 > len(it.record) {
		it.done = true
		return nil, false
	}

	typ, err := it.record.uint32At(it.offset)
	if err != nil || AttributeType(typ) == attrTerminator {
		it.done = true
		return nil, false
	}

	hdr, err := decodeAttributeHeader(it.record, it.offset)
	if err != nil {
		it.done = true
		return nil, false
	}
	it.yielded++

	switch {
	case hdr.Length > 0 && hdr.Length < it.bytesInUse:
		it.offset += int(hdr.Length)
	case hdr.NonResident:
		it.offset += nonResidentHeaderLen
	default:
		it.done = true
	}

	return hdr, true
}

// residentValue returns the value bytes of a resident attribute, or an
// error if the attribute is non-resident or the value doesn't fit.
func (h *AttributeHeader) residentValue() (view, error) {
	if h.NonResident {
		return nil, fmt.Errorf("ntfs: attribute type 0x%X is non-resident", h.Type)
	}
	valueLength, err := h.base.uint32At(16)
	if err != nil {
		return nil, err
	}
	valueOffset, err := h.base.uint16At(20)
	if err != nil {
		return nil, err
	}
	return h.base.sliceAt(int(valueOffset), int(valueLength))
}

// nonResidentInfo decodes the non-resident extension fields (§3).
type nonResidentInfo struct {
	FirstVCN         uint64
	LastVCN          uint64
	RunArrayOffset   uint16
	CompressionUnit  uint16
	AllocatedSize    uint64
	DataSize         uint64
	InitializedSize  uint64
}

func (h *AttributeHeader) nonResident() (*nonResidentInfo, error) {
	if !h.NonResident {
		return nil, fmt.Errorf("ntfs: attribute type 0x%X is resident", h.Type)
	}
	firstVCN, err := h.base.uint64At(16)
	if err != nil {
		return nil, err
	}
	lastVCN, err := h.base.uint64At(24)
	if err != nil {
		return nil, err
	}
	runArrayOffset, err := h.base.uint16At(32)
	if err != nil {
		return nil, err
	}
	compressionUnit, err := h.base.uint16At(34)
	if err != nil {
		return nil, err
	}
	allocatedSize, err := h.base.uint64At(40)
	if err != nil {
		return nil, err
	}
	dataSize, err := h.base.uint64At(48)
	if err != nil {
		return nil, err
	}
	initializedSize, err := h.base.uint64At(56)
	if err != nil {
		return nil, err
	}
	return &nonResidentInfo{
		FirstVCN:        firstVCN,
		LastVCN:         lastVCN,
		RunArrayOffset:  runArrayOffset,
		CompressionUnit: compressionUnit,
		AllocatedSize:   allocatedSize,
		DataSize:        dataSize,
		InitializedSize: initializedSize,
	}, nil
}
