package ntfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildResidentAttribute writes one resident attribute header + value at
// off within buf, returning the offset just past it.
func buildResidentAttribute(buf []byte, off int, typ AttributeType, value []byte) int {
	const headerLen = 24 // common(16) + value_length(4) + value_offset(2) + indexed(1) + pad(1)
	total := headerLen + len(value)
	binary.LittleEndian.PutUint32(buf[off:], uint32(typ))
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(total))
	buf[off+8] = 0 // resident
	binary.LittleEndian.PutUint32(buf[off+16:], uint32(len(value)))
	binary.LittleEndian.PutUint16(buf[off+20:], uint16(headerLen))
	copy(buf[off+headerLen:], value)
	return off + total
}

func TestAttributeIteratorStopsAtTerminator(t *testing.T) {
	buf := make([]byte, 256)
	off := buildResidentAttribute(buf, 0, AttrStandardInformation, []byte{1, 2, 3, 4})
	off = buildResidentAttribute(buf, off, AttrFileName, []byte("abc"))
	binary.LittleEndian.PutUint32(buf[off:], uint32(attrTerminator))

	it := newAttributeIterator(view(buf), 0, uint32(len(buf)), 8)

	hdr, ok := it.next()
	require.True(t, ok)
	require.Equal(t, AttrStandardInformation, hdr.Type)

	hdr, ok = it.next()
	require.True(t, ok)
	require.Equal(t, AttrFileName, hdr.Type)

	_, ok = it.next()
	require.False(t, ok)
}

func TestAttributeIteratorRespectsMaxCount(t *testing.T) {
	buf := make([]byte, 512)
	off := 0
	for i := 0; i < 5; i++ {
		off = buildResidentAttribute(buf, off, AttrData, []byte{byte(i)})
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(attrTerminator))

	it := newAttributeIterator(view(buf), 0, uint32(len(buf)), 3)
	count := 0
	for {
		_, ok := it.next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 3, count)
}

func TestResidentValueRoundTrip(t *testing.T) {
	buf := make([]byte, 128)
	buildResidentAttribute(buf, 0, AttrFileName, []byte("payload"))
	hdr, err := decodeAttributeHeader(view(buf), 0)
	require.NoError(t, err)

	val, err := hdr.residentValue()
	require.NoError(t, err)
	require.Equal(t, "payload", string(val))
}
