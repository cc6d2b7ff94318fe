package ntfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFixupIdempotentWhenWordsAlreadyMatch(t *testing.T) {
	record := make([]byte, sectorSize*2)
	usn := []byte{0xAB, 0xCD}
	usa1 := []byte{0x11, 0x22}
	usa2 := []byte{0x33, 0x44}

	const usaOffset = 48
	copy(record[usaOffset:], usn)
	copy(record[usaOffset+2:], usa1)
	copy(record[usaOffset+4:], usa2)
	copy(record[sectorSize-2:sectorSize], usa1)
	copy(record[2*sectorSize-2:2*sectorSize], usa2)

	before := append([]byte(nil), record...)
	ok := applyFixup(record, usaOffset, 3)
	require.True(t, ok)
	require.Equal(t, before, record)
}

func TestApplyFixupOverwritesSectorTrailers(t *testing.T) {
	record := make([]byte, sectorSize*2)
	const usaOffset = 48
	copy(record[usaOffset:], []byte{0xAB, 0xCD, 0x11, 0x22, 0x33, 0x44})
	// sector trailers start out holding the update-sequence number, as NTFS
	// writes it on disk.
	copy(record[sectorSize-2:sectorSize], []byte{0xAB, 0xCD})
	copy(record[2*sectorSize-2:2*sectorSize], []byte{0xAB, 0xCD})

	ok := applyFixup(record, usaOffset, 3)
	require.True(t, ok)
	require.Equal(t, []byte{0x11, 0x22}, record[sectorSize-2:sectorSize])
	require.Equal(t, []byte{0x33, 0x44}, record[2*sectorSize-2:2*sectorSize])
}

func TestApplyFixupRejectsOversizedUsaCount(t *testing.T) {
	record := make([]byte, sectorSize*6)
	ok := applyFixup(record, 48, 6)
	require.False(t, ok)
}
