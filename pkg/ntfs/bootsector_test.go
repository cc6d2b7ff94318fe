package ntfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildBootSector(bytesPerSector uint16, sectorsPerCluster uint8, mftStartLcn uint64, clustersPerFileRecord uint32) []byte {
	b := make([]byte, BootSectorSize)
	copy(b[3:11], "NTFS    ")
	binary.LittleEndian.PutUint16(b[11:], bytesPerSector)
	b[13] = sectorsPerCluster
	binary.LittleEndian.PutUint64(b[48:], mftStartLcn)
	binary.LittleEndian.PutUint32(b[64:], clustersPerFileRecord)
	return b
}

func TestDecodeBootSectorSmallFileRecord(t *testing.T) {
	data := buildBootSector(512, 8, 100, 2)
	p, err := decodeBootSector(data)
	require.NoError(t, err)
	require.EqualValues(t, 4096, p.BytesPerCluster)
	require.EqualValues(t, 8192, p.BytesPerFileRecord)
	require.EqualValues(t, 100*4096, p.MftStartByte)
}

func TestDecodeBootSectorPowerOfTwoFileRecord(t *testing.T) {
	data := buildBootSector(512, 8, 100, 0xF6)
	p, err := decodeBootSector(data)
	require.NoError(t, err)
	require.EqualValues(t, 1024, p.BytesPerFileRecord)
}

func TestDecodeBootSectorRejectsNonNTFS(t *testing.T) {
	data := buildBootSector(512, 8, 100, 2)
	copy(data[3:11], "FAT32   ")
	_, err := decodeBootSector(data)
	require.ErrorIs(t, err, ErrNotNTFS)
}

func TestDecodeBootSectorShortRead(t *testing.T) {
	_, err := decodeBootSector(make([]byte, 10))
	require.ErrorIs(t, err, ErrShortRead)
}
