package ntfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowsTicksToUnixEpochAnchors(t *testing.T) {
	require.EqualValues(t, 0, windowsTicksToUnix(116444736000000000))
	require.EqualValues(t, 0, windowsTicksToUnix(0))
}

func TestWindowsTicksToUnixClampsNegative(t *testing.T) {
	require.EqualValues(t, 0, windowsTicksToUnix(1))
}

func buildFileNameValue(parentRef uint64, name string, nameType NameType, dataSize uint64) []byte {
	nameUTF16 := make([]uint16, 0, len(name))
	for _, r := range name {
		nameUTF16 = append(nameUTF16, uint16(r))
	}

	buf := make([]byte, 66+len(nameUTF16)*2)
	binary.LittleEndian.PutUint64(buf[0:], parentRef)
	binary.LittleEndian.PutUint64(buf[8:], 116444736000000000) // created == epoch
	binary.LittleEndian.PutUint64(buf[48:], dataSize)
	buf[64] = byte(len(nameUTF16))
	buf[65] = byte(nameType)
	for i, u := range nameUTF16 {
		binary.LittleEndian.PutUint16(buf[66+2*i:], u)
	}
	return buf
}

func TestDecodeFileNameParentMasking(t *testing.T) {
	buf := buildFileNameValue(0x0005000000000024, "hello", NameTypeWin32, 12345)
	fn, err := decodeFileName(view(buf))
	require.NoError(t, err)
	require.EqualValues(t, 0x24, fn.Parent)
	require.Equal(t, "hello", fn.Name)
	require.EqualValues(t, 12345, fn.DataSize)
}

func TestDecodeFileNameTruncatedErrors(t *testing.T) {
	_, err := decodeFileName(view(make([]byte, 10)))
	require.Error(t, err)
}
