package ntfs_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsdig/ntfsdig/pkg/ntfs"
)

// The on-disk byte layouts below mirror production decoding exactly
// (boot sector fields, file-record header, attribute headers, $FILE_NAME
// value) and use 1024-byte file records, four per 4 KiB cluster, so a
// handful of clusters can hold a complete, walkable MFT.

const (
	testBytesPerSector   = 512
	testSectorsPerCluster = 8
	testBytesPerCluster  = testBytesPerSector * testSectorsPerCluster // 4096
	testClustersPerFileRecordRaw = 0xF6                               // -> 1024-byte records (power-of-two branch)
	testBytesPerFileRecord = 1024
	testMftStartLcn = 100

	flagInUse     = 0x0001
	flagDirectory = 0x0002
)

func buildBootSector(mftStartLcn uint64) []byte {
	b := make([]byte, 512)
	copy(b[3:11], "NTFS    ")
	binary.LittleEndian.PutUint16(b[11:], testBytesPerSector)
	b[13] = testSectorsPerCluster
	binary.LittleEndian.PutUint64(b[48:], mftStartLcn)
	binary.LittleEndian.PutUint32(b[64:], testClustersPerFileRecordRaw)
	return b
}

func putResidentAttr(buf []byte, off int, typ ntfs.AttributeType, value []byte) int {
	const headerLen = 24
	total := headerLen + len(value)
	binary.LittleEndian.PutUint32(buf[off:], uint32(typ))
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(total))
	buf[off+8] = 0
	binary.LittleEndian.PutUint32(buf[off+16:], uint32(len(value)))
	binary.LittleEndian.PutUint16(buf[off+20:], uint16(headerLen))
	copy(buf[off+headerLen:], value)
	return off + total
}

func putNonResidentDataAttr(buf []byte, off int, firstVCN, lastVCN, dataSize uint64, runArray []byte) int {
	const headerLen = 64
	total := headerLen + len(runArray)
	binary.LittleEndian.PutUint32(buf[off:], uint32(ntfs.AttrData))
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(total))
	buf[off+8] = 1
	binary.LittleEndian.PutUint64(buf[off+16:], firstVCN)
	binary.LittleEndian.PutUint64(buf[off+24:], lastVCN)
	binary.LittleEndian.PutUint16(buf[off+32:], headerLen) // run array offset
	binary.LittleEndian.PutUint64(buf[off+48:], dataSize)
	copy(buf[off+headerLen:], runArray)
	return off + total
}

func buildFileNameValue(parent uint64, name string, nameType ntfs.NameType, dataSize uint64) []byte {
	units := make([]uint16, 0, len(name))
	for _, r := range name {
		units = append(units, uint16(r))
	}
	buf := make([]byte, 66+len(units)*2)
	binary.LittleEndian.PutUint64(buf[0:], parent)
	binary.LittleEndian.PutUint64(buf[8:], 116444736000000000)
	binary.LittleEndian.PutUint64(buf[48:], dataSize)
	buf[64] = byte(len(units))
	buf[65] = byte(nameType)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[66+2*i:], u)
	}
	return buf
}

// buildFileRecord lays out one fixed-size MFT slot: header, whatever attrs
// writes starting at offset 56, and the 0xFFFFFFFF terminator. usaCount is
// fixed at 1 (USN word only) so no sector-trailer placeholder is needed.
func buildFileRecord(size int, recordID uint32, flags uint16, attrs func(buf []byte, off int) int) []byte {
	buf := make([]byte, size)
	copy(buf[0:4], "FILE")
	const usaOffset = 48
	const attributesOffset = 56
	binary.LittleEndian.PutUint16(buf[4:], usaOffset)
	binary.LittleEndian.PutUint16(buf[6:], 1)
	binary.LittleEndian.PutUint16(buf[20:], attributesOffset)
	binary.LittleEndian.PutUint16(buf[22:], flags)
	binary.LittleEndian.PutUint32(buf[28:], uint32(size))
	binary.LittleEndian.PutUint16(buf[40:], 8)
	binary.LittleEndian.PutUint32(buf[44:], recordID)

	off := attrs(buf, attributesOffset)
	binary.LittleEndian.PutUint32(buf[off:], 0xFFFFFFFF)
	off += 4

	binary.LittleEndian.PutUint32(buf[24:], uint32(off))
	return buf
}

func buildNamedRecord(recordID uint32, parent uint64, name string, size uint64, malformedUsa bool) []byte {
	rec := buildFileRecord(testBytesPerFileRecord, recordID, flagInUse, func(buf []byte, off int) int {
		return putResidentAttr(buf, off, ntfs.AttrFileName, buildFileNameValue(parent, name, ntfs.NameTypeWin32, size))
	})
	if malformedUsa {
		binary.LittleEndian.PutUint16(rec[6:], 6) // usa_count > 4, rejected by fix-up
	}
	return rec
}

// buildMftRecord0 builds MFT record #0 itself: a non-resident $DATA (the
// run list callers pass in directly) and a resident $BITMAP, so the
// locator can exercise both attributes it looks for (§4.2).
func buildMftRecord0(firstVCN, lastVCN, dataSize uint64, runArray []byte, bitmap []byte) []byte {
	return buildFileRecord(testBytesPerFileRecord, 0, flagInUse, func(buf []byte, off int) int {
		off = putNonResidentDataAttr(buf, off, firstVCN, lastVCN, dataSize, runArray)
		off = putResidentAttr(buf, off, ntfs.AttrBitmap, bitmap)
		return off
	})
}

// singleRunVolume builds fixture A/B: one real run of runClusters clusters
// starting at the MFT's own start LCN, holding 10 in-use named records
// (ids 1..10, parent 5, sizes 1000..1009) at slots 1..10. When
// malformedRecordID is nonzero, that one record's USA is corrupted.
func singleRunVolume(t *testing.T, runClusters int, malformedRecordID uint32) []byte {
	t.Helper()

	volSize := (testMftStartLcn + runClusters) * testBytesPerCluster
	vol := make([]byte, volSize)
	copy(vol, buildBootSector(testMftStartLcn))

	runArray := []byte{0x11, byte(runClusters), testMftStartLcn, 0x00} // L=1,O=1; count; delta=+100
	dataSize := uint64(runClusters) * testBytesPerCluster
	record0 := buildMftRecord0(0, uint64(runClusters-1), dataSize, runArray, []byte{0xFF, 0xFF, 0xFF, 0xFF})

	mftOff := testMftStartLcn * testBytesPerCluster
	copy(vol[mftOff:], record0)

	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for i, name := range names {
		id := uint32(i + 1)
		rec := buildNamedRecord(id, 5, name, uint64(1000+i), id == malformedRecordID)
		copy(vol[mftOff+int(id)*testBytesPerFileRecord:], rec)
	}
	return vol
}

func TestParserFixtureACountsAndDecodesAllInUseRecords(t *testing.T) {
	vol := singleRunVolume(t, 16, 0)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	defer p.Close()

	require.EqualValues(t, 16*4+16, p.Count())

	files, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, files, 10)
	for i, mf := range files {
		require.EqualValues(t, i+1, mf.ID)
		require.EqualValues(t, 5, mf.Parent)
		require.EqualValues(t, 1000+i, mf.Size)
		require.False(t, mf.Directory)
	}
	require.Equal(t, "A", files[0].Name)
	require.Equal(t, "J", files[9].Name)
}

func TestParserFixtureBSkipsMalformedUsaRecord(t *testing.T) {
	vol := singleRunVolume(t, 16, 5)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	defer p.Close()

	files, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, files, 9)
	for _, mf := range files {
		require.NotEqual(t, uint64(5), mf.ID)
	}

	stats := p.Stats()
	require.EqualValues(t, 64, stats.RecordsScanned) // 16 clusters * 4 records/cluster
	require.EqualValues(t, 9, stats.RecordsEmitted)
	// record 0 (no $FILE_NAME), malformed record 5, and empty slots 11..63
	require.EqualValues(t, 55, stats.RecordsSkipped)
}

func TestParserFixtureCSkipsSparseRunEmitsRealRun(t *testing.T) {
	const sparseClusters = 4
	const realClusters = 16
	const realRunLcn = 200

	volSize := (realRunLcn + realClusters) * testBytesPerCluster
	vol := make([]byte, volSize)
	copy(vol, buildBootSector(testMftStartLcn))

	// run 1: sparse, 4 clusters. run 2: real, 16 clusters at LCN 200 (delta
	// +200 needs a 2-byte offset field so the sign-extending top byte stays
	// 0x00).
	runArray := []byte{
		0x01, sparseClusters,
		0x21, realClusters, 0xC8, 0x00,
		0x00,
	}
	dataSize := uint64(sparseClusters+realClusters) * testBytesPerCluster
	record0 := buildMftRecord0(0, sparseClusters+realClusters-1, dataSize, runArray, nil)
	copy(vol[testMftStartLcn*testBytesPerCluster:], record0)

	realOff := realRunLcn * testBytesPerCluster
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for i, name := range names {
		id := uint32(i + 1)
		rec := buildNamedRecord(id, 5, name, uint64(1000+i), false)
		copy(vol[realOff+i*testBytesPerFileRecord:], rec)
	}

	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	defer p.Close()

	files, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, files, 10)

	stats := p.Stats()
	require.EqualValues(t, sparseClusters, stats.SparseClustersSkipped)
}

func TestParserBitmapAccessor(t *testing.T) {
	vol := singleRunVolume(t, 16, 0)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	defer p.Close()

	allocated, ok := p.Bitmap(3)
	require.True(t, ok)
	require.True(t, allocated)

	allocated, ok = p.Bitmap(10_000_000)
	require.True(t, ok) // in range for $BITMAP presence, just beyond the captured bytes
	require.False(t, allocated)
}

func TestParserReadBatchDrainsIncrementally(t *testing.T) {
	vol := singleRunVolume(t, 16, 0)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	defer p.Close()

	var got []ntfs.MftFile
	dst := make([]ntfs.MftFile, 3)
	for {
		n, more, err := p.ReadBatch(dst)
		require.NoError(t, err)
		got = append(got, dst[:n]...)
		if !more {
			break
		}
	}
	require.Len(t, got, 10)
}

func TestParserCloseIsIdempotent(t *testing.T) {
	vol := singleRunVolume(t, 16, 0)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.ReadAll()
	require.ErrorIs(t, err, ntfs.ErrClosed)
}

func TestParserWithDiagnosticsCollectsSkipReasons(t *testing.T) {
	vol := singleRunVolume(t, 16, 7)
	p, err := ntfs.OpenReaderAt(bytes.NewReader(vol), ntfs.WithDiagnostics(true))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.ReadAll()
	require.NoError(t, err)
	require.Error(t, p.Diagnostics())
}
