package ntfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDataRunsPositiveDelta(t *testing.T) {
	// header 0x21: L=1 (low nibble), O=2 (high nibble).
	raw := []byte{0x21, 0x10, 0x11, 0x22, 0x00}
	runs, err := decodeDataRuns(view(raw), 0, 0x10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.EqualValues(t, 0x10, runs[0].Count)
	require.EqualValues(t, 0x2211, runs[0].LCN)
	require.False(t, runs[0].Sparse)
}

func TestDecodeDataRunsSparseRun(t *testing.T) {
	// header 0x01: L=1, O=0 -> sparse, absolute LCN reported as 0.
	raw := []byte{0x01, 0x05, 0x00}
	runs, err := decodeDataRuns(view(raw), 0, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.EqualValues(t, 5, runs[0].Count)
	require.True(t, runs[0].Sparse)
	require.EqualValues(t, 0, runs[0].LCN)
}

func TestDecodeDataRunsSumsToBudget(t *testing.T) {
	// Two runs: 10 clusters at LCN 100, then 6 more at LCN 116 (delta +16).
	raw := []byte{
		0x11, 0x0A, 0x64, // header(L1,O1), count=10, delta=0x64=100
		0x11, 0x06, 0x10, // header(L1,O1), count=6, delta=0x10=16 -> lcn=116
		0x00,
	}
	runs, err := decodeDataRuns(view(raw), 0, 16)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	var sum uint64
	for _, r := range runs {
		sum += r.Count
	}
	require.EqualValues(t, 16, sum)
	require.EqualValues(t, 100, runs[0].LCN)
	require.EqualValues(t, 116, runs[1].LCN)
}

func TestDecodeDataRunsShortReadOnTruncatedHeader(t *testing.T) {
	raw := []byte{0x21, 0x10}
	_, err := decodeDataRuns(view(raw), 0, 0x10)
	require.ErrorIs(t, err, ErrShortRead)
}
