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

// Package ntfs parses an NTFS volume's Master File Table directly from raw
// sectors, bypassing the host filesystem API, and streams out one MftFile
// per in-use, named file record.
package ntfs

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/ntfsdig/ntfsdig/internal/mmap"
)

// clustersPerRead bounds a single physical read while walking a data run,
// per §4.7.
const clustersPerRead = 1024

// MftFile is one decoded, in-use file record, emitted only once it carries
// at least one non-empty $FILE_NAME (§3).
type MftFile struct {
	ID        uint64
	Parent    uint64
	Name      string
	Size      uint64
	Created   int64 // unix seconds
	Accessed  int64
	Modified  int64
	Directory bool
	Flags     uint16 // raw file-record flags, for callers that want more than Directory
}

// ParserStats are optional diagnostic counters (§9's "surface them as
// optional counters on the parser instance"), populated regardless of
// whether diagnostics are enabled; WithDiagnostics additionally collects
// the reasons behind skipped records.
type ParserStats struct {
	RecordsScanned        uint64
	RecordsEmitted        uint64
	RecordsSkipped        uint64
	SparseClustersSkipped uint64
}

// Option configures a Parser at Open time.
type Option func(*Parser)

// WithDiagnostics enables per-record skip-reason collection via
// hashicorp/go-multierror, retrievable with Diagnostics. Disabled by
// default: the reasons are purely diagnostic and cost an allocation per
// skip to collect.
func WithDiagnostics(enabled bool) Option {
	return func(p *Parser) {
		if enabled {
			p.diagErrs = new(multierror.Error)
		}
	}
}

const maxDiagnosticReasons = 64

// Parser is the public entry surface: Open/Count/ReadAll/Close, plus the
// batching ReadBatch for bounded-memory incremental drain (§4.8).
type Parser struct {
	vol    *volume
	params *VolumeParams
	loc    *mftLocation

	runIdx           int
	clustersConsumed uint64
	pending          []MftFile

	stats    ParserStats
	diagErrs *multierror.Error

	closed bool
}

// Open acquires a read handle on volume path, decodes the boot sector, and
// locates the MFT. Any failure releases the handle before returning.
func Open(path string, opts ...Option) (*Parser, error) {
	vol, err := openVolume(path)
	if err != nil {
		return nil, err
	}
	p, err := openWithVolume(vol, opts...)
	if err != nil {
		vol.close()
		return nil, err
	}
	return p, nil
}

// OpenReaderAt opens the parser against a caller-managed io.ReaderAt —
// an on-disk image, an internal/mmap-backed reader, or a test fixture —
// instead of opening a volume path itself.
func OpenReaderAt(r io.ReaderAt, opts ...Option) (*Parser, error) {
	return openWithVolume(newVolumeFromReaderAt(r), opts...)
}

// OpenMmap memory-maps path whole and parses the MFT directly out of the
// mapping, avoiding a read syscall per cluster batch; best suited to image
// files small enough to map in full, not live block devices.
func OpenMmap(path string, opts ...Option) (*Parser, error) {
	mr, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVolumeOpenFailed, err)
	}
	p, err := openWithVolume(newVolumeFromReaderAt(mr), opts...)
	if err != nil {
		mr.Close()
		return nil, err
	}
	return p, nil
}

func openWithVolume(vol *volume, opts ...Option) (*Parser, error) {
	boot := make([]byte, BootSectorSize)
	if err := vol.readAt(boot, 0); err != nil {
		vol.close()
		return nil, err
	}
	params, err := decodeBootSector(boot)
	if err != nil {
		vol.close()
		return nil, err
	}

	cluster := make([]byte, params.BytesPerCluster)
	if err := vol.readAt(cluster, int64(params.MftStartByte)); err != nil {
		vol.close()
		return nil, err
	}
	loc, err := locateMFT(cluster, params)
	if err != nil {
		vol.close()
		return nil, err
	}

	p := &Parser{vol: vol, params: params, loc: loc}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Count returns the number of record slots the MFT's $DATA size implies,
// plus the 16 reserved system-file slots (§4.8).
func (p *Parser) Count() uint64 {
	return p.loc.recordCount + 16
}

// Stats returns the diagnostic counters accumulated so far.
func (p *Parser) Stats() ParserStats {
	return p.stats
}

// Diagnostics returns the collected skip reasons when WithDiagnostics(true)
// was passed to Open, or nil otherwise (and when nothing was skipped).
func (p *Parser) Diagnostics() error {
	if p.diagErrs == nil {
		return nil
	}
	return p.diagErrs.ErrorOrNil()
}

// Bitmap reports whether MFT slot recordID is marked allocated in $BITMAP,
// when that attribute happened to be resident at Open (§4.13). ok is false
// when no resident bitmap was captured or recordID does not fit in an int;
// a recordID past the end of the captured bitmap reports allocated=false
// with ok=true. The core's own walk never depends on this, it only gates on
// $BITMAP presence.
func (p *Parser) Bitmap(recordID uint64) (allocated bool, ok bool) {
	if p.loc.bitmap == nil {
		return false, false
	}
	if recordID > uint64(^uint(0)>>1) {
		return false, false
	}
	return bitmapAt(p.loc.bitmap, int(recordID)), true
}

// Close releases the volume handle. Idempotent.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.vol.close()
}

// ReadAll runs the streaming parser to exhaustion and returns every
// emitted MftFile, reserving capacity for Count() up front (§4.8).
func (p *Parser) ReadAll() ([]MftFile, error) {
	if p.closed {
		return nil, ErrClosed
	}
	out := make([]MftFile, 0, p.Count())
	buf := make([]MftFile, 4096)
	for {
		n, more, err := p.ReadBatch(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			return out, err
		}
		if !more {
			return out, nil
		}
	}
}

// hasMore reports whether any run remains to be read or decoded.
func (p *Parser) hasMore() bool {
	return p.runIdx < len(p.loc.runs) || len(p.pending) > 0
}

// ReadBatch decodes MftFile entries into dst, up to len(dst), returning
// how many were written and whether records remain. Per §4.7's batching
// policy, a caller should keep calling with fresh capacity until more is
// false; this lets a caller bound memory instead of requiring ReadAll's
// single growing slice.
func (p *Parser) ReadBatch(dst []MftFile) (n int, more bool, err error) {
	if p.closed {
		return 0, false, ErrClosed
	}

	for n < len(dst) && len(p.pending) > 0 {
		dst[n] = p.pending[0]
		p.pending = p.pending[1:]
		n++
	}

	for n < len(dst) && p.runIdx < len(p.loc.runs) {
		records, err := p.readNextRunBatch()
		if err != nil {
			return n, false, err
		}
		for _, r := range records {
			if n < len(dst) {
				dst[n] = r
				n++
			} else {
				p.pending = append(p.pending, r)
			}
		}
	}

	return n, p.hasMore(), nil
}

// readNextRunBatch reads and carves up to clustersPerRead clusters from the
// current run, advancing the run cursor. A sparse run is skipped without
// any I/O, per §4.7.
func (p *Parser) readNextRunBatch() ([]MftFile, error) {
	run := p.loc.runs[p.runIdx]
	remaining := run.Count - p.clustersConsumed

	if run.Sparse {
		p.stats.SparseClustersSkipped += remaining
		p.runIdx++
		p.clustersConsumed = 0
		return nil, nil
	}

	batch := remaining
	if batch > clustersPerRead {
		batch = clustersPerRead
	}

	lcn := run.LCN + p.clustersConsumed
	buf := make([]byte, batch*p.params.BytesPerCluster)
	if err := p.vol.readAt(buf, int64(lcn*p.params.BytesPerCluster)); err != nil {
		return nil, err
	}

	records := p.carve(buf)

	p.clustersConsumed += batch
	if p.clustersConsumed >= run.Count {
		p.runIdx++
		p.clustersConsumed = 0
	}
	return records, nil
}

// carve walks buf in strides of BytesPerFileRecord, decoding each slot
// independently; a malformed or unnamed slot is silently skipped (§4.7).
func (p *Parser) carve(buf []byte) []MftFile {
	var out []MftFile
	recSize := p.params.BytesPerFileRecord
	for off := uint64(0); off+recSize <= uint64(len(buf)); off += recSize {
		slot := buf[off : off+recSize]
		p.stats.RecordsScanned++

		mf, reason, ok := carveRecord(slot)
		if !ok {
			p.stats.RecordsSkipped++
			p.recordDiagnostic(reason)
			continue
		}
		p.stats.RecordsEmitted++
		out = append(out, mf)
	}
	return out
}

func (p *Parser) recordDiagnostic(reason string) {
	if p.diagErrs == nil {
		return
	}
	if len(p.diagErrs.Errors) >= maxDiagnosticReasons {
		return
	}
	p.diagErrs = multierror.Append(p.diagErrs, fmt.Errorf("%w: %s", errRecordMalformed, reason))
}

// carveRecord decodes one fixed-size MFT slot into an MftFile. ok is false
// if the slot is skipped: bad magic, malformed fix-up, not in-use, or no
// non-empty $FILE_NAME was found.
func carveRecord(slot []byte) (mf MftFile, reason string, ok bool) {
	pre, parsed := parseFileRecord(slot)
	if !parsed {
		return MftFile{}, "missing FILE magic", false
	}
	if !applyFixup(slot, pre.usaOffset, pre.usaCount) {
		return MftFile{}, "usa fix-up rejected", false
	}
	rec, parsed := parseFileRecord(slot)
	if !parsed {
		return MftFile{}, "header truncated after fix-up", false
	}
	if !rec.inUse() {
		return MftFile{}, "record not in use", false
	}

	it := newAttributeIterator(rec.data, int(rec.attributesOffset), rec.bytesInUse, int(rec.nextAttributeNumber))

	var name *fileName
	var nonResidentDataSize uint64
	var haveNonResidentDataSize bool

	for {
		hdr, ok := it.next()
		if !ok {
			break
		}
		switch hdr.Type {
		case AttrFileName:
			if name != nil || hdr.NonResident {
				continue
			}
			val, err := hdr.residentValue()
			if err != nil {
				continue
			}
			decoded, err := decodeFileName(val)
			if err != nil || decoded.Name == "" {
				continue
			}
			name = decoded
		case AttrData:
			if !hdr.NonResident {
				continue
			}
			if nr, err := hdr.nonResident(); err == nil {
				nonResidentDataSize = nr.DataSize
				haveNonResidentDataSize = true
			}
		}
	}

	if name == nil {
		return MftFile{}, "no non-empty $FILE_NAME decoded", false
	}

	size := name.DataSize
	if haveNonResidentDataSize {
		size = nonResidentDataSize
	}

	return MftFile{
		ID:        uint64(rec.recordID),
		Parent:    name.Parent,
		Name:      name.Name,
		Size:      size,
		Created:   windowsTicksToUnix(name.Created),
		Accessed:  windowsTicksToUnix(name.Accessed),
		Modified:  windowsTicksToUnix(name.Written),
		Directory: rec.directory(),
		Flags:     rec.flags,
	}, "", true
}
