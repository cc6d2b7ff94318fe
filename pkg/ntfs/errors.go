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

import "errors"

// Sentinel errors surfaced by the core parser. RecordMalformed is
// deliberately unexported: individual MFT slots are skipped, not surfaced,
// so a caller only ever sees the fatal, setup-time errors below.
var (
	ErrVolumeOpenFailed     = errors.New("ntfs: failed to open volume")
	ErrShortRead            = errors.New("ntfs: short read")
	ErrNotNTFS              = errors.New("ntfs: boot sector is not NTFS")
	ErrMftUnreadable        = errors.New("ntfs: mft record 0 is unreadable")
	ErrMftAttributesMissing = errors.New("ntfs: mft record 0 is missing $DATA or $BITMAP")
	ErrClosed               = errors.New("ntfs: parser is closed")
)

// errRecordMalformed marks a single MFT slot as unusable (bad USA, missing
// magic, broken attribute chain). It is not returned by the public calls;
// the streaming parser catches it and skips the slot, and with
// WithDiagnostics the reason is reported through Diagnostics wrapped in it.
var errRecordMalformed = errors.New("ntfs: record malformed")
