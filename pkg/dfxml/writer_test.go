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
package dfxml_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntfsdig/ntfsdig/pkg/dfxml"
)

func TestWriteMftFileThenReadFileObjectsRoundTrips(t *testing.T) {
	records := []dfxml.MftFileObject{
		{RecordID: 5, Parent: 5, Name: "root", Size: 0, Directory: true, Created: 1577836800, Modified: 1577836800, Accessed: 1577836800},
		{RecordID: 41, Parent: 5, Name: "notes.txt", Size: 1234, Directory: false, Created: 1577836800, Modified: 1580515200, Accessed: 1580515200},
		{RecordID: 42, Parent: 41, Name: "sub", Size: 0, Directory: true, Created: 1577836800, Modified: 1577836800, Accessed: 1577836800},
	}

	var buf bytes.Buffer
	w := dfxml.NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Source:    dfxml.Source{ImageFilename: "test.img", SectorSize: 512, ImageSize: 1 << 20},
	}))
	for _, r := range records {
		require.NoError(t, w.WriteMftFile(r))
	}
	require.NoError(t, w.Close())

	objs, err := dfxml.ReadFileObjects(&buf)
	require.NoError(t, err)
	require.Len(t, objs, len(records))

	for i, r := range records {
		o := objs[i]
		require.Equal(t, r.RecordID, o.RecordID)
		require.Equal(t, r.Parent, o.ParentID)
		require.Equal(t, r.Name, o.Filename)
		require.Equal(t, r.Size, o.FileSize)
		require.Equal(t, r.Directory, o.Directory)
		require.True(t, o.Alloc)
		require.Equal(t, dfxml.FormatDFXMLTime(r.Created), o.Crtime)
		require.Equal(t, dfxml.FormatDFXMLTime(r.Modified), o.Mtime)
		require.Equal(t, dfxml.FormatDFXMLTime(r.Accessed), o.Atime)
	}
}
