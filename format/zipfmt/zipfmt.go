/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package zipfmt adapts the standard library's archive/zip to the format
// registry's vtable. Unlike tar/cpio/ar, zip's central directory lives at
// the end of the stream, so a reader needs random access: when the source
// the registry hands it is not already an io.ReaderAt, Open buffers the
// whole stream into memory first (mirroring the teacher package's own
// zip reader, which requires the same of its caller).
package zipfmt

import (
	"archive/zip"
	"bytes"
	"io"
	"os"

	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
)

const Name = "zip"

func init() {
	format.RegisterReader(Name, func() types.Reader { return &reader{} })
	format.RegisterWriter(Name, func() types.Writer { return &writer{} })
}

var zipMagic = []byte{'P', 'K', 0x03, 0x04}
var zipEmptyMagic = []byte{'P', 'K', 0x05, 0x06}

type reader struct {
	z       *zip.Reader
	files   []*zip.File
	idx     int
	curBody io.ReadCloser
}

func (r *reader) Name() string { return Name }

func (r *reader) Bid(head []byte) int {
	if hasPrefix(head, zipMagic) || hasPrefix(head, zipEmptyMagic) {
		return 40
	}
	return 0
}

func hasPrefix(b, sig []byte) bool {
	return len(b) >= len(sig) && bytes.Equal(b[:len(sig)], sig)
}

func (r *reader) Open(src io.Reader) error {
	ra, size, err := asReaderAt(src)
	if err != nil {
		return err
	}
	z, err := zip.NewReader(ra, size)
	if err != nil {
		return err
	}
	r.z = z
	r.files = z.File
	return nil
}

// asReaderAt returns a random-access view of src, buffering it into memory
// when it is not already seekable/sized.
func asReaderAt(src io.Reader) (io.ReaderAt, int64, error) {
	if ra, ok := src.(io.ReaderAt); ok {
		if sz, ok2 := src.(interface{ Size() int64 }); ok2 {
			return ra, sz.Size(), nil
		}
	}
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(buf), int64(len(buf)), nil
}

func (r *reader) Next() (*entry.Entry, error) {
	if r.curBody != nil {
		_ = r.curBody.Close()
		r.curBody = nil
	}
	if r.idx >= len(r.files) {
		return nil, io.EOF
	}
	f := r.files[r.idx]
	r.idx++
	body, err := f.Open()
	if err != nil {
		return nil, err
	}
	r.curBody = body
	return fromZipFile(f), nil
}

func (r *reader) Read(p []byte) (int, error) {
	if r.curBody == nil {
		return 0, io.EOF
	}
	return r.curBody.Read(p)
}

func (r *reader) Close() error {
	if r.curBody != nil {
		return r.curBody.Close()
	}
	return nil
}

func fromZipFile(f *zip.File) *entry.Entry {
	e := entry.New(f.Name)
	fi := f.FileInfo()
	if fi.IsDir() {
		e.Type = entry.TypeDirectory
	} else if f.Mode()&0o170000 == 0o120000 {
		e.Type = entry.TypeSymlink
	}
	e.Mode = uint32(f.Mode().Perm())
	e.Size = int64(f.UncompressedSize64)
	e.MTime = entry.NewTimestamp(f.Modified)
	return e
}

type writer struct {
	z       *zip.Writer
	curBody io.Writer
}

func (w *writer) Name() string { return Name }

func (w *writer) Open(dst io.Writer) error {
	w.z = zip.NewWriter(dst)
	return nil
}

func (w *writer) WriteHeader(e *entry.Entry) error {
	fh := &zip.FileHeader{
		Name:     e.Pathname,
		Modified: e.MTime.Time(),
		Method:   zip.Deflate,
	}
	if e.Type == entry.TypeDirectory && fh.Name[len(fh.Name)-1] != '/' {
		fh.Name += "/"
	}
	fh.SetMode(modeFromEntry(e))
	bw, err := w.z.CreateHeader(fh)
	if err != nil {
		return err
	}
	w.curBody = bw
	return nil
}

func modeFromEntry(e *entry.Entry) os.FileMode {
	mode := os.FileMode(e.Mode & 0o7777)
	switch e.Type {
	case entry.TypeDirectory:
		mode |= os.ModeDir
	case entry.TypeSymlink:
		mode |= os.ModeSymlink
	}
	return mode
}

func (w *writer) Write(p []byte) (int, error) {
	if w.curBody == nil {
		return 0, io.ErrClosedPipe
	}
	return w.curBody.Write(p)
}

func (w *writer) Close() error { return w.z.Close() }
