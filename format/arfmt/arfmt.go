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

// Package arfmt adapts github.com/blakesmith/ar (the common Unix archiver
// format used by .a static libraries and Debian .deb packages) to the
// format registry's vtable. It only supports the plain-file subset the ar
// format is actually used for in practice: every entry bids as a regular
// file.
package arfmt

import (
	"bytes"
	"io"

	"github.com/blakesmith/ar"

	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
)

const Name = "ar"

func init() {
	format.RegisterReader(Name, func() types.Reader { return &reader{} })
	format.RegisterWriter(Name, func() types.Writer { return &writer{} })
}

var globalHeader = []byte("!<arch>\n")

type reader struct {
	ar *ar.Reader
}

func (r *reader) Name() string { return Name }

func (r *reader) Bid(head []byte) int {
	if len(head) >= len(globalHeader) && bytes.Equal(head[:len(globalHeader)], globalHeader) {
		return 48
	}
	return 0
}

func (r *reader) Open(src io.Reader) error {
	r.ar = ar.NewReader(src)
	return nil
}

func (r *reader) Next() (*entry.Entry, error) {
	h, err := r.ar.Next()
	if err != nil {
		return nil, err
	}
	e := entry.New(h.Name)
	e.Mode = uint32(h.Mode)
	e.UID, e.GID = int64(h.Uid), int64(h.Gid)
	e.Size = h.Size
	e.MTime = entry.NewTimestamp(h.ModTime)
	return e, nil
}

func (r *reader) Read(p []byte) (int, error) { return r.ar.Read(p) }

func (r *reader) Close() error { return nil }

type writer struct {
	aw *ar.Writer
}

func (w *writer) Name() string { return Name }

func (w *writer) Open(dst io.Writer) error {
	aw := ar.NewWriter(dst)
	if err := aw.WriteGlobalHeader(); err != nil {
		return err
	}
	w.aw = aw
	return nil
}

func (w *writer) WriteHeader(e *entry.Entry) error {
	h := &ar.Header{
		Name:    e.Pathname,
		Mode:    int64(e.Mode),
		Uid:     int(e.UID),
		Gid:     int(e.GID),
		Size:    e.EffectiveSize(),
		ModTime: e.MTime.Time(),
	}
	return w.aw.WriteHeader(h)
}

func (w *writer) Write(p []byte) (int, error) { return w.aw.Write(p) }

// Close is a no-op beyond what Open/Write already flushed: ar has no
// end-of-archive marker or footer to emit, unlike tar/cpio/zip.
func (w *writer) Close() error { return nil }
