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

// Package cpiofmt adapts github.com/surma/gocpio (the "new ASCII" SVR4
// cpio format) to the format registry's vtable.
package cpiofmt

import (
	"bytes"
	"io"

	cpio "github.com/surma/gocpio"

	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
)

const Name = "cpio"

func init() {
	format.RegisterReader(Name, func() types.Reader { return &reader{} })
	format.RegisterWriter(Name, func() types.Writer { return &writer{} })
}

// newAsciiMagic is "070701" (no CRC) or "070702" (CRC) at the start of
// every SVR4 cpio header.
var newAsciiMagic = [][]byte{[]byte("070701"), []byte("070702")}

type reader struct {
	cr *cpio.Reader
}

func (r *reader) Name() string { return Name }

func (r *reader) Bid(head []byte) int {
	for _, m := range newAsciiMagic {
		if len(head) >= len(m) && bytes.Equal(head[:len(m)], m) {
			return 36
		}
	}
	return 0
}

func (r *reader) Open(src io.Reader) error {
	r.cr = cpio.NewReader(src)
	return nil
}

func (r *reader) Next() (*entry.Entry, error) {
	h, err := r.cr.Next()
	if err != nil {
		return nil, err
	}
	if h.IsTrailer() {
		return nil, io.EOF
	}
	e := fromCpioHeader(h)
	if e.Type == entry.TypeSymlink && h.Size > 0 {
		// cpio stores a symlink's target as the entry's body rather than
		// in the header, the same convention tar's Linkname field hides
		// from callers.
		buf := make([]byte, h.Size)
		if n, err := io.ReadFull(r.cr, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, err
		} else {
			e.Symlink = string(buf[:n])
		}
	}
	return e, nil
}

func (r *reader) Read(p []byte) (int, error) { return r.cr.Read(p) }

func (r *reader) Close() error { return nil }

func fromCpioHeader(h *cpio.Header) *entry.Entry {
	e := entry.New(h.Name)
	e.Type = fromCpioType(h.Type)
	e.Mode = uint32(h.Mode)
	e.UID, e.GID = int64(h.Uid), int64(h.Gid)
	e.Size = h.Size
	e.MTime = entry.NewTimestamp(h.ModTime)
	return e
}

func fromCpioType(t cpio.FileType) entry.FileType {
	switch t {
	case cpio.TYPE_DIR:
		return entry.TypeDirectory
	case cpio.TYPE_SYMLINK:
		return entry.TypeSymlink
	case cpio.TYPE_CHAR:
		return entry.TypeCharDevice
	case cpio.TYPE_BLK:
		return entry.TypeBlockDevice
	case cpio.TYPE_FIFO:
		return entry.TypeFIFO
	case cpio.TYPE_SOCK:
		return entry.TypeSocket
	default:
		return entry.TypeRegular
	}
}

func toCpioType(t entry.FileType) cpio.FileType {
	switch t {
	case entry.TypeDirectory:
		return cpio.TYPE_DIR
	case entry.TypeSymlink:
		return cpio.TYPE_SYMLINK
	case entry.TypeCharDevice:
		return cpio.TYPE_CHAR
	case entry.TypeBlockDevice:
		return cpio.TYPE_BLK
	case entry.TypeFIFO:
		return cpio.TYPE_FIFO
	case entry.TypeSocket:
		return cpio.TYPE_SOCK
	default:
		return cpio.TYPE_REG
	}
}

type writer struct {
	cw *cpio.Writer
}

func (w *writer) Name() string { return Name }

func (w *writer) Open(dst io.Writer) error {
	w.cw = cpio.NewWriter(dst)
	return nil
}

func (w *writer) WriteHeader(e *entry.Entry) error {
	h := &cpio.Header{
		Name:    e.Pathname,
		Mode:    int64(e.Mode),
		Uid:     int(e.UID),
		Gid:     int(e.GID),
		Size:    e.EffectiveSize(),
		ModTime: e.MTime.Time(),
		Type:    toCpioType(e.Type),
	}
	return w.cw.WriteHeader(h)
}

func (w *writer) Write(p []byte) (int, error) { return w.cw.Write(p) }

func (w *writer) Close() error { return w.cw.Close() }
