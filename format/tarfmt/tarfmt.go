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

// Package tarfmt adapts the standard library's archive/tar to the format
// registry's Reader/Writer vtable, handling both classic ustar and PAX
// extended headers (stdlib archive/tar already negotiates both) and the
// ustar magic bytes for bidding.
package tarfmt

import (
	"archive/tar"
	"io"

	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
)

const Name = "tar"

func init() {
	format.RegisterReader(Name, func() types.Reader { return &reader{} })
	format.RegisterWriter(Name, func() types.Writer { return &writer{} })
}

// ustarMagic sits at offset 257 of every POSIX tar header; old-style
// (pre-ustar, "v7") tar headers carry no magic at all, so a tar stream
// without it still deserves a low, non-zero bid: it is the registry's
// catch-all, expected to register after more specific formats.
var ustarMagic = []byte("ustar")

type reader struct {
	tr *tar.Reader
	cur *tar.Header
}

func (r *reader) Name() string { return Name }

func (r *reader) Bid(head []byte) int {
	if len(head) >= 262 && string(head[257:262]) == "ustar" {
		return 40
	}
	// A v7 tar has no magic; fall back to checking the trailing checksum
	// field looks like octal digits, which is cheap and rarely a false
	// positive in practice.
	if len(head) >= 148+8 {
		for _, b := range head[148 : 148+6] {
			if b < '0' || b > '7' {
				if b != 0 && b != ' ' {
					return 0
				}
			}
		}
		return 4
	}
	return 0
}

func (r *reader) Open(src io.Reader) error {
	r.tr = tar.NewReader(src)
	return nil
}

func (r *reader) Next() (*entry.Entry, error) {
	h, err := r.tr.Next()
	if err != nil {
		return nil, err
	}
	r.cur = h
	return fromTarHeader(h), nil
}

func (r *reader) Read(p []byte) (int, error) { return r.tr.Read(p) }

func (r *reader) Close() error { return nil }

func fromTarHeader(h *tar.Header) *entry.Entry {
	e := entry.New(h.Name)
	e.Type = fromTarType(h.Typeflag)
	e.Mode = uint32(h.Mode)
	e.UID, e.GID = int64(h.Uid), int64(h.Gid)
	e.UName, e.GName = h.Uname, h.Gname
	e.Size = h.Size
	e.MTime = entry.NewTimestamp(h.ModTime)
	if !h.AccessTime.IsZero() {
		e.ATime = entry.NewTimestamp(h.AccessTime)
	}
	if !h.ChangeTime.IsZero() {
		e.CTime = entry.NewTimestamp(h.ChangeTime)
	}
	e.Symlink = h.Linkname
	if h.Typeflag == tar.TypeLink {
		e.Hardlink = h.Linkname
	}
	e.Device = entry.Device{Major: uint32(h.Devmajor), Minor: uint32(h.Devminor)}
	if len(h.Xattrs) > 0 {
		e.Xattrs = make(map[string][]byte, len(h.Xattrs))
		for k, v := range h.Xattrs {
			e.Xattrs[k] = []byte(v)
		}
	}
	// archive/tar exposes no sparse map on its Header; its Reader already
	// returns sparse holes as zeros, so e.Sparse is left empty.
	return e
}

func fromTarType(t byte) entry.FileType {
	switch t {
	case tar.TypeDir:
		return entry.TypeDirectory
	case tar.TypeSymlink:
		return entry.TypeSymlink
	case tar.TypeLink:
		return entry.TypeHardlink
	case tar.TypeChar:
		return entry.TypeCharDevice
	case tar.TypeBlock:
		return entry.TypeBlockDevice
	case tar.TypeFifo:
		return entry.TypeFIFO
	default:
		return entry.TypeRegular
	}
}

func toTarType(t entry.FileType, hasHardlink bool) byte {
	if hasHardlink {
		return tar.TypeLink
	}
	switch t {
	case entry.TypeDirectory:
		return tar.TypeDir
	case entry.TypeSymlink:
		return tar.TypeSymlink
	case entry.TypeCharDevice:
		return tar.TypeChar
	case entry.TypeBlockDevice:
		return tar.TypeBlock
	case entry.TypeFIFO:
		return tar.TypeFifo
	default:
		return tar.TypeReg
	}
}

type writer struct {
	tw *tar.Writer
}

func (w *writer) Name() string { return Name }

func (w *writer) Open(dst io.Writer) error {
	w.tw = tar.NewWriter(dst)
	return nil
}

func (w *writer) WriteHeader(e *entry.Entry) error {
	h := &tar.Header{
		Name:     e.Pathname,
		Mode:     int64(e.Mode),
		Uid:      int(e.UID),
		Gid:      int(e.GID),
		Uname:    e.UName,
		Gname:    e.GName,
		Size:     e.EffectiveSize(),
		ModTime:  e.MTime.Time(),
		Typeflag: toTarType(e.Type, e.IsHardlinkReference()),
		Linkname: e.Symlink,
	}
	if e.IsHardlinkReference() {
		h.Linkname = e.Hardlink
	}
	if e.ATime.IsSet {
		h.AccessTime = e.ATime.Time()
	}
	if e.CTime.IsSet {
		h.ChangeTime = e.CTime.Time()
	}
	if e.Device.Major != 0 || e.Device.Minor != 0 {
		h.Devmajor = int64(e.Device.Major)
		h.Devminor = int64(e.Device.Minor)
	}
	if len(e.Xattrs) > 0 {
		h.Xattrs = make(map[string]string, len(e.Xattrs))
		for k, v := range e.Xattrs {
			h.Xattrs[k] = string(v)
		}
	}
	// e.Sparse is not encoded: archive/tar writes every body dense.
	return w.tw.WriteHeader(h)
}

func (w *writer) Write(p []byte) (int, error) { return w.tw.Write(p) }

func (w *writer) Close() error { return w.tw.Close() }
