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

// Package types defines the vtable every container format plug-in (tar,
// zip, cpio, ar, ...) implements: the Reader and Writer contracts and the
// factories that construct them (§4.3-4.4).
package types

import (
	"io"

	"github.com/nabbar/goarchive/entry"
)

// Reader is one format plug-in's read-side contract. A format is opened
// once its Bid has won the registry's auction (§4.3); after that Next/Read
// drive the familiar header/body/header iteration.
type Reader interface {
	// Name is the format's stable identifier, used in diagnostics and by
	// callers that want to force a format instead of auto-detecting it.
	Name() string
	// Bid inspects the leading bytes of the (already decompressed) stream
	// and returns a confidence score, 0 meaning "definitely not me." A
	// plug-in never needs more than a few hundred bytes to recognize its
	// own magic, but is given whatever the registry's sniff window holds.
	Bid(head []byte) int
	// Open binds the plug-in to the stream it will read entries from. It
	// must not consume more than is necessary to construct its internal
	// decoder; the registry has already committed to this plug-in by the
	// time Open is called.
	Open(r io.Reader) error
	// Next advances to the next entry's header, returning io.EOF once the
	// format's own end-of-archive marker (or the stream itself) is
	// reached.
	Next() (*entry.Entry, error)
	// Read streams the current entry's body. Reading less than the full
	// body and calling Next again is legal; the plug-in discards the
	// remainder itself.
	Read(p []byte) (int, error)
	// Close releases any resources Open acquired. It does not close the
	// underlying stream, which the caller owns.
	Close() error
}

// Writer is one format plug-in's write-side contract.
type Writer interface {
	Name() string
	// Open binds the plug-in to the stream it will serialize entries into.
	Open(w io.Writer) error
	// WriteHeader starts a new entry. Size, when EffectiveSize is
	// non-zero, tells formats that require it up front (ar, old-style
	// cpio) how many body bytes to expect.
	WriteHeader(e *entry.Entry) error
	// Write streams the current entry's body; the sum of all Write calls
	// between one WriteHeader and the next must equal that entry's
	// EffectiveSize for formats that encode size in the header.
	Write(p []byte) (int, error)
	// Close finalizes the archive (end-of-archive markers, footers,
	// central directories) and releases the plug-in's resources. It does
	// not close the underlying stream.
	Close() error
}

// Factory constructs a fresh, unopened plug-in instance. Registries keep
// factories rather than instances so each archive gets its own decoder
// state even when many archives are processed concurrently.
type ReaderFactory func() Reader
type WriterFactory func() Writer
