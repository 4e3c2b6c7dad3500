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

// Package archivefs is the public entry point: a Reader and a Writer that
// wire the read pipeline, the write pipeline, the format registry, the
// entry data model, link resolution, and match filtering together behind
// the handle lifecycle described in §3.
package archivefs

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/goarchive/archerr"
	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/filter"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
	"github.com/nabbar/goarchive/hstate"
	"github.com/nabbar/goarchive/match"
)

const sniffWindow = 512

// Reader is a single archive read session: one client source, one chain of
// decompression layers, one winning format plug-in, iterated entry by
// entry until Close.
type Reader struct {
	chain   *filter.Chain
	fr      types.Reader
	formatName string
	state   *hstate.Machine
	cur     *entry.Entry
	matcher *match.Set
	log     logrus.FieldLogger
}

// ReaderOption customizes OpenReader.
type ReaderOption func(*Reader)

// WithMatcher installs an inclusion/exclusion set; NextHeader silently
// skips over any entry the matcher rejects, the same way tar/cpio client
// callbacks traditionally filter before the caller ever sees a header.
func WithMatcher(m *match.Set) ReaderOption { return func(r *Reader) { r.matcher = m } }

// WithLogger installs a structured logger. The default is logrus's
// standard logger.
func WithLogger(l logrus.FieldLogger) ReaderOption { return func(r *Reader) { r.log = l } }

// OpenReader binds src, autodetects every compression layer wrapping it
// (§4.1), and runs the format bidding auction (§4.3) to find the
// container format underneath. It returns archerr-wrapped errors so
// callers can branch on Severity/Code rather than string-matching.
func OpenReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		state: hstate.NewMachine(),
		log:   logrus.StandardLogger().WithField("component", "archivefs.Reader"),
	}
	for _, o := range opts {
		o(r)
	}

	r.chain = filter.NewChain(src, 8)
	if err := r.chain.Autodetect(); err != nil {
		return nil, archerr.New(archerr.SeverityFatal, archerr.CodeCodecCorrupt, err)
	}

	head, _, err := r.chain.ReadAhead(sniffWindow)
	if err != nil {
		return nil, archerr.New(archerr.SeverityFatal, archerr.CodeCallbackIO, err)
	}

	fr, name, err := format.Open(r.chain.Reader(), head)
	if err != nil {
		return nil, archerr.New(archerr.SeverityFatal, archerr.CodeUnrecognizedFormat, err)
	}
	r.fr = fr
	r.formatName = name
	r.log.WithField("format", name).Debug("archive format detected")

	r.state.Transition(hstate.Header)
	return r, nil
}

// FormatName reports the winning format plug-in's name (§4.3).
func (r *Reader) FormatName() string { return r.formatName }

// NextHeader advances to the next entry, applying the installed matcher
// (if any) and returning io.EOF once the underlying format signals the
// end of the archive.
func (r *Reader) NextHeader() (*entry.Entry, error) {
	r.state.Require("NextHeader", hstate.Header, hstate.Data)

	for {
		e, err := r.fr.Next()
		if err == io.EOF {
			r.state.Transition(hstate.EOF)
			return nil, io.EOF
		}
		if err != nil {
			r.state.ToFatal()
			return nil, archerr.New(archerr.SeverityFatal, archerr.CodeTruncatedHeader, err)
		}
		if r.matcher != nil && !r.matcher.Match(e) {
			continue
		}
		r.cur = e
		r.state.Transition(hstate.Data)
		return e, nil
	}
}

// ReadData reads the current entry's body into p, exactly like io.Reader.
func (r *Reader) ReadData(p []byte) (int, error) {
	r.state.Require("ReadData", hstate.Data)
	n, err := r.fr.Read(p)
	if err == io.EOF {
		r.state.Transition(hstate.Header)
	}
	return n, err
}

// ReadDataBlock reads and discards the remainder of the current entry's
// body, advancing to the next header position. It exists for callers that
// only want the metadata and never intend to look at the content.
func (r *Reader) ReadDataBlock() error {
	r.state.Require("ReadDataBlock", hstate.Data)
	_, err := io.Copy(io.Discard, readerFunc(r.fr.Read))
	if err != nil && err != io.EOF {
		r.state.ToFatal()
		return archerr.New(archerr.SeverityFatal, archerr.CodeCallbackIO, err)
	}
	r.state.Transition(hstate.Header)
	return nil
}

// Skip is an alias for ReadDataBlock with the vocabulary §3 uses for the
// read-pipeline level operation; at the archive-entry level skipping a
// body is indistinguishable from discarding it.
func (r *Reader) Skip() error { return r.ReadDataBlock() }

// Close releases the format plug-in and cascades through every
// decompression layer and the client source.
func (r *Reader) Close() error {
	var err error
	if r.fr != nil {
		err = r.fr.Close()
	}
	if cerr := r.chain.Close(); cerr != nil && err == nil {
		err = cerr
	}
	r.state.Transition(hstate.Closed)
	return err
}
