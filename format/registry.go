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

// Package format holds the container-format plug-in registry that the
// tar/zip/cpio/ar sub-packages register with (§4.3-4.4): the auction that picks a
// reader plug-in by bidding confidence scores against the stream's leading
// bytes, mirroring codec.Detect one layer up the stack.
package format

import (
	"io"
	"sort"

	"github.com/nabbar/goarchive/format/types"
)

const sniffWindow = 512

var readerFactories []namedReaderFactory
var writerFactories = map[string]types.WriterFactory{}

type namedReaderFactory struct {
	name    string
	factory types.ReaderFactory
}

// RegisterReader adds a read-side plug-in to the global registry. Order of
// registration is the tie-break when two plug-ins bid the same non-zero
// score, so general-purpose formats should register after more specific
// ones.
func RegisterReader(name string, f types.ReaderFactory) {
	readerFactories = append(readerFactories, namedReaderFactory{name: name, factory: f})
}

// RegisterWriter adds a write-side plug-in, looked up by name since
// writing is always requested explicitly rather than detected.
func RegisterWriter(name string, f types.WriterFactory) {
	writerFactories[name] = f
}

// Names lists every registered reader plug-in in registration order.
func Names() []string {
	out := make([]string, 0, len(readerFactories))
	for _, nf := range readerFactories {
		out = append(out, nf.name)
	}
	return out
}

// bid is one plug-in's auction result, kept only for deterministic
// tie-break ordering (stable sort preserves registration order for equal
// scores).
type bid struct {
	name    string
	score   int
	factory types.ReaderFactory
}

// Detect runs the bidding auction (§4.3) over every registered reader
// against head, the stream's leading bytes. It returns the highest
// strictly-positive bidder, or (nil, "") if every registered plug-in
// declined — an ordinary, caller-visible "unrecognized stream" outcome.
//
// Detect panics if no reader plug-in has ever been registered. That is a
// programmer error, not a bad stream: the caller forgot to import any
// format plug-in (e.g. format/allformats), the same "fail loudly at
// misuse, not at first unlucky input" posture hstate.Machine.Require
// takes elsewhere in this tree.
func Detect(head []byte) (types.Reader, string) {
	if len(readerFactories) == 0 {
		panic("format: Detect called with no reader plug-ins registered")
	}
	bids := make([]bid, 0, len(readerFactories))
	for _, nf := range readerFactories {
		r := nf.factory()
		if s := r.Bid(head); s > 0 {
			bids = append(bids, bid{name: nf.name, score: s, factory: nf.factory})
		}
	}
	if len(bids) == 0 {
		return nil, ""
	}
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].score > bids[j].score })
	winner := bids[0]
	return winner.factory(), winner.name
}

// Open opens src against the winning format plug-in, returning it already
// positioned to accept Next() calls. ErrNoFormatMatch is returned, never
// panicked, since an unrecognized stream is routine caller-visible
// behavior rather than a programmer error (Detect's own zero-registrants
// panic still propagates through Open unchanged).
func Open(src io.Reader, head []byte) (types.Reader, string, error) {
	r, name := Detect(head)
	if r == nil {
		return nil, "", ErrNoFormatMatch
	}
	if err := r.Open(src); err != nil {
		return nil, "", err
	}
	return r, name, nil
}

// NewWriter looks up a writer plug-in by name and binds it to w.
func NewWriter(name string, w io.Writer) (types.Writer, error) {
	f, ok := writerFactories[name]
	if !ok {
		return nil, ErrUnknownFormat
	}
	wr := f()
	if err := wr.Open(w); err != nil {
		return nil, err
	}
	return wr, nil
}
