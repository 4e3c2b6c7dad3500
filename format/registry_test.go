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

// Tests live in an external test package so they can register stub plug-ins
// through the same public API a real format package would use, without
// risking an import cycle with any real format/* plug-in package.
package format_test

import (
	"io"
	"testing"

	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
)

// stubReader only bids when head starts with its own signature, so that
// stub readers registered by earlier tests never interfere with a later
// test's detection headers (the registry is process-global and append-only,
// exactly like the real format/* plug-ins' init-time registration).
type stubReader struct {
	name string
	sig  []byte
	bid  int
}

func (s *stubReader) Name() string { return s.name }
func (s *stubReader) Bid(head []byte) int {
	if len(head) < len(s.sig) {
		return 0
	}
	for i, b := range s.sig {
		if head[i] != b {
			return 0
		}
	}
	return s.bid
}
func (s *stubReader) Open(r io.Reader) error      { return nil }
func (s *stubReader) Next() (*entry.Entry, error) { return nil, io.EOF }
func (s *stubReader) Read(p []byte) (int, error)  { return 0, io.EOF }
func (s *stubReader) Close() error                { return nil }

type stubWriter struct{ name string }

func (s *stubWriter) Name() string                  { return s.name }
func (s *stubWriter) Open(w io.Writer) error         { return nil }
func (s *stubWriter) WriteHeader(e *entry.Entry) error { return nil }
func (s *stubWriter) Write(p []byte) (int, error)    { return len(p), nil }
func (s *stubWriter) Close() error                   { return nil }

// This must run before any other test in the package registers a reader
// plug-in, since the registry is process-global and append-only; it is
// the only point at which readerFactories is still genuinely empty.
func TestDetect_PanicsWithNoRegisteredPlugins(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Detect should panic when no reader plug-in has ever been registered")
		}
	}()
	format.Detect([]byte("anything"))
}

// Scenario 5 from the testable-properties list: a higher bidder wins
// regardless of registration order.
func TestDetect_HighestBidWinsRegardlessOfOrder(t *testing.T) {
	sig := []byte("MAGIC-HIGHLOW")
	format.RegisterReader("low-bidder-a", func() types.Reader { return &stubReader{name: "low-bidder-a", sig: sig, bid: 30} })
	format.RegisterReader("high-bidder-b", func() types.Reader { return &stubReader{name: "high-bidder-b", sig: sig, bid: 64} })

	r, name := format.Detect(sig)
	if r == nil {
		t.Fatal("Detect returned no winner")
	}
	if name != "high-bidder-b" {
		t.Fatalf("winner = %q, want %q", name, "high-bidder-b")
	}
}

func TestDetect_TieBrokenByRegistrationOrder(t *testing.T) {
	sig := []byte("MAGIC-TIEBREAK")
	format.RegisterReader("tie-first", func() types.Reader { return &stubReader{name: "tie-first", sig: sig, bid: 10} })
	format.RegisterReader("tie-second", func() types.Reader { return &stubReader{name: "tie-second", sig: sig, bid: 10} })

	r, name := format.Detect(sig)
	if r == nil {
		t.Fatal("Detect returned no winner")
	}
	if name != "tie-first" {
		t.Fatalf("winner = %q, want %q (first registered)", name, "tie-first")
	}
}

func TestDetect_NoMatchReturnsNil(t *testing.T) {
	r, name := format.Detect([]byte("MAGIC-NEVER-REGISTERED-BY-ANY-STUB"))
	if r != nil || name != "" {
		t.Fatalf("Detect = (%v, %q), want (nil, \"\")", r, name)
	}
}

func TestOpen_NoFormatMatchError(t *testing.T) {
	_, _, err := format.Open(nil, []byte("MAGIC-NEVER-REGISTERED-BY-ANY-STUB-EITHER"))
	if err != format.ErrNoFormatMatch {
		t.Fatalf("Open err = %v, want ErrNoFormatMatch", err)
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := format.NewWriter("does-not-exist", io.Discard)
	if err != format.ErrUnknownFormat {
		t.Fatalf("NewWriter err = %v, want ErrUnknownFormat", err)
	}
}

func TestNewWriter_KnownFormat(t *testing.T) {
	format.RegisterWriter("stub-writer", func() types.Writer { return &stubWriter{name: "stub-writer"} })

	w, err := format.NewWriter("stub-writer", io.Discard)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if w.Name() != "stub-writer" {
		t.Fatalf("Name = %q, want %q", w.Name(), "stub-writer")
	}
}
