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

package zipfmt

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/nabbar/goarchive/entry"
)

func TestReader_BidZipMagic(t *testing.T) {
	r := &reader{}
	if bid := r.Bid([]byte{'P', 'K', 0x03, 0x04, 0, 0}); bid != 40 {
		t.Fatalf("Bid = %d, want 40 for local file header magic", bid)
	}
	if bid := r.Bid([]byte{'P', 'K', 0x05, 0x06}); bid != 40 {
		t.Fatalf("Bid = %d, want 40 for empty-archive end-of-cd magic", bid)
	}
	if bid := r.Bid([]byte("not a zip file")); bid != 0 {
		t.Fatalf("Bid = %d, want 0 for non-zip bytes", bid)
	}
}

func TestRoundTrip_RegularFile(t *testing.T) {
	payload := []byte("zip round trip payload")
	mtime := time.Unix(1_700_000_000, 0).UTC()

	var buf bytes.Buffer
	w := &writer{}
	if err := w.Open(&buf); err != nil {
		t.Fatalf("writer.Open: %v", err)
	}
	src := entry.New("a/b.txt")
	src.Mode = 0644
	src.MTime = entry.NewTimestamp(mtime)
	if err := w.WriteHeader(src); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	r := &reader{}
	if err := r.Open(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("reader.Open: %v", err)
	}
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Pathname != src.Pathname {
		t.Fatalf("Pathname = %q, want %q", got.Pathname, src.Pathname)
	}
	if got.Type != entry.TypeRegular {
		t.Fatalf("Type = %v, want TypeRegular", got.Type)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body = %q, want %q", body, payload)
	}

	if _, err = r.Next(); err != io.EOF {
		t.Fatalf("second Next = %v, want io.EOF", err)
	}
}

func TestRoundTrip_DirectoryGetsTrailingSlash(t *testing.T) {
	var buf bytes.Buffer
	w := &writer{}
	if err := w.Open(&buf); err != nil {
		t.Fatalf("writer.Open: %v", err)
	}
	dir := entry.New("subdir")
	dir.Type = entry.TypeDirectory
	if err := w.WriteHeader(dir); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	r := &reader{}
	if err := r.Open(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("reader.Open: %v", err)
	}
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Pathname != "subdir/" {
		t.Fatalf("Pathname = %q, want trailing slash %q", got.Pathname, "subdir/")
	}
	if got.Type != entry.TypeDirectory {
		t.Fatalf("Type = %v, want TypeDirectory", got.Type)
	}
}

func TestRoundTrip_MultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	w := &writer{}
	if err := w.Open(&buf); err != nil {
		t.Fatalf("writer.Open: %v", err)
	}
	names := []string{"one.txt", "two.txt", "three.txt"}
	for _, n := range names {
		e := entry.New(n)
		if err := w.WriteHeader(e); err != nil {
			t.Fatalf("WriteHeader(%s): %v", n, err)
		}
		if _, err := w.Write([]byte(n)); err != nil {
			t.Fatalf("Write(%s): %v", n, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	r := &reader{}
	if err := r.Open(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("reader.Open: %v", err)
	}
	for _, want := range names {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got.Pathname != want {
			t.Fatalf("Pathname = %q, want %q", got.Pathname, want)
		}
		body, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("reading body of %s: %v", want, err)
		}
		if string(body) != want {
			t.Fatalf("body = %q, want %q", body, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("final Next = %v, want io.EOF", err)
	}
}
