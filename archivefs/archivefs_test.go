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

package archivefs

import (
	"bytes"
	"io"
	"testing"

	"github.com/nabbar/goarchive/codec"
	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/match"

	_ "github.com/nabbar/goarchive/format/cpiofmt"
	_ "github.com/nabbar/goarchive/format/tarfmt"
	_ "github.com/nabbar/goarchive/format/zipfmt"
)

func writeSimpleArchive(t *testing.T, formatName string, opts ...WriterOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := OpenWriter(&buf, formatName, opts...)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	payload := []byte("identity round trip payload")
	e := entry.New("greeting.txt")
	e.Mode = 0644
	e.Size = int64(len(payload))
	if err = w.WriteHeader(e); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err = w.WriteData(payload); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err = w.FinishEntry(); err != nil {
		t.Fatalf("FinishEntry: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestReaderWriter_TarIdentityRoundTrip(t *testing.T) {
	out := writeSimpleArchive(t, "tar")

	r, err := OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.FormatName() != "tar" {
		t.Fatalf("FormatName() = %q, want %q", r.FormatName(), "tar")
	}

	got, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	if got.Pathname != "greeting.txt" {
		t.Fatalf("Pathname = %q, want %q", got.Pathname, "greeting.txt")
	}

	body, err := io.ReadAll(readerFunc(r.ReadData))
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "identity round trip payload" {
		t.Fatalf("body = %q, want %q", body, "identity round trip payload")
	}

	if _, err = r.NextHeader(); err != io.EOF {
		t.Fatalf("second NextHeader = %v, want io.EOF", err)
	}
}

func TestReaderWriter_GzipCompressedTar(t *testing.T) {
	out := writeSimpleArchive(t, "tar", WithCompression(codec.Gzip))

	r, err := OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.FormatName() != "tar" {
		t.Fatalf("FormatName() = %q, want %q", r.FormatName(), "tar")
	}

	got, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	if got.Pathname != "greeting.txt" {
		t.Fatalf("Pathname = %q, want %q", got.Pathname, "greeting.txt")
	}
	if err = r.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
}

func TestWriter_HardlinkMergeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := OpenWriter(&buf, "tar")
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	payload := []byte("shared data")
	first := entry.New("first.bin")
	first.Dev, first.Ino, first.Nlink = 9, 99, 2
	first.Size = int64(len(payload))
	if err = w.WriteHeader(first); err != nil {
		t.Fatalf("WriteHeader(first): %v", err)
	}
	if _, err = w.WriteData(payload); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err = w.FinishEntry(); err != nil {
		t.Fatalf("FinishEntry(first): %v", err)
	}

	second := entry.New("second.bin")
	second.Dev, second.Ino, second.Nlink = 9, 99, 2
	second.Size = int64(len(payload))
	if err = w.WriteHeader(second); err != nil {
		t.Fatalf("WriteHeader(second): %v", err)
	}
	if err = w.FinishEntry(); err != nil {
		t.Fatalf("FinishEntry(second): %v", err)
	}

	if err = w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got1, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader(1): %v", err)
	}
	if got1.IsHardlinkReference() {
		t.Fatal("first sighting should carry real data, not a hardlink reference")
	}
	if err = r.Skip(); err != nil {
		t.Fatalf("Skip(1): %v", err)
	}

	got2, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader(2): %v", err)
	}
	if !got2.IsHardlinkReference() {
		t.Fatal("second sighting should be rewritten into a hardlink reference")
	}
	if got2.Hardlink != "first.bin" {
		t.Fatalf("Hardlink = %q, want %q", got2.Hardlink, "first.bin")
	}
}

func TestWriter_UnderwriteIsPaddedWithZeros(t *testing.T) {
	var buf bytes.Buffer
	w, err := OpenWriter(&buf, "tar")
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	e := entry.New("short.bin")
	e.Size = 10
	if err = w.WriteHeader(e); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err = w.WriteData([]byte("too short")); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err = w.FinishEntry(); err != nil {
		t.Fatalf("FinishEntry should pad the shortfall with zeros rather than fail: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	if got.EffectiveSize() != 10 {
		t.Fatalf("EffectiveSize() = %d, want 10", got.EffectiveSize())
	}
	body, err := io.ReadAll(readerFunc(r.ReadData))
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "too short\x00" {
		t.Fatalf("body = %q, want %q", body, "too short\x00")
	}
}

func TestWriter_OverwriteIsTruncated(t *testing.T) {
	var buf bytes.Buffer
	w, err := OpenWriter(&buf, "tar")
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	e := entry.New("long.bin")
	e.Size = 4
	if err = w.WriteHeader(e); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	n, err := w.WriteData([]byte("way too long"))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if n != len("way too long") {
		t.Fatalf("WriteData n = %d, want %d (caller-visible byte count should not reflect truncation)", n, len("way too long"))
	}
	if err = w.FinishEntry(); err != nil {
		t.Fatalf("FinishEntry: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	body, err := io.ReadAll(readerFunc(r.ReadData))
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "way " {
		t.Fatalf("body = %q, want %q", body, "way ")
	}
	if got.EffectiveSize() != 4 {
		t.Fatalf("EffectiveSize() = %d, want 4", got.EffectiveSize())
	}
}

func TestReader_MatcherFiltersEntries(t *testing.T) {
	var buf bytes.Buffer
	w, err := OpenWriter(&buf, "tar")
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	for _, name := range []string{"keep.go", "skip.md"} {
		e := entry.New(name)
		if err = w.WriteHeader(e); err != nil {
			t.Fatalf("WriteHeader(%s): %v", name, err)
		}
		if err = w.FinishEntry(); err != nil {
			t.Fatalf("FinishEntry(%s): %v", name, err)
		}
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m := match.NewSet()
	m.AddInclude("*.go")
	r, err := OpenReader(bytes.NewReader(buf.Bytes()), WithMatcher(m))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got, err := r.NextHeader()
	if err != nil {
		t.Fatalf("NextHeader: %v", err)
	}
	if got.Pathname != "keep.go" {
		t.Fatalf("Pathname = %q, want %q (skip.md should have been filtered)", got.Pathname, "keep.go")
	}
	if _, err = r.NextHeader(); err != io.EOF {
		t.Fatalf("second NextHeader = %v, want io.EOF", err)
	}
}
