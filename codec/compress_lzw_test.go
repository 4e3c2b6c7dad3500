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

package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestCompress_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("abcabcabcabc"), 100)

	var buf bytes.Buffer
	w := newCompressWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), compressMagic) {
		t.Fatalf("output missing the ncompress magic prefix")
	}

	r, err := newCompressReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("newCompressReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got len=%d, want len=%d", len(got), len(payload))
	}
}

func TestCompress_RejectsBadMagic(t *testing.T) {
	_, err := newCompressReader(bytes.NewReader([]byte("not a compress stream")))
	if err == nil {
		t.Fatal("newCompressReader should reject a non-matching magic")
	}
}

func TestCompress_EmptyPayloadStillWritesMagic(t *testing.T) {
	var buf bytes.Buffer
	w := newCompressWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), compressMagic) {
		t.Fatal("closing with no writes should still emit the magic header")
	}
}
