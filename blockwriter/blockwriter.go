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

// Package blockwriter implements the write-side pipeline (§4.2): entries are
// handed plaintext bytes, which pass through zero or more codec writers and
// land in a fixed-size block aggregator in front of the real output stream
// (a file, a pipe, a socket). Many tape-oriented formats (cpio, classic tar)
// expect output in fixed-size blocks with the final block zero-padded; the
// aggregator here is what gives every format plug-in that behavior for free.
package blockwriter

import (
	"io"
)

// DefaultBlockSize matches the historical tar/cpio default of 20 512-byte
// records (10240 bytes) most archivers still negotiate.
const DefaultBlockSize = 10240

// Writer aggregates writes into fixed-size blocks, padding the final
// flush with zero bytes so every block handed to the underlying sink is
// exactly BlockSize bytes (the convention block-oriented tape formats
// require). A BlockSize of 0 or 1 disables aggregation: every Write passes
// straight through and Close/Flush are no-ops beyond the underlying sink.
type Writer struct {
	sink      io.Writer
	blockSize int

	buf        []byte
	logical    int64 // bytes the client has handed to Write
	physical   int64 // bytes actually written to sink, including padding
	closed     bool
}

// New wraps sink with a block aggregator of the given block size.
func New(sink io.Writer, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = 1
	}
	return &Writer{sink: sink, blockSize: blockSize, buf: make([]byte, 0, blockSize)}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	w.logical += int64(len(p))
	if w.blockSize == 1 {
		n, err := w.sink.Write(p)
		w.physical += int64(n)
		return n, err
	}

	written := 0
	for len(p) > 0 {
		room := w.blockSize - len(w.buf)
		take := room
		if take > len(p) {
			take = len(p)
		}
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		written += take

		if len(w.buf) == w.blockSize {
			if err := w.flushBlock(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (w *Writer) flushBlock() error {
	n, err := w.sink.Write(w.buf)
	w.physical += int64(n)
	w.buf = w.buf[:0]
	return err
}

// Flush pads and emits any partial block currently buffered without
// closing the sink. Safe to call repeatedly; a no-op if the buffer is
// empty.
func (w *Writer) Flush() error {
	if w.blockSize == 1 || len(w.buf) == 0 {
		return nil
	}
	for len(w.buf) < w.blockSize {
		w.buf = append(w.buf, 0)
	}
	return w.flushBlock()
}

// Close pads and flushes any trailing partial block, then closes the sink
// if it implements io.Closer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.Flush()
	if c, ok := w.sink.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// LogicalBytes is the count of bytes handed to Write, excluding padding.
func (w *Writer) LogicalBytes() int64 { return w.logical }

// PhysicalBytes is the count of bytes actually written to the sink,
// including any zero padding emitted by Flush/Close.
func (w *Writer) PhysicalBytes() int64 { return w.physical }
