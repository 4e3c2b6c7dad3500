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

// Package filter implements the read-side pipeline (§4.1): a linearly
// chained sequence of filter elements, each offering read-ahead/consume
// over a growing, owned buffer so that a contiguous run of bytes can be
// handed to a caller without re-copying on every call.
package filter

import (
	"io"
)

// Element is one link in the read pipeline. Index 0 is the client-callback
// shim closest to the source; each subsequent Element sits on top of the
// one before it.
type Element interface {
	// ReadAhead attempts to expose at least min contiguous bytes from the
	// current position without advancing it. avail may exceed min. On a
	// short stream it returns avail < min; at true EOF it returns avail
	// == 0. avail < 0 together with a non-nil error signals a read error.
	ReadAhead(min int) (data []byte, avail int, err error)
	// Consume advances the logical position by n bytes, returning the
	// amount actually consumed (less than n only at EOF).
	Consume(n int) int
	// Skip advances the position by n bytes, preferring a fast underlying
	// seek when available. A return of 0 means "not supported, read and
	// discard instead."
	Skip(n int64) int64
	// Close releases this element's codec state and cascades to upstream.
	Close() error
	// BytesConsumed is the monotonic count of bytes this element has
	// delivered to its downstream consumer.
	BytesConsumed() int64
}

// bufElement is the one concrete Element implementation: it owns a single
// growing []byte window over unconsumed bytes read from src. Both the leaf
// (wrapping the client source) and every codec element (wrapping a
// compress/decompress reader chained onto the element below it) are
// bufElements; only the io.Reader they read from differs.
type bufElement struct {
	src io.Reader

	buf []byte // backing array, monotonically grown to the largest min seen
	pos int     // start of the unconsumed window
	end int     // end of valid data within buf

	eof     bool
	err     error
	advance int64 // total bytes ever consumed (position at this element's output)

	skipper func(n int64) int64
	closer  func() error
}

func newBufElement(src io.Reader, skipper func(int64) int64, closer func() error) *bufElement {
	return &bufElement{
		src:     src,
		buf:     make([]byte, 0, 4096),
		skipper: skipper,
		closer:  closer,
	}
}

// compact slides the unconsumed window down to offset 0 so that growth and
// subsequent reads always have room at the end of buf. Apart from growTo's
// move into a larger array, it is the only copy this element performs on
// bytes it has already buffered, which is
// what bounds total copying to O(stream length) even under adversarial
// read-ahead patterns (the zero-copy rule, §4.1).
func (e *bufElement) compact() {
	if e.pos == 0 {
		return
	}
	n := copy(e.buf[:cap(e.buf)], e.buf[e.pos:e.end])
	e.end = n
	e.pos = 0
	e.buf = e.buf[:e.end]
}

func (e *bufElement) growTo(min int) {
	if cap(e.buf) >= min {
		return
	}
	nb := make([]byte, e.end, min)
	copy(nb, e.buf[:e.end])
	e.buf = nb
}

func (e *bufElement) fill(min int) {
	if e.err != nil {
		return
	}
	// Already satisfied (or can never be, past EOF): skip compact/grow
	// entirely. Without this short-circuit, a ReadAhead(small)+Consume
	// loop recompacts the still-sufficient buffer on every call, turning
	// an O(stream length) scan into O(stream length squared).
	if e.end-e.pos >= min || e.eof {
		return
	}
	e.compact()
	e.growTo(min)

	retried := false
	for e.end < min && !e.eof {
		n, err := e.src.Read(e.buf[e.end:cap(e.buf)])
		if n > 0 {
			e.end += n
			e.buf = e.buf[:e.end]
		}
		if err != nil {
			if err == io.EOF {
				e.eof = true
			} else {
				e.err = err
			}
			break
		}
		if n == 0 {
			// A reader returning (0, nil) forever would spin; treat it as
			// a short read attempt and try again once.
			if retried {
				break
			}
			retried = true
			continue
		}
		retried = false
	}
}

func (e *bufElement) ReadAhead(min int) ([]byte, int, error) {
	if min < 0 {
		min = 0
	}
	e.fill(min)
	if e.err != nil {
		return nil, -1, e.err
	}
	avail := e.end - e.pos
	return e.buf[e.pos:e.end], avail, nil
}

func (e *bufElement) Consume(n int) int {
	if avail := e.end - e.pos; n > avail {
		n = avail
	}
	if n < 0 {
		n = 0
	}
	e.pos += n
	e.advance += int64(n)
	return n
}

func (e *bufElement) Skip(n int64) int64 {
	// First drain anything already buffered so a seek-based skip and a
	// buffered skip compose correctly.
	var skipped int64
	if buffered := int64(e.end - e.pos); buffered > 0 {
		take := buffered
		if take > n {
			take = n
		}
		e.Consume(int(take))
		skipped += take
		n -= take
	}
	if n == 0 {
		return skipped
	}
	if e.skipper != nil {
		if s := e.skipper(n); s > 0 {
			e.advance += s
			return skipped + s
		}
	}
	return skipped
}

func (e *bufElement) Close() error {
	var err error
	if c, ok := e.src.(io.Closer); ok {
		err = c.Close()
	}
	if e.closer != nil {
		if cerr := e.closer(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (e *bufElement) BytesConsumed() int64 {
	return e.advance
}
