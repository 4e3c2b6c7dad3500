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

package filter

import (
	"io"

	"github.com/nabbar/goarchive/codec"
)

// sniffWindow is how many leading bytes a Chain offers to codec.Detect
// before committing to a compression guess. It must cover the longest
// signature any registered Algorithm bids on.
const sniffWindow = 8

// Chain is a stack of Elements, source at the bottom, most recently pushed
// codec at the top. Every public read-side call operates on the top.
type Chain struct {
	elements []Element
	maxDepth int
}

// NewChain builds a one-element chain wrapping the client's source reader.
// skip, if the source supports a fast seek, lets Skip bypass read+discard.
func NewChain(src io.Reader, maxAutoDepth int) *Chain {
	var skipper func(int64) int64
	if s, ok := src.(io.Seeker); ok {
		skipper = func(n int64) int64 {
			cur, err := s.Seek(0, io.SeekCurrent)
			if err != nil {
				return 0
			}
			end, err := s.Seek(n, io.SeekCurrent)
			if err != nil {
				return 0
			}
			return end - cur
		}
	}
	if maxAutoDepth <= 0 {
		maxAutoDepth = 8
	}
	return &Chain{
		elements: []Element{newBufElement(src, skipper, nil)},
		maxDepth: maxAutoDepth,
	}
}

func (c *Chain) top() Element { return c.elements[len(c.elements)-1] }

// Push adds a new Element on top of the chain, built from the current top.
func (c *Chain) Push(build func(up Element) (Element, error)) error {
	el, err := build(c.top())
	if err != nil {
		return err
	}
	c.elements = append(c.elements, el)
	return nil
}

// PushCodec decompresses the chain's current top through algo.
func (c *Chain) PushCodec(algo codec.Algorithm) error {
	return c.Push(func(up Element) (Element, error) {
		rc, err := algo.Reader(&elementReader{up: up})
		if err != nil {
			return nil, err
		}
		return newBufElement(rc, nil, nil), nil
	})
}

// Autodetect repeatedly bids the current top's leading bytes against the
// codec registry and, as long as a strictly positive bid wins, layers the
// matching decompressor on top and tries again — exactly the "peel one
// layer, re-bid the remainder" composition the design notes describe for
// gzip-of-bzip2-of-tar (§4.1, §9). It stops at the first no-match, at EOF,
// or after maxDepth layers (a defense against a pathological stream that
// never stops matching).
func (c *Chain) Autodetect() error {
	for depth := 0; depth < c.maxDepth; depth++ {
		head, avail, err := c.top().ReadAhead(sniffWindow)
		if err != nil {
			return err
		}
		if avail == 0 {
			return nil
		}
		algo := codec.Detect(head)
		if algo == codec.None {
			return nil
		}
		if err = c.PushCodec(algo); err != nil {
			return err
		}
	}
	return nil
}

// ReadAhead exposes the current top element's read-ahead window.
func (c *Chain) ReadAhead(min int) ([]byte, int, error) { return c.top().ReadAhead(min) }

// Consume advances the current top element's position by n bytes.
func (c *Chain) Consume(n int) int { return c.top().Consume(n) }

// Skip advances the position by n bytes, falling back to read+discard
// through ReadAhead/Consume for whatever the top element's own Skip did
// not cover (only a leaf over an io.Seeker can seek).
func (c *Chain) Skip(n int64) int64 {
	skipped := c.top().Skip(n)
	remain := n - skipped
	for remain > 0 {
		want := remain
		const discardChunk = 64 * 1024
		if want > discardChunk {
			want = discardChunk
		}
		_, avail, err := c.ReadAhead(int(want))
		if err != nil || avail == 0 {
			break
		}
		take := avail
		if int64(take) > remain {
			take = int(remain)
		}
		got := c.Consume(take)
		skipped += int64(got)
		remain -= int64(got)
		if got == 0 {
			break
		}
	}
	return skipped
}

// Close cascades down through every element, innermost codec first.
func (c *Chain) Close() error {
	var first error
	for i := len(c.elements) - 1; i >= 0; i-- {
		if err := c.elements[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BytesConsumed reports the top element's delivered byte count — the
// decompressed/final-layer count a format plug-in sees.
func (c *Chain) BytesConsumed() int64 { return c.top().BytesConsumed() }

// SourceBytesConsumed reports how many bytes have been pulled from the
// original client source, underneath every codec layer.
func (c *Chain) SourceBytesConsumed() int64 { return c.elements[0].BytesConsumed() }

// Reader exposes the chain's current top element as a plain io.Reader, for
// format plug-ins (tar, zip, cpio, ar) that only know how to read that
// interface. Call it only after Autodetect/PushCodec calls are done: the
// returned value is bound to whichever element is on top right now.
func (c *Chain) Reader() io.Reader { return &elementReader{up: c.top()} }

// elementReader adapts an Element back into an io.Reader so a codec's
// decompressor (which only knows io.Reader) can sit on top of it.
type elementReader struct{ up Element }

func (a *elementReader) Read(p []byte) (int, error) {
	data, avail, err := a.up.ReadAhead(1)
	if err != nil {
		return 0, err
	}
	if avail == 0 {
		return 0, io.EOF
	}
	n := copy(p, data)
	a.up.Consume(n)
	return n, nil
}
