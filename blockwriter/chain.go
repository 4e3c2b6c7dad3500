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

package blockwriter

import (
	"io"

	"github.com/nabbar/goarchive/codec"
)

// Chain is a stack of io.WriteCloser layers: the bottom is a *Writer (the
// block aggregator) wrapping the real sink, and each Push adds one more
// codec on top, closest to the entry's plaintext bytes. Writes made by a
// format plug-in go through Top(); closing the chain closes every layer,
// compressor first, so trailing codec state (gzip footers, xz index
// blocks) reaches the aggregator before it pads and flushes.
type Chain struct {
	layers []io.WriteCloser
	base   *Writer
}

// NewChain wraps sink in a block aggregator of the given block size. Push
// additional codec layers with PushCodec before writing entry data.
func NewChain(sink io.Writer, blockSize int) *Chain {
	base := New(sink, blockSize)
	return &Chain{layers: []io.WriteCloser{base}, base: base}
}

// PushCodec layers algo's compressor on top of the chain's current top.
func (c *Chain) PushCodec(algo codec.Algorithm) error {
	w, err := algo.Writer(c.Top())
	if err != nil {
		return err
	}
	c.layers = append(c.layers, w)
	return nil
}

// Top is the writer entry data should be written to.
func (c *Chain) Top() io.WriteCloser { return c.layers[len(c.layers)-1] }

func (c *Chain) Write(p []byte) (int, error) { return c.Top().Write(p) }

// Close closes every layer from outermost codec down to the block
// aggregator, so compressor trailers are flushed before the final block is
// padded and emitted.
func (c *Chain) Close() error {
	var first error
	for i := len(c.layers) - 1; i >= 0; i-- {
		if err := c.layers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LogicalBytes is the count of bytes the base block aggregator has
// received, before padding: the output of the codec layers, or the format
// plug-ins' bytes when no codec is pushed.
func (c *Chain) LogicalBytes() int64 { return c.base.LogicalBytes() }

// PhysicalBytes is the count of bytes written to the underlying sink,
// including block padding.
func (c *Chain) PhysicalBytes() int64 { return c.base.PhysicalBytes() }
