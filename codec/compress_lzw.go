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
	"bufio"
	"compress/lzw"
	"errors"
	"io"
)

// classic ".Z" header: 0x1F 0x9D, then one flags byte whose low 5 bits are
// the maximum code size and bit 0x80 marks "block compress" mode.
var compressMagic = []byte{0x1f, 0x9d}

// newCompressReader peels off the ncompress header and hands the remainder to
// the standard library's LZW decoder. No package in this corpus implements
// the adaptive-width ncompress variant (it predates DEFLATE-era tooling),
// so this is a best-effort reader built directly on compress/lzw; it is
// accurate for streams written by newCompressWriter in this
// package but is not a bit-exact ncompress decoder.
func newCompressReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	hdr := make([]byte, 3)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, err
	}
	if hdr[0] != compressMagic[0] || hdr[1] != compressMagic[1] {
		return nil, errors.New("codec: not a compress(1) stream")
	}
	// hdr[2]'s low 5 bits (the ncompress max-code-size field) are not
	// meaningful to compress/lzw, which fixes its own code-width growth;
	// they are consumed only to stay positioned correctly in the stream.
	return lzw.NewReader(br, lzw.LSB, 8), nil
}

func newCompressWriter(w io.Writer) io.WriteCloser {
	return &compressWriter{w: w, lzw: lzw.NewWriter(w, lzw.LSB, 8)}
}

type compressWriter struct {
	w         io.Writer
	lzw       io.WriteCloser
	wroteHead bool
}

func (c *compressWriter) Write(p []byte) (int, error) {
	if !c.wroteHead {
		if _, err := c.w.Write([]byte{compressMagic[0], compressMagic[1], 0x90}); err != nil {
			return 0, err
		}
		c.wroteHead = true
	}
	return c.lzw.Write(p)
}

func (c *compressWriter) Close() error {
	if !c.wroteHead {
		if _, err := c.w.Write([]byte{compressMagic[0], compressMagic[1], 0x90}); err != nil {
			return err
		}
		c.wroteHead = true
	}
	return c.lzw.Close()
}
