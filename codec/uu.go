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
	"bytes"
	"errors"
	"io"
)

// uu implements classic uuencode/uudecode (RFC-less, the 4.2BSD convention):
// a "begin MODE NAME" line, lines of encoded bytes each prefixed by a length
// character, and a terminating "end" line. No package in this corpus or the
// wider ecosystem maintains a uuencoding codec (it predates MIME-era
// tooling), so this is hand-rolled against the standard library only.

const uuLineMax = 45

func uuEnc(b byte) byte {
	if b == 0 {
		return '`'
	}
	return (b & 0x3f) + ' '
}

func uuDec(b byte) byte {
	if b == '`' {
		return 0
	}
	return (b - ' ') & 0x3f
}

type uuReader struct {
	br   *bufio.Reader
	cur  bytes.Buffer
	done bool
}

func newUUReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix([]byte(line), []byte("begin ")) {
		return nil, errors.New("codec: not a uuencoded stream")
	}
	return &uuReader{br: br}, nil
}

func (u *uuReader) Read(p []byte) (int, error) {
	for u.cur.Len() == 0 {
		if u.done {
			return 0, io.EOF
		}
		raw, err := u.br.ReadString('\n')
		if err != nil && raw == "" {
			return 0, err
		}
		line := bytes.TrimRight([]byte(raw), "\r\n")
		if len(line) == 0 {
			continue
		}
		if string(line) == "end" || string(line) == "`\nend" {
			u.done = true
			continue
		}
		n := int(uuDec(line[0]))
		if n == 0 {
			u.done = true
			continue
		}
		decodeLine(&u.cur, line[1:], n)
	}
	return u.cur.Read(p)
}

func decodeLine(out *bytes.Buffer, enc []byte, n int) {
	for i := 0; i+4 <= len(enc) && n > 0; i += 4 {
		c0, c1, c2, c3 := uuDec(enc[i]), uuDec(enc[i+1]), uuDec(enc[i+2]), uuDec(enc[i+3])
		b0 := c0<<2 | c1>>4
		b1 := c1<<4 | c2>>2
		b2 := c2<<6 | c3
		if n > 0 {
			out.WriteByte(b0)
			n--
		}
		if n > 0 {
			out.WriteByte(b1)
			n--
		}
		if n > 0 {
			out.WriteByte(b2)
			n--
		}
	}
}

func (u *uuReader) Close() error { return nil }

type uuWriter struct {
	w       io.Writer
	pending []byte
	started bool
}

func newUUWriter(w io.Writer) io.WriteCloser {
	return &uuWriter{w: w}
}

func (u *uuWriter) Write(p []byte) (int, error) {
	if !u.started {
		if _, err := io.WriteString(u.w, "begin 644 data\n"); err != nil {
			return 0, err
		}
		u.started = true
	}
	u.pending = append(u.pending, p...)
	for len(u.pending) >= uuLineMax {
		if err := u.emitLine(u.pending[:uuLineMax]); err != nil {
			return 0, err
		}
		u.pending = u.pending[uuLineMax:]
	}
	return len(p), nil
}

func (u *uuWriter) emitLine(chunk []byte) error {
	var line bytes.Buffer
	line.WriteByte(uuEnc(byte(len(chunk))))
	for i := 0; i < len(chunk); i += 3 {
		var b0, b1, b2 byte
		b0 = chunk[i]
		if i+1 < len(chunk) {
			b1 = chunk[i+1]
		}
		if i+2 < len(chunk) {
			b2 = chunk[i+2]
		}
		line.WriteByte(uuEnc(b0 >> 2))
		line.WriteByte(uuEnc(b0<<4 | b1>>4))
		line.WriteByte(uuEnc(b1<<2 | b2>>6))
		line.WriteByte(uuEnc(b2))
	}
	line.WriteByte('\n')
	_, err := u.w.Write(line.Bytes())
	return err
}

func (u *uuWriter) Close() error {
	if !u.started {
		if _, err := io.WriteString(u.w, "begin 644 data\n"); err != nil {
			return err
		}
	}
	if len(u.pending) > 0 {
		if err := u.emitLine(u.pending); err != nil {
			return err
		}
		u.pending = nil
	}
	_, err := io.WriteString(u.w, "`\nend\n")
	return err
}
