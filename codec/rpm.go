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
	"encoding/binary"
	"errors"
	"io"
)

// rpm is not itself a compression codec: an .rpm file is a lead, a
// signature header, a metadata header, and then a payload (conventionally a
// gzip- or xz-compressed cpio archive). The "rpm filter" strips the first
// three sections so the rest of the pipeline can bid on the payload's own
// compression the way gzip-of-bzip2-of-tar composes (§4.1): after this
// filter a fresh Detect/Reader call on the remainder finds the real codec.
const (
	rpmLeadSize  = 96
	rpmHeaderMagic0 = 0x8e
	rpmHeaderMagic1 = 0xad
	rpmHeaderMagic2 = 0xe8
	rpmHeaderMagic3 = 0x01
)

func newRPMReader(r io.Reader) (io.ReadCloser, error) {
	lead := make([]byte, rpmLeadSize)
	if _, err := io.ReadFull(r, lead); err != nil {
		return nil, err
	}
	if lead[0] != 0xED || lead[1] != 0xAB || lead[2] != 0xEE || lead[3] != 0xDB {
		return nil, errors.New("codec: not an rpm package (bad lead magic)")
	}

	if err := skipRPMHeader(r); err != nil { // signature header
		return nil, err
	}
	if err := skipRPMHeader(r); err != nil { // metadata header
		return nil, err
	}

	return io.NopCloser(r), nil
}

// skipRPMHeader reads one RPM header section (8-byte magic+reserved, a
// 8-byte index/data-size record, the index entries, and the data blob) and
// discards it, leaving r positioned at the next section.
func skipRPMHeader(r io.Reader) error {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return err
	}
	if magic[0] != rpmHeaderMagic0 || magic[1] != rpmHeaderMagic1 || magic[2] != rpmHeaderMagic2 || magic[3] != rpmHeaderMagic3 {
		return errors.New("codec: rpm header magic mismatch")
	}

	var counts [8]byte
	if _, err := io.ReadFull(r, counts[:]); err != nil {
		return err
	}
	nIndex := binary.BigEndian.Uint32(counts[0:4])
	nData := binary.BigEndian.Uint32(counts[4:8])

	// Each index entry is 16 bytes; the data store follows, padded to an
	// 8-byte boundary.
	if _, err := io.CopyN(io.Discard, r, int64(nIndex)*16); err != nil {
		return err
	}
	pad := (8 - int64(nData)%8) % 8
	if _, err := io.CopyN(io.Discard, r, int64(nData)+pad); err != nil {
		return err
	}
	return nil
}
