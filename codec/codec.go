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

// Package codec enumerates the stream transforms (§6.5 filter formats) a
// pipeline element can wrap: gzip, bzip2, xz (no legacy .lzma), lz4, the classic Lempel-
// Ziv "compress" (.Z), uuencoding, lzip, and the rpm lead/header stripper.
// Each Algorithm knows how to bid on a byte prefix (Detect) and how to wrap
// an io.Reader/io.WriteCloser (Reader/Writer); the filter package drives
// both through the read-ahead/consume contract.
package codec

import "bytes"

type Algorithm uint8

const (
	None Algorithm = iota
	Gzip
	Bzip2
	XZ
	LZ4
	Compress
	UU
	Lzip
	RPM
)

func List() []Algorithm {
	return []Algorithm{None, Gzip, Bzip2, XZ, LZ4, Compress, UU, Lzip, RPM}
}

func (a Algorithm) IsNone() bool {
	return a == None
}

func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	case LZ4:
		return "lz4"
	case Compress:
		return "compress"
	case UU:
		return "uu"
	case Lzip:
		return "lzip"
	case RPM:
		return "rpm"
	default:
		return "none"
	}
}

func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case XZ:
		return ".xz"
	case LZ4:
		return ".lz4"
	case Compress:
		return ".Z"
	case Lzip:
		return ".lz"
	case RPM:
		return ".rpm"
	default:
		return ""
	}
}

// minBidHeader is the longest prefix any Algorithm's Bid compares against.
// filter.Chain does not read it: its autodetect loop peeks a fixed window
// of its own.
const minBidHeader = 6

// Bid inspects a header prefix and returns a confidence score in "bits of
// signature matched" (§4.1 autodetection): zero means "no". Longer, more
// specific signatures bid higher so a tie between a short and a long
// matching prefix favors the more specific codec.
func (a Algorithm) Bid(h []byte) int {
	switch a {
	case Gzip:
		if hasPrefix(h, []byte{0x1f, 0x8b}) {
			return 16
		}
	case Bzip2:
		if len(h) >= 4 && hasPrefix(h, []byte{'B', 'Z', 'h'}) && h[3] >= '0' && h[3] <= '9' {
			return 32
		}
	case XZ:
		if hasPrefix(h, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}) {
			return 48
		}
	case LZ4:
		if hasPrefix(h, []byte{0x04, 0x22, 0x4D, 0x18}) {
			return 32
		}
	case Compress:
		if hasPrefix(h, []byte{0x1f, 0x9d}) {
			return 16
		}
	case UU:
		if hasPrefix(h, []byte("begin ")) {
			return 8
		}
	case Lzip:
		if hasPrefix(h, []byte("LZIP")) {
			return 32
		}
	case RPM:
		if hasPrefix(h, []byte{0xED, 0xAB, 0xEE, 0xDB}) {
			return 32
		}
	}
	return 0
}

func hasPrefix(h, sig []byte) bool {
	return len(h) >= len(sig) && bytes.Equal(h[:len(sig)], sig)
}

// Detect runs every registered Algorithm's Bid against a header prefix and
// returns the highest strictly-positive bidder; ties are broken by List
// order, matching the format registry's bidding protocol (§4.3).
func Detect(h []byte) Algorithm {
	best := None
	bestBid := 0
	for _, a := range List() {
		if a == None {
			continue
		}
		if b := a.Bid(h); b > bestBid {
			best, bestBid = a, b
		}
	}
	return best
}
