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

package archerr

// Codes owned by the core packages, numbered from 100 up to CodeCoreMax.
// The format plug-ins (format/tarfmt, format/zipfmt, ...) register no
// ranges of their own.
const (
	CodeUnrecognizedFormat Code = iota + 100
	CodeNoRegistrants
	CodeBidFatal
	CodeTruncatedHeader
	CodeTruncatedData
	CodeChecksumMismatch
	CodeIllegalState
	CodeCallbackIO
	CodeCodecCorrupt
	CodeCodecTrailer
	CodeOptionSyntax
	CodeOptionUnknown
	CodeRegistryFull
	CodeSparseOverlap
	CodeSizeContract
)

const CodeCoreMax = CodeSizeContract + 1

func init() {
	Register(CodeUnrecognizedFormat, coreMessage)
}

func coreMessage(c Code) string {
	switch c {
	case CodeUnrecognizedFormat:
		return "no registered format recognized this stream"
	case CodeNoRegistrants:
		return "no format plug-ins registered on this handle"
	case CodeBidFatal:
		return "a format plug-in failed while bidding on the stream"
	case CodeTruncatedHeader:
		return "truncated header: premature end of archive"
	case CodeTruncatedData:
		return "truncated data: premature end of archive"
	case CodeChecksumMismatch:
		return "checksum mismatch in entry header"
	case CodeIllegalState:
		return "illegal usage: operation %s not permitted in state %s"
	case CodeCallbackIO:
		return "client callback returned an error"
	case CodeCodecCorrupt:
		return "corrupt compressed data"
	case CodeCodecTrailer:
		return "codec trailer did not match expected value"
	case CodeOptionSyntax:
		return "malformed option string"
	case CodeOptionUnknown:
		return "option key %q not recognized by any registered plug-in"
	case CodeRegistryFull:
		return "format registry is full"
	case CodeSparseOverlap:
		return "sparse map regions overlap or are out of order"
	case CodeSizeContract:
		return "entry %q declared size %d but %d bytes were written"
	default:
		return ""
	}
}
