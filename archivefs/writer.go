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

package archivefs

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/goarchive/archerr"
	"github.com/nabbar/goarchive/blockwriter"
	"github.com/nabbar/goarchive/codec"
	"github.com/nabbar/goarchive/entry"
	"github.com/nabbar/goarchive/format"
	"github.com/nabbar/goarchive/format/types"
	"github.com/nabbar/goarchive/hstate"
	"github.com/nabbar/goarchive/linkresolver"
)

// Writer is a single archive write session bound to one format plug-in,
// one codec chain, and one hardlink resolution strategy.
type Writer struct {
	chain    *blockwriter.Chain
	fw       types.Writer
	state    *hstate.Machine
	resolver *linkresolver.Resolver
	curSize  int64
	curWritten int64
	cur      *entry.Entry
	log      logrus.FieldLogger
}

// WriterOption customizes OpenWriter.
type WriterOption func(*writerConfig)

type writerConfig struct {
	blockSize int
	codecs    []codec.Algorithm
	strategy  linkresolver.Strategy
	log       logrus.FieldLogger
}

// WithBlockSize overrides blockwriter.DefaultBlockSize.
func WithBlockSize(n int) WriterOption { return func(c *writerConfig) { c.blockSize = n } }

// WithCompression layers one or more codecs on top of the block
// aggregator, outermost first: the first codec listed sits directly on the
// aggregator, so entry bytes pass through the last one first.
func WithCompression(algos ...codec.Algorithm) WriterOption {
	return func(c *writerConfig) { c.codecs = algos }
}

// WithLinkStrategy selects how repeated (Dev, Ino) entries are emitted
// (§4.5). The default is linkresolver.New.
func WithLinkStrategy(s linkresolver.Strategy) WriterOption {
	return func(c *writerConfig) { c.strategy = s }
}

// WithWriterLogger installs a structured logger.
func WithWriterLogger(l logrus.FieldLogger) WriterOption {
	return func(c *writerConfig) { c.log = l }
}

// OpenWriter binds dst to formatName's writer plug-in, wrapped in whatever
// compression codecs WithCompression selects, sitting on top of a
// block-aggregating sink (§4.2, §4.4).
func OpenWriter(dst io.Writer, formatName string, opts ...WriterOption) (*Writer, error) {
	cfg := &writerConfig{
		blockSize: blockwriter.DefaultBlockSize,
		strategy:  linkresolver.New,
		log:       logrus.StandardLogger().WithField("component", "archivefs.Writer"),
	}
	for _, o := range opts {
		o(cfg)
	}

	chain := blockwriter.NewChain(dst, cfg.blockSize)
	for _, a := range cfg.codecs {
		if err := chain.PushCodec(a); err != nil {
			return nil, archerr.New(archerr.SeverityFatal, archerr.CodeCodecCorrupt, err)
		}
	}

	fw, err := format.NewWriter(formatName, chain)
	if err != nil {
		return nil, archerr.New(archerr.SeverityFatal, archerr.CodeOptionUnknown, err, formatName)
	}

	w := &Writer{
		chain:    chain,
		fw:       fw,
		state:    hstate.NewMachine(),
		resolver: linkresolver.New_(cfg.strategy),
		log:      cfg.log,
	}
	w.state.Transition(hstate.Header)
	return w, nil
}

// WriteHeader starts a new entry, rewriting it through the link resolver
// first (§4.5): a repeated (Dev, Ino) sighting may be rewritten into a
// zero-size TypeHardlink reference depending on the configured Strategy.
func (w *Writer) WriteHeader(e *entry.Entry) error {
	w.state.Require("WriteHeader", hstate.Header, hstate.Data)

	resolved := w.resolver.Resolve(e)
	if err := w.fw.WriteHeader(resolved); err != nil {
		w.state.ToFatal()
		return archerr.New(archerr.SeverityFatal, archerr.CodeCallbackIO, fmt.Errorf("writing header for %q: %w", e.Pathname, err))
	}
	w.cur = e
	w.curSize = resolved.EffectiveSize()
	w.curWritten = 0
	w.state.Transition(hstate.Data)
	return nil
}

// WriteData streams entry body bytes, truncating anything past the
// entry's declared size rather than passing it through to the format
// plug-in (§4.4's overwrite policy).
func (w *Writer) WriteData(p []byte) (int, error) {
	w.state.Require("WriteData", hstate.Data)
	accepted := len(p)
	remaining := w.curSize - w.curWritten
	if remaining <= 0 {
		return accepted, nil
	}
	toWrite := p
	if int64(len(toWrite)) > remaining {
		toWrite = toWrite[:remaining]
	}
	n, err := w.fw.Write(toWrite)
	w.curWritten += int64(n)
	if err != nil {
		w.state.ToFatal()
		return n, archerr.New(archerr.SeverityFatal, archerr.CodeCallbackIO, fmt.Errorf("writing body for %q: %w", w.cur.Pathname, err))
	}
	return accepted, nil
}

// FinishEntry closes out the current entry. If the caller wrote fewer
// bytes than the entry declared, the shortfall is padded with zeros so a
// reader still observes exactly the declared size (§4.4, §8's
// writer-under-delivers scenario); an overwrite was already truncated by
// WriteData.
func (w *Writer) FinishEntry() error {
	w.state.Require("FinishEntry", hstate.Data)
	if w.cur != nil && w.curWritten < w.curSize {
		if err := w.padZero(w.curSize - w.curWritten); err != nil {
			w.state.ToFatal()
			return archerr.New(archerr.SeverityFatal, archerr.CodeCallbackIO, fmt.Errorf("padding %q to declared size: %w", w.cur.Pathname, err))
		}
	}

	w.cur = nil
	w.state.Transition(hstate.Header)
	return nil
}

const zeroPadChunk = 4096

// padZero writes n zero bytes through the format plug-in.
func (w *Writer) padZero(n int64) error {
	var zero [zeroPadChunk]byte
	for n > 0 {
		chunk := int64(len(zero))
		if n < chunk {
			chunk = n
		}
		if _, err := w.fw.Write(zero[:chunk]); err != nil {
			return err
		}
		w.curWritten += chunk
		n -= chunk
	}
	return nil
}

// Close finalizes the format (end-of-archive markers, footers) and
// cascades through the codec chain and block aggregator.
func (w *Writer) Close() error {
	var err error
	if ferr := w.fw.Close(); ferr != nil {
		err = ferr
	}
	if cerr := w.chain.Close(); cerr != nil && err == nil {
		err = cerr
	}
	w.state.Transition(hstate.Closed)
	return err
}

// LogicalBytes and PhysicalBytes mirror blockwriter.Chain's counters,
// exposing the write-side byte-accounting invariant (§8: writer-close
// byte-count equality) to callers.
func (w *Writer) LogicalBytes() int64  { return w.chain.LogicalBytes() }
func (w *Writer) PhysicalBytes() int64 { return w.chain.PhysicalBytes() }
