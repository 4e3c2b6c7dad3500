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

// Package linkresolver deduplicates hardlinked entries on the write side
// (§4.5): entries sharing a (Dev, Ino) pair are recognized as the same
// underlying file, and every sighting after the first is, depending on
// Strategy, either rewritten into a link reference or emitted as its own
// full copy.
package linkresolver

import (
	"github.com/nabbar/goarchive/entry"
)

// Strategy selects how a repeated (Dev, Ino) pair is emitted. The three
// values mirror the three conventions §4.5 names.
type Strategy uint8

const (
	// Old emits every sighting as a full regular-file entry with its own
	// copy of the data, forgoing deduplication entirely. This is the
	// tar-old/cpio-old convention: a reader need not understand
	// hardlink-reference entries at all.
	Old Strategy = iota
	// New emits the first sighting with its full body and every later
	// sighting as a zero-size TypeHardlink reference to the first path.
	// This is what ustar/pax/newc writers do and what most readers expect.
	New
	// Mixed applies a per-sighting Heuristic to choose, sighting by
	// sighting, between New's dedup and Old's duplication ("heuristic per
	// format; behaviour is a property of the chosen format plug-in").
	// This resolver is format-agnostic, so the real per-format rule must
	// be supplied via WithHeuristic; without one, Mixed narrows to the
	// same behaviour as New. Callers that need a specific format's actual
	// pax-restricted heuristic should supply it explicitly rather than
	// rely on this default.
	Mixed
)

type devino struct {
	dev uint64
	ino uint64
}

type linkSet struct {
	firstPath string
	seen      int
}

// Heuristic decides, under Mixed strategy, whether the given sighting
// (1-based, out of total Nlink) of a link group should be deduplicated
// into a hardlink reference (true) or duplicated in full (false).
type Heuristic func(e *entry.Entry, sighting int, total uint32) bool

// Option customizes a Resolver built by New_.
type Option func(*Resolver)

// WithHeuristic installs the format-local decision Mixed strategy needs.
func WithHeuristic(h Heuristic) Option {
	return func(r *Resolver) { r.heuristic = h }
}

// Resolver tracks every (Dev, Ino) pair seen so far in a single archive
// write session. It is not safe for concurrent use; a write session is
// already inherently sequential (§5).
type Resolver struct {
	strategy  Strategy
	heuristic Heuristic
	sets      map[devino]*linkSet
}

// New_ constructs a Resolver using the given strategy. Underscore-suffixed
// to avoid colliding with the New strategy constant.
func New_(strategy Strategy, opts ...Option) *Resolver {
	r := &Resolver{
		strategy: strategy,
		sets:     make(map[devino]*linkSet),
	}
	for _, o := range opts {
		o(r)
	}
	if r.heuristic == nil {
		r.heuristic = func(*entry.Entry, int, uint32) bool { return true }
	}
	return r
}

// Resolve decides how e should actually be emitted: unchanged, or cloned
// and rewritten into a TypeHardlink reference naming the first-seen path
// for its (Dev, Ino) pair.
func (r *Resolver) Resolve(e *entry.Entry) *entry.Entry {
	if e.Nlink <= 1 || e.Type != entry.TypeRegular {
		return e
	}
	key := devino{dev: e.Dev, ino: e.Ino}

	set, seen := r.sets[key]
	if !seen {
		r.sets[key] = &linkSet{firstPath: e.Pathname, seen: 1}
		return e
	}
	set.seen++

	switch r.strategy {
	case Old:
		return e
	case Mixed:
		if !r.heuristic(e, set.seen, e.Nlink) {
			return e
		}
	}

	ref := e.Clone()
	ref.Type = entry.TypeHardlink
	ref.Hardlink = set.firstPath
	ref.Size = 0
	return ref
}
