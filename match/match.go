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

// Package match implements the entry inclusion/exclusion engine (§4.6):
// glob pattern sets, optional case folding, and an mtime range filter,
// composed by intersection. No filter looks at ctime.
package match

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/nabbar/goarchive/entry"
)

// Pattern is one glob rule plus a count of how many entries it has matched,
// so a caller can report patterns that matched nothing (a common signal of
// a typo in caller-supplied filter lists).
type Pattern struct {
	Glob    string
	hits    int
}

func (p *Pattern) matches(path string, fold bool) bool {
	g, s := p.Glob, path
	if fold {
		g, s = strings.ToLower(g), strings.ToLower(s)
	}
	ok, err := filepath.Match(g, s)
	if err != nil {
		return false
	}
	if !ok {
		// filepath.Match treats "/" as a path separator that "*" cannot
		// cross; archive pathnames are always "/"-separated regardless of
		// host OS, so fall back to a full-string glob against each
		// "/"-joined suffix to let "*.go" match "pkg/sub/file.go" the way
		// archivers conventionally allow.
		parts := strings.Split(s, "/")
		for i := range parts {
			if ok2, _ := filepath.Match(g, strings.Join(parts[i:], "/")); ok2 {
				return true
			}
		}
		return false
	}
	return true
}

// Set is a collection of include and exclude patterns together with an
// optional time window. An entry passes the set when: no include patterns
// are configured, or at least one matches; AND no exclude pattern matches;
// AND the entry's modification time (if set) falls within [after, before).
type Set struct {
	Include    []*Pattern
	Exclude    []*Pattern
	FoldCase   bool
	After      time.Time
	Before     time.Time
	haveAfter  bool
	haveBefore bool
}

// NewSet returns an empty Set that matches everything until patterns or a
// time window are added.
func NewSet() *Set { return &Set{} }

func (s *Set) AddInclude(glob string) { s.Include = append(s.Include, &Pattern{Glob: glob}) }
func (s *Set) AddExclude(glob string) { s.Exclude = append(s.Exclude, &Pattern{Glob: glob}) }

func (s *Set) SetAfter(t time.Time) {
	s.After = t
	s.haveAfter = true
}

func (s *Set) SetBefore(t time.Time) {
	s.Before = t
	s.haveBefore = true
}

// Match reports whether e should be kept.
func (s *Set) Match(e *entry.Entry) bool {
	if len(s.Include) > 0 {
		matched := false
		for _, p := range s.Include {
			if p.matches(e.Pathname, s.FoldCase) {
				p.hits++
				matched = true
			}
		}
		if !matched {
			return false
		}
	}
	for _, p := range s.Exclude {
		if p.matches(e.Pathname, s.FoldCase) {
			p.hits++
			return false
		}
	}
	if (s.haveAfter || s.haveBefore) && e.MTime.IsSet {
		mt := e.MTime.Time()
		if s.haveAfter && mt.Before(s.After) {
			return false
		}
		if s.haveBefore && !mt.Before(s.Before) {
			return false
		}
	}
	return true
}

// Unmatched returns the glob text of every include/exclude pattern that
// never matched a single entry across the set's lifetime.
func (s *Set) Unmatched() []string {
	var out []string
	for _, p := range s.Include {
		if p.hits == 0 {
			out = append(out, p.Glob)
		}
	}
	for _, p := range s.Exclude {
		if p.hits == 0 {
			out = append(out, p.Glob)
		}
	}
	return out
}
