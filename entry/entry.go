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

// Package entry defines the logical archive entry record shared by every
// format plug-in: a header plus an optional body, independent of the wire
// format that produced or will consume it.
package entry

import "time"

// FileType enumerates the kinds of object an archive entry can represent.
type FileType uint8

const (
	TypeRegular FileType = iota
	TypeDirectory
	TypeSymlink
	TypeHardlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
)

func (t FileType) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeHardlink:
		return "hardlink"
	case TypeCharDevice:
		return "char-device"
	case TypeBlockDevice:
		return "block-device"
	case TypeFIFO:
		return "fifo"
	case TypeSocket:
		return "socket"
	default:
		return "regular"
	}
}

// Timestamp is a seconds+nanoseconds timestamp that tracks whether it has
// ever been set, since an absent mtime/atime/ctime/birthtime must never be
// synthesized from another one (invariant 4).
type Timestamp struct {
	Sec   int64
	Nsec  int64
	IsSet bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Sec: t.Unix(), Nsec: int64(t.Nanosecond()), IsSet: true}
}

func (t Timestamp) Time() time.Time {
	if !t.IsSet {
		return time.Time{}
	}
	return time.Unix(t.Sec, t.Nsec).UTC()
}

// Device holds the major/minor pair for char and block device nodes.
type Device struct {
	Major uint32
	Minor uint32
}

// ACLTag identifies the subject an ACL entry grants or denies permissions to.
type ACLTag uint8

const (
	ACLTagUser ACLTag = iota
	ACLTagGroup
	ACLTagOther
	ACLTagMask
)

// ACLEntry is one POSIX-style access control entry.
type ACLEntry struct {
	Type  ACLTag
	Tag   ACLTag
	Perm  uint32
	ID    int64
	Name  string
}

// SparseRegion marks a byte range, relative to the start of an entry's data,
// that carries real content; the gaps between regions are implicit zero
// holes (invariant 3: non-overlapping, strictly increasing offsets).
type SparseRegion struct {
	Offset int64
	Length int64
}

// Flags is the opaque platform file-flag bitmask, carried as a set/clear pair
// the way BSD/macOS chflags() and its archive-format encodings do.
type Flags struct {
	Set   uint64
	Clear uint64
}

// Entry is the immutable-within-iteration record produced by a Reader and
// consumed by a Writer (data model §3). A Reader overwrites its working
// Entry on every call to NextHeader: callers that need to retain one past
// that point must Clone it (invariant 5).
type Entry struct {
	Pathname string
	Type     FileType

	Mode uint32
	UID  int64
	GID  int64
	UName string
	GName string

	// Size is the content length in bytes. It is always 0 for hardlink
	// references and is treated as 0 for any non-regular entry on write
	// (invariants 1, 2).
	Size int64

	MTime     Timestamp
	ATime     Timestamp
	CTime     Timestamp
	BirthTime Timestamp

	// Hardlink names a prior sighting's path when Type == TypeHardlink.
	Hardlink string
	// Symlink names a symbolic link's target.
	Symlink string

	Device Device
	Flags  Flags

	ACL    []ACLEntry
	Xattrs map[string][]byte

	// Sparse lists the regions of Size bytes carrying real data, ordered
	// and non-overlapping. Nil/empty means "fully dense".
	Sparse []SparseRegion

	// MacMetadata is the opaque AppleDouble/extended-attribute blob used by
	// the Mac OS extended tar variant; the core stores and forwards it
	// without interpreting it.
	MacMetadata []byte

	// dev/ino identify the underlying file for hardlink deduplication; they
	// are not part of the wire format but are populated by on-disk callers
	// (or by test fixtures) and consumed by the link resolver.
	Dev uint64
	Ino uint64
	// Nlink is the number of directory entries referencing the same
	// (Dev, Ino); the link resolver only tracks entries with Nlink > 1.
	Nlink uint32
}

// New returns a zero-value regular-file Entry with an initialized Xattrs map.
func New(pathname string) *Entry {
	return &Entry{
		Pathname: pathname,
		Type:     TypeRegular,
		Xattrs:   make(map[string][]byte),
	}
}

// Clone returns a deep-enough copy for a caller to retain past the next
// NextHeader call (invariant 5).
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	c := *e

	if e.ACL != nil {
		c.ACL = append([]ACLEntry(nil), e.ACL...)
	}
	if e.Sparse != nil {
		c.Sparse = append([]SparseRegion(nil), e.Sparse...)
	}
	if e.MacMetadata != nil {
		c.MacMetadata = append([]byte(nil), e.MacMetadata...)
	}
	if e.Xattrs != nil {
		c.Xattrs = make(map[string][]byte, len(e.Xattrs))
		for k, v := range e.Xattrs {
			c.Xattrs[k] = append([]byte(nil), v...)
		}
	}

	return &c
}

// IsHardlinkReference reports whether this entry carries no body and only
// names a previously emitted path (invariant 1).
func (e *Entry) IsHardlinkReference() bool {
	return e.Type == TypeHardlink
}

// EffectiveSize returns the size a writer should declare in the header: the
// real size for regular files, zero for anything else (invariant 2).
func (e *Entry) EffectiveSize() int64 {
	if e.Type != TypeRegular {
		return 0
	}
	return e.Size
}
