// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prspdict

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ianlewis/go-prspdict/radix"
)

var (
	// ErrNotFound indicates that a keyword is not in the dictionary.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt indicates that the file contents are inconsistent.
	ErrCorrupt = errors.New("corrupt dictionary")
)

// Dict is a read-only .prspdict dictionary.
type Dict struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64
	header Header
	root   uint32
}

// Open opens the .prspdict file at path.
func Open(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	d, err := New(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	d.closer = f
	return d, nil
}

// New returns a Dict that reads a .prspdict file of the given size from r.
func New(r io.ReaderAt, size int64) (*Dict, error) {
	b := make([]byte, HeaderSize)
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: file size %d", ErrInvalidHeader, size)
	}
	if _, err := r.ReadAt(b, 0); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	d := &Dict{
		r:    r,
		size: size,
	}
	if err := d.header.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	if int64(d.header.RadixOffset) >= size {
		return nil, fmt.Errorf("%w: radix offset %d beyond end of file", ErrInvalidHeader, d.header.RadixOffset)
	}

	d.root = d.header.RootOffset
	if d.root == 0 {
		root, err := d.findRoot()
		if err != nil {
			return nil, err
		}
		d.root = root
	}
	return d, nil
}

// Header returns the file header.
func (d *Dict) Header() Header {
	return d.header
}

// Size returns the size of the file in bytes.
func (d *Dict) Size() int64 {
	return d.size
}

// Close closes the underlying file if the Dict was created with Open.
func (d *Dict) Close() error {
	if d.closer == nil {
		return nil
	}
	if err := d.closer.Close(); err != nil {
		return fmt.Errorf("closing dictionary: %w", err)
	}
	return nil
}

// Lookup returns the entry with the given keyword. It returns ErrNotFound if
// there is no such entry.
func (d *Dict) Lookup(keyword string) (*Entry, error) {
	off := d.root
	rest := keyword
	for {
		n, err := d.node(off)
		if err != nil {
			return nil, err
		}
		if rest == "" {
			if !n.HasEntry() {
				return nil, fmt.Errorf("%w: %q", ErrNotFound, keyword)
			}
			return d.entry(n)
		}

		next := -1
		for i, c := range n.Children {
			if strings.HasPrefix(rest, c.Label) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, keyword)
		}
		if err := checkChild(off, n.Children[next]); err != nil {
			return nil, err
		}
		off = n.Children[next].Offset
		rest = rest[len(n.Children[next].Label):]
	}
}

// Prefix returns entries whose keyword starts with prefix in sorted order.
// At most limit entries are returned. If limit is zero or less all matching
// entries are returned.
func (d *Dict) Prefix(prefix string, limit int) ([]*Entry, error) {
	off := d.root
	rest := prefix
	for rest != "" {
		n, err := d.node(off)
		if err != nil {
			return nil, err
		}

		found := false
		for _, c := range n.Children {
			if err := checkChild(off, c); err != nil {
				return nil, err
			}
			if strings.HasPrefix(rest, c.Label) {
				rest = rest[len(c.Label):]
				off = c.Offset
				found = true
				break
			}
			if strings.HasPrefix(c.Label, rest) {
				// The prefix ends inside this label.
				rest = ""
				off = c.Offset
				found = true
				break
			}
		}
		if !found {
			return nil, nil
		}
	}

	var entries []*Entry
	err := d.collect(off, limit, &entries)
	if errors.Is(err, errLimit) {
		err = nil
	}
	return entries, err
}

// Article returns the full article text for the entry.
func (d *Dict) Article(e *Entry) (string, error) {
	off := int64(e.ArticleOffset)
	end := int64(d.header.WordListOffset)
	if off < HeaderSize || off+4 > end {
		return "", fmt.Errorf("%w: article offset %d", ErrCorrupt, off)
	}

	var lenBytes [4]byte
	if _, err := d.r.ReadAt(lenBytes[:], off); err != nil {
		return "", fmt.Errorf("reading article at %d: %w", off, err)
	}
	size := int64(binary.LittleEndian.Uint32(lenBytes[:]))
	if off+4+size > end {
		return "", fmt.Errorf("%w: article at %d: length %d", ErrCorrupt, off, size)
	}

	b := make([]byte, size)
	if _, err := d.r.ReadAt(b, off+4); err != nil {
		return "", fmt.Errorf("reading article at %d: %w", off, err)
	}
	return string(b), nil
}

var errLimit = errors.New("limit reached")

// collect appends the entries of the subtree at off in pre-order.
func (d *Dict) collect(off uint32, limit int, entries *[]*Entry) error {
	n, err := d.node(off)
	if err != nil {
		return err
	}
	if n.HasEntry() {
		e, err := d.entry(n)
		if err != nil {
			return err
		}
		*entries = append(*entries, e)
		if limit > 0 && len(*entries) >= limit {
			return errLimit
		}
	}
	for _, c := range n.Children {
		if err := checkChild(off, c); err != nil {
			return err
		}
		if err := d.collect(c.Offset, limit, entries); err != nil {
			return err
		}
	}
	return nil
}

// checkChild verifies that a child of the node at off was written before its
// parent. This also rules out cycles in a corrupt file.
func checkChild(off uint32, c radix.Child) error {
	if c.Label == "" || c.Offset >= off {
		return fmt.Errorf("%w: node at %d: child %q at %d", ErrCorrupt, off, c.Label, c.Offset)
	}
	return nil
}

func (d *Dict) node(off uint32) (*radix.Node, error) {
	if off < d.header.RadixOffset || int64(off) >= d.size {
		return nil, fmt.Errorf("%w: node offset %d", ErrCorrupt, off)
	}
	n, err := radix.ReadNode(d.r, int64(off))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return n, nil
}

// entry reads the word list record of n.
func (d *Dict) entry(n *radix.Node) (*Entry, error) {
	off := int64(n.WordList)
	end := int64(d.header.RadixOffset)
	if off < int64(d.header.WordListOffset) || off >= end {
		return nil, fmt.Errorf("%w: word list offset %d", ErrCorrupt, off)
	}

	br := bufio.NewReader(io.NewSectionReader(d.r, off, end-off))
	keyword, err := br.ReadString(0)
	if err != nil {
		return nil, fmt.Errorf("%w: word list record at %d: %w", ErrCorrupt, off, err)
	}
	short, err := br.ReadString(0)
	if err != nil {
		return nil, fmt.Errorf("%w: word list record at %d: %w", ErrCorrupt, off, err)
	}

	return &Entry{
		Keyword:          strings.TrimSuffix(keyword, "\x00"),
		ShortTranslation: strings.TrimSuffix(short, "\x00"),
		ArticleOffset:    n.Article,
		WordListOffset:   n.WordList,
	}, nil
}

// findRoot returns the offset of the last node in the radix tree region.
func (d *Dict) findRoot() (uint32, error) {
	var last int64 = -1
	off := int64(d.header.RadixOffset)
	for off < d.size {
		var sizeBytes [2]byte
		if _, err := d.r.ReadAt(sizeBytes[:], off); err != nil {
			return 0, fmt.Errorf("scanning radix tree at %d: %w", off, err)
		}
		size := int64(binary.LittleEndian.Uint16(sizeBytes[:]))
		if size < radix.NodeHeaderSize {
			return 0, fmt.Errorf("%w: node at %d: length %d", ErrCorrupt, off, size)
		}
		last = off
		off += size
	}
	if last < 0 || off != d.size {
		return 0, fmt.Errorf("%w: radix tree region", ErrCorrupt)
	}
	//nolint:gosec // last is a node offset written by Build.
	return uint32(last), nil
}
