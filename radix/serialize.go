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

package radix

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrOffsetOverflow indicates that an offset does not fit in 32 bits.
var ErrOffsetOverflow = errors.New("offset overflow")

// SerializeOptions describe where the tree is placed in the output file.
type SerializeOptions struct {
	// Offset is the absolute file offset at which the first node is written.
	Offset int64

	// ArticleBase is the absolute offset of the articles region. It is added
	// to every entry's article offset.
	ArticleBase int64

	// WordListBase is the absolute offset of the word list region. It is
	// added to every entry's word list offset.
	WordListBase int64
}

// SerializeResult describes a serialized tree.
type SerializeResult struct {
	// Root is the absolute offset of the root node. The root is always the
	// last node written.
	Root uint32

	// Len is the number of bytes written.
	Len int64

	// Nodes is the number of nodes written.
	Nodes int
}

type serializer struct {
	t    *Tree
	w    io.Writer
	opts SerializeOptions

	// off is the absolute offset of the write cursor.
	off   int64
	nodes int
}

// Serialize writes the tree to w in post-order. Each node is written after
// all of its children so that the children's absolute offsets are known when
// the node is encoded.
func (t *Tree) Serialize(w io.Writer, opts SerializeOptions) (*SerializeResult, error) {
	if opts.ArticleBase <= 0 || opts.WordListBase <= 0 {
		// A zero base would make entry offsets collide with the no entry
		// sentinel.
		return nil, fmt.Errorf("invalid region base: article %d, word list %d", opts.ArticleBase, opts.WordListBase)
	}

	s := &serializer{
		t:    t,
		w:    w,
		opts: opts,
		off:  opts.Offset,
	}
	root, err := s.write(0)
	if err != nil {
		return nil, err
	}
	return &SerializeResult{
		Root:  root,
		Len:   s.off - opts.Offset,
		Nodes: s.nodes,
	}, nil
}

func (s *serializer) write(n int) (uint32, error) {
	nd := s.t.nodes[n]

	rec := Node{
		Children: make([]Child, len(nd.children)),
	}
	for i, c := range nd.children {
		off, err := s.write(c)
		if err != nil {
			return 0, err
		}
		rec.Children[i] = Child{
			Offset: off,
			Label:  s.t.nodes[c].label,
		}
	}

	if nd.hasEntry {
		var err error
		if rec.Article, err = toOffset(s.opts.ArticleBase + int64(nd.entry.Article)); err != nil {
			return 0, fmt.Errorf("article offset: %w", err)
		}
		if rec.WordList, err = toOffset(s.opts.WordListBase + int64(nd.entry.WordList)); err != nil {
			return 0, fmt.Errorf("word list offset: %w", err)
		}
	}

	b, err := rec.MarshalBinary()
	if err != nil {
		return 0, err
	}

	off, err := toOffset(s.off)
	if err != nil {
		return 0, fmt.Errorf("node offset: %w", err)
	}
	if _, err := s.w.Write(b); err != nil {
		return 0, fmt.Errorf("writing node: %w", err)
	}
	s.off += int64(len(b))
	s.nodes++

	return off, nil
}

func toOffset(off int64) (uint32, error) {
	if off < 0 || off > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", ErrOffsetOverflow, off)
	}
	return uint32(off), nil
}
