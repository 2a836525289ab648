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
	"slices"
	"strings"
	"unicode/utf8"
)

// ErrDuplicateKey indicates that a key was inserted into the tree twice.
var ErrDuplicateKey = errors.New("duplicate key")

// Entry is the payload stored for a key. Offsets are relative to the start of
// the articles and word list regions respectively.
type Entry struct {
	Article  uint32
	WordList uint32
}

// node is a tree node. Children are indexes into the tree's node arena and
// are sorted by label. No two children share a first rune.
type node struct {
	label    string
	entry    Entry
	hasEntry bool
	children []int
}

// Tree is a compressed prefix tree built by sequential insertion. Nodes are
// held in an arena and reference their children by index.
type Tree struct {
	nodes []node
	size  int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		// nodes[0] is the root and has an empty label.
		nodes: []node{{}},
	}
}

// Len returns the number of keys in the tree.
func (t *Tree) Len() int {
	return t.size
}

// NodeCount returns the number of nodes in the tree including the root.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Insert adds key to the tree with the entry e. It returns ErrDuplicateKey if
// the key is already present.
func (t *Tree) Insert(key string, e Entry) error {
	n := 0
	rest := key
	for {
		if rest == "" {
			if t.nodes[n].hasEntry {
				return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
			}
			t.nodes[n].entry = e
			t.nodes[n].hasEntry = true
			t.size++
			return nil
		}

		i, found := t.findChild(n, rest)
		if !found {
			c := t.add(node{
				label:    rest,
				entry:    e,
				hasEntry: true,
			})
			t.nodes[n].children = slices.Insert(t.nodes[n].children, i, c)
			t.size++
			return nil
		}

		c := t.nodes[n].children[i]
		label := t.nodes[c].label
		p := commonPrefix(label, rest)
		if p < len(label) {
			// Split c so that the shared prefix gets its own node.
			mid := t.add(node{
				label:    label[:p],
				children: []int{c},
			})
			t.nodes[c].label = label[p:]
			t.nodes[n].children[i] = mid
			c = mid
		}
		n = c
		rest = rest[p:]
	}
}

// Get returns the entry for key.
func (t *Tree) Get(key string) (Entry, bool) {
	n := 0
	rest := key
	for rest != "" {
		i, found := t.findChild(n, rest)
		if !found {
			return Entry{}, false
		}
		c := t.nodes[n].children[i]
		label := t.nodes[c].label
		if !strings.HasPrefix(rest, label) {
			return Entry{}, false
		}
		n = c
		rest = rest[len(label):]
	}
	return t.nodes[n].entry, t.nodes[n].hasEntry
}

// Walk calls fn for each key in the tree in sorted order. Walk stops and
// returns the error if fn returns an error.
func (t *Tree) Walk(fn func(key string, e Entry) error) error {
	return t.walk(0, "", fn)
}

func (t *Tree) walk(n int, prefix string, fn func(string, Entry) error) error {
	nd := t.nodes[n]
	key := prefix + nd.label
	if nd.hasEntry {
		if err := fn(key, nd.entry); err != nil {
			return err
		}
	}
	for _, c := range nd.children {
		if err := t.walk(c, key, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) add(nd node) int {
	t.nodes = append(t.nodes, nd)
	return len(t.nodes) - 1
}

// findChild returns the position of the child of n whose label starts with
// the same rune as s. If there is no such child it returns the position at
// which one would be inserted.
func (t *Tree) findChild(n int, s string) (int, bool) {
	h := head(s)
	return slices.BinarySearchFunc(t.nodes[n].children, h, func(c int, h string) int {
		return strings.Compare(head(t.nodes[c].label), h)
	})
}

// head returns the first rune of s as a string.
func head(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}

// commonPrefix returns the length in bytes of the longest common prefix of a
// and b that ends on a rune boundary.
func commonPrefix(a, b string) int {
	i := 0
	for i < len(a) && i < len(b) {
		_, sa := utf8.DecodeRuneInString(a[i:])
		_, sb := utf8.DecodeRuneInString(b[i:])
		if sa != sb || a[i:i+sa] != b[i:i+sb] {
			break
		}
		i += sa
	}
	return i
}
