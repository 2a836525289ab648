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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// NodeHeaderSize is the size of the fixed part of a serialized node.
const NodeHeaderSize = 2 + 4 + 4 + 1

// MaxChildren is the maximum number of children a serialized node can hold.
const MaxChildren = math.MaxUint8

var (
	// ErrNodeTooLarge indicates that a serialized node exceeds the maximum
	// node length.
	ErrNodeTooLarge = errors.New("node too large")

	// ErrTooManyChildren indicates that a node has more children than can be
	// serialized.
	ErrTooManyChildren = errors.New("too many children")

	// ErrInvalidLabel indicates that a label cannot be serialized.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrInvalidNode indicates that a serialized node is malformed.
	ErrInvalidNode = errors.New("invalid node")
)

// keyCharset is the encoding of child labels.
var keyCharset = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Child is a reference from a serialized node to one of its children.
type Child struct {
	// Offset is the absolute file offset of the child node.
	Offset uint32

	// Label is the edge label leading to the child.
	Label string
}

// Node is a tree node in its on-disk form.
//
// The serialized node is laid out as follows. All integers are little
// endian.
//
//	uint16  node length in bytes, including this field
//	uint32  absolute article offset, 0 if the node has no entry
//	uint32  absolute word list offset, 0 if the node has no entry
//	uint8   child count N
//	N * uint32  absolute child offsets
//	N * (UTF-16LE label, 0x0000)
type Node struct {
	Article  uint32
	WordList uint32
	Children []Child
}

// HasEntry returns true if the node terminates a key.
func (n *Node) HasEntry() bool {
	return n.Article != 0
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (n *Node) MarshalBinary() ([]byte, error) {
	if len(n.Children) > MaxChildren {
		return nil, fmt.Errorf("%w: %d", ErrTooManyChildren, len(n.Children))
	}

	var labels bytes.Buffer
	enc := keyCharset.NewEncoder()
	for _, c := range n.Children {
		if c.Label == "" || strings.ContainsRune(c.Label, 0) || !utf8.ValidString(c.Label) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, c.Label)
		}
		b, err := enc.Bytes([]byte(c.Label))
		if err != nil {
			return nil, fmt.Errorf("%w: encoding %q: %w", ErrInvalidLabel, c.Label, err)
		}
		labels.Write(b)
		labels.Write([]byte{0, 0})
	}

	size := NodeHeaderSize + 4*len(n.Children) + labels.Len()
	if size > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNodeTooLarge, size)
	}

	b := make([]byte, NodeHeaderSize+4*len(n.Children), size)
	binary.LittleEndian.PutUint16(b[0:], uint16(size))
	binary.LittleEndian.PutUint32(b[2:], n.Article)
	binary.LittleEndian.PutUint32(b[6:], n.WordList)
	b[10] = byte(len(n.Children))
	for i, c := range n.Children {
		binary.LittleEndian.PutUint32(b[NodeHeaderSize+4*i:], c.Offset)
	}
	return append(b, labels.Bytes()...), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (n *Node) UnmarshalBinary(b []byte) error {
	if len(b) < NodeHeaderSize {
		return fmt.Errorf("%w: short node: %d bytes", ErrInvalidNode, len(b))
	}
	size := int(binary.LittleEndian.Uint16(b))
	if size != len(b) {
		return fmt.Errorf("%w: node length %d, got %d bytes", ErrInvalidNode, size, len(b))
	}
	count := int(b[10])
	labels := b[NodeHeaderSize:]
	if len(labels) < 4*count {
		return fmt.Errorf("%w: truncated child offsets", ErrInvalidNode)
	}
	labels = labels[4*count:]

	n.Article = binary.LittleEndian.Uint32(b[2:])
	n.WordList = binary.LittleEndian.Uint32(b[6:])
	n.Children = make([]Child, count)

	dec := keyCharset.NewDecoder()
	for i := range n.Children {
		n.Children[i].Offset = binary.LittleEndian.Uint32(b[NodeHeaderSize+4*i:])

		end := -1
		for j := 0; j+1 < len(labels); j += 2 {
			if labels[j] == 0 && labels[j+1] == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return fmt.Errorf("%w: unterminated label %d", ErrInvalidNode, i)
		}
		if end == 0 {
			return fmt.Errorf("%w: empty label %d", ErrInvalidNode, i)
		}
		label, err := dec.Bytes(labels[:end])
		if err != nil {
			return fmt.Errorf("%w: decoding label %d: %w", ErrInvalidNode, i, err)
		}
		n.Children[i].Label = string(label)
		labels = labels[end+2:]
	}

	return nil
}

// ReadNode reads the serialized node at the absolute offset off.
func ReadNode(r io.ReaderAt, off int64) (*Node, error) {
	var sizeBytes [2]byte
	if _, err := r.ReadAt(sizeBytes[:], off); err != nil {
		return nil, fmt.Errorf("reading node at %d: %w", off, err)
	}
	b := make([]byte, binary.LittleEndian.Uint16(sizeBytes[:]))
	if len(b) < NodeHeaderSize {
		return nil, fmt.Errorf("%w: node at %d: length %d", ErrInvalidNode, off, len(b))
	}
	if _, err := r.ReadAt(b, off); err != nil {
		return nil, fmt.Errorf("reading node at %d: %w", off, err)
	}

	var n Node
	if err := n.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("node at %d: %w", off, err)
	}
	return &n, nil
}
