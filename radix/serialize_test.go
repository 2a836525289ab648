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

package radix_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-prspdict/radix"
)

const (
	testOffset       = 5000
	testArticleBase  = 1024
	testWordListBase = 3000
)

// serialize writes the tree to a buffer at testOffset and returns a reader
// over the buffer.
func serialize(t *testing.T, tree *radix.Tree) (*bytes.Reader, *radix.SerializeResult) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, testOffset))
	res, err := tree.Serialize(&buf, radix.SerializeOptions{
		Offset:       testOffset,
		ArticleBase:  testArticleBase,
		WordListBase: testWordListBase,
	})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want, got := int64(buf.Len()-testOffset), res.Len; want != got {
		t.Fatalf("Len; want: %d, got: %d", want, got)
	}
	return bytes.NewReader(buf.Bytes()), res
}

// lookup follows child labels from the node at off.
func lookup(t *testing.T, r *bytes.Reader, off uint32, key string) (*radix.Node, error) {
	t.Helper()

	n, err := radix.ReadNode(r, int64(off))
	if err != nil {
		return nil, err
	}
	if key == "" {
		return n, nil
	}
	for _, c := range n.Children {
		if strings.HasPrefix(key, c.Label) {
			if c.Offset >= off {
				t.Errorf("child %q at %d does not precede parent at %d", c.Label, c.Offset, off)
			}
			return lookup(t, r, c.Offset, key[len(c.Label):])
		}
	}
	return nil, fmt.Errorf("%q not found", key)
}

func TestTree_Serialize(t *testing.T) {
	t.Parallel()

	keys := []string{
		"romane", "romanus", "romulus", "rubens", "ruber", "rubicon",
		"rubicundus", "rom", "ユニコード", "ユニ", "a", "b", "𝄞clef",
	}

	tree := radix.New()
	for i, k := range keys {
		//nolint:gosec // test data is small.
		if err := tree.Insert(k, radix.Entry{Article: uint32(i * 8), WordList: uint32(i * 16)}); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}

	r, res := serialize(t, tree)

	if want, got := tree.NodeCount(), res.Nodes; want != got {
		t.Errorf("Nodes; want: %d, got: %d", want, got)
	}

	// The root is the last node in the file.
	root, err := radix.ReadNode(r, int64(res.Root))
	if err != nil {
		t.Fatalf("ReadNode(root): %v", err)
	}
	b, err := root.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if want, got := r.Size(), int64(res.Root)+int64(len(b)); want != got {
		t.Errorf("root end; want: %d, got: %d", want, got)
	}
	if root.HasEntry() {
		t.Errorf("root has entry")
	}

	for i, k := range keys {
		n, err := lookup(t, r, res.Root, k)
		if err != nil {
			t.Fatalf("lookup(%q): %v", k, err)
		}
		want := &radix.Node{
			//nolint:gosec // test data is small.
			Article: uint32(testArticleBase + i*8),
			//nolint:gosec // test data is small.
			WordList: uint32(testWordListBase + i*16),
		}
		if diff := cmp.Diff(want.Article, n.Article); diff != "" {
			t.Errorf("lookup(%q) Article (-want, +got):\n%s", k, diff)
		}
		if diff := cmp.Diff(want.WordList, n.WordList); diff != "" {
			t.Errorf("lookup(%q) WordList (-want, +got):\n%s", k, diff)
		}
	}

	// Inner node without entry uses the sentinel.
	n, err := lookup(t, r, res.Root, "rub")
	if err != nil {
		t.Fatalf("lookup(rub): %v", err)
	}
	if n.HasEntry() || n.WordList != 0 {
		t.Errorf("lookup(rub): unexpected entry %d/%d", n.Article, n.WordList)
	}
}

func TestTree_Serialize_empty(t *testing.T) {
	t.Parallel()

	r, res := serialize(t, radix.New())
	if want, got := uint32(testOffset), res.Root; want != got {
		t.Errorf("Root; want: %d, got: %d", want, got)
	}
	if want, got := int64(radix.NodeHeaderSize), res.Len; want != got {
		t.Errorf("Len; want: %d, got: %d", want, got)
	}

	n, err := radix.ReadNode(r, int64(res.Root))
	if err != nil {
		t.Fatalf("ReadNode: %v", err)
	}
	if diff := cmp.Diff(&radix.Node{Children: []radix.Child{}}, n); diff != "" {
		t.Errorf("ReadNode (-want, +got):\n%s", diff)
	}
}

func TestTree_Serialize_overflow(t *testing.T) {
	t.Parallel()

	tree := radix.New()
	if err := tree.Insert("cat", radix.Entry{Article: math.MaxUint32}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_, err := tree.Serialize(&bytes.Buffer{}, radix.SerializeOptions{
		Offset:       testOffset,
		ArticleBase:  testArticleBase,
		WordListBase: testWordListBase,
	})
	if !errors.Is(err, radix.ErrOffsetOverflow) {
		t.Fatalf("Serialize; want: %v, got: %v", radix.ErrOffsetOverflow, err)
	}

	_, err = radix.New().Serialize(&bytes.Buffer{}, radix.SerializeOptions{
		Offset:       math.MaxUint32 + 1,
		ArticleBase:  testArticleBase,
		WordListBase: testWordListBase,
	})
	if !errors.Is(err, radix.ErrOffsetOverflow) {
		t.Fatalf("Serialize; want: %v, got: %v", radix.ErrOffsetOverflow, err)
	}
}

func TestTree_Serialize_tooManyChildren(t *testing.T) {
	t.Parallel()

	tree := radix.New()
	for i := 0; i < radix.MaxChildren+1; i++ {
		//nolint:gosec // i is small.
		if err := tree.Insert(string(rune(0x4e00+i)), radix.Entry{Article: uint32(i)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	_, err := tree.Serialize(&bytes.Buffer{}, radix.SerializeOptions{
		Offset:       testOffset,
		ArticleBase:  testArticleBase,
		WordListBase: testWordListBase,
	})
	if !errors.Is(err, radix.ErrTooManyChildren) {
		t.Fatalf("Serialize; want: %v, got: %v", radix.ErrTooManyChildren, err)
	}
}

func TestNode_MarshalBinary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     *radix.Node
		expected []byte
		err      error
	}{
		{
			name: "leaf",
			node: &radix.Node{Article: 0x01020304, WordList: 0x05060708},
			expected: []byte{
				11, 0,
				0x04, 0x03, 0x02, 0x01,
				0x08, 0x07, 0x06, 0x05,
				0,
			},
		},
		{
			name: "children",
			node: &radix.Node{
				Children: []radix.Child{
					{Offset: 0x10, Label: "a"},
					{Offset: 0x20, Label: "bé"},
				},
			},
			expected: []byte{
				29, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
				2,
				0x10, 0, 0, 0,
				0x20, 0, 0, 0,
				'a', 0, 0, 0,
				'b', 0, 0xe9, 0, 0, 0,
			},
		},
		{
			name: "nul label",
			node: &radix.Node{
				Children: []radix.Child{{Offset: 1, Label: "a\x00"}},
			},
			err: radix.ErrInvalidLabel,
		},
		{
			name: "empty label",
			node: &radix.Node{
				Children: []radix.Child{{Offset: 1, Label: ""}},
			},
			err: radix.ErrInvalidLabel,
		},
		{
			name: "invalid utf-8 label",
			node: &radix.Node{
				Children: []radix.Child{{Offset: 1, Label: "a\xfe"}},
			},
			err: radix.ErrInvalidLabel,
		},
		{
			name: "too large",
			node: &radix.Node{
				Children: []radix.Child{{Offset: 1, Label: strings.Repeat("x", math.MaxUint16/2)}},
			},
			err: radix.ErrNodeTooLarge,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b, err := test.node.MarshalBinary()
			if !errors.Is(err, test.err) {
				t.Fatalf("MarshalBinary; want: %v, got: %v", test.err, err)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.expected, b); diff != "" {
				t.Errorf("MarshalBinary (-want, +got):\n%s", diff)
			}

			var n radix.Node
			if err := n.UnmarshalBinary(b); err != nil {
				t.Fatalf("UnmarshalBinary: %v", err)
			}
			if test.node.Children == nil {
				test.node.Children = []radix.Child{}
			}
			if diff := cmp.Diff(test.node, &n); diff != "" {
				t.Errorf("UnmarshalBinary (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestNode_UnmarshalBinary_invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "short",
			data: []byte{3, 0, 0},
		},
		{
			name: "length mismatch",
			data: []byte{12, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "truncated offsets",
			data: []byte{13, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0},
		},
		{
			name: "unterminated label",
			data: []byte{17, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 'a', 0},
		},
		{
			name: "empty label",
			data: []byte{17, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 4, 0, 0, 0, 0},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var n radix.Node
			if err := n.UnmarshalBinary(test.data); !errors.Is(err, radix.ErrInvalidNode) {
				t.Fatalf("UnmarshalBinary; want: %v, got: %v", radix.ErrInvalidNode, err)
			}
		})
	}
}
