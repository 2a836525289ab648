// Copyright 2021 Google LLC
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

// Package testutil writes stardict dictionaries for tests.
package testutil

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ianlewis/go-dictzip"
)

// Data is a data entry in a word.
type Data struct {
	Type byte
	Data []byte
}

// Word is a dictionary word with its data and synonyms.
type Word struct {
	Word     string
	Data     []Data
	Synonyms []string
}

// IdxEntry is an .idx file entry.
type IdxEntry struct {
	Word   string
	Offset uint64
	Size   uint32
}

// Options are options for writing a stardict dictionary.
type Options struct {
	// IdxOffsetBits is the idxoffsetbits option. Defaults to 32.
	IdxOffsetBits int

	// IdxGzip indicates that the .idx file should be compressed with gzip.
	IdxGzip bool

	// DictZip indicates that the .dict file should be compressed with
	// dictzip.
	DictZip bool

	// SameTypeSequence is the sametypesequence option.
	SameTypeSequence string
}

func (o *Options) offsetBits() int {
	if o == nil || o.IdxOffsetBits == 0 {
		return 32
	}
	return o.IdxOffsetBits
}

func stringLike(t byte) bool {
	return 'a' <= t && t <= 'z'
}

func appendSize(t *testing.T, b, data []byte) []byte {
	t.Helper()
	dataLen := len(data)
	if dataLen > math.MaxUint32 {
		t.Fatalf("word data too long: %d", dataLen)
	}
	//nolint:gosec // length is bounds checked above.
	return binary.BigEndian.AppendUint32(b, uint32(dataLen))
}

// MakeDict creates a test .dict file and the matching .idx entries.
func MakeDict(t *testing.T, words []*Word, sameTypeSequence string) ([]byte, []*IdxEntry) {
	t.Helper()

	var b []byte
	var entries []*IdxEntry
	for _, w := range words {
		start := len(b)
		for i, d := range w.Data {
			last := i == len(w.Data)-1
			if sameTypeSequence == "" {
				b = append(b, d.Type)
				last = false
			}
			if stringLike(d.Type) {
				b = append(b, d.Data...)
				// The terminator is omitted on the last entry of a
				// sametypesequence word.
				if !last {
					b = append(b, 0)
				}
			} else {
				// The size is omitted on the last entry of a
				// sametypesequence word.
				if !last {
					b = appendSize(t, b, d.Data)
				}
				b = append(b, d.Data...)
			}
		}
		entries = append(entries, &IdxEntry{
			Word:   w.Word,
			Offset: uint64(start),
			//nolint:gosec // test data is small.
			Size: uint32(len(b) - start),
		})
	}
	return b, entries
}

// MakeIndex makes a test index given a list of entries.
func MakeIndex(entries []*IdxEntry, idxoffsetbits int) []byte {
	b := []byte{}
	for _, e := range entries {
		b = append(b, []byte(e.Word)...)
		b = append(b, 0) // Add the zero byte terminator.
		switch idxoffsetbits {
		case 32:
			if e.Offset > math.MaxUint32 {
				panic(fmt.Sprintf("word offset too large %d > %d", e.Offset, idxoffsetbits))
			}
			//nolint:gosec // offset size determined by idxoffsetbits
			b = binary.BigEndian.AppendUint32(b, uint32(e.Offset))
		case 64:
			b = binary.BigEndian.AppendUint64(b, e.Offset)
		default:
			panic(fmt.Sprintf("unsupported offset bits: %d", idxoffsetbits))
		}
		b = binary.BigEndian.AppendUint32(b, e.Size)
	}
	return b
}

// MakeSyn makes a test .syn file from the words' synonyms.
func MakeSyn(words []*Word) []byte {
	b := []byte{}
	for i, w := range words {
		for _, s := range w.Synonyms {
			b = append(b, []byte(s)...)
			b = append(b, 0)
			//nolint:gosec // test data is small.
			b = binary.BigEndian.AppendUint32(b, uint32(i))
		}
	}
	return b
}

// MakeIfo makes a test .ifo file.
func MakeIfo(bookname string, words []*Word, opts *Options) []byte {
	synCount := 0
	for _, w := range words {
		synCount += len(w.Synonyms)
	}

	var b strings.Builder
	b.WriteString("StarDict's dict ifo file\n")
	b.WriteString("version=3.0.0\n")
	fmt.Fprintf(&b, "bookname=%s\n", bookname)
	fmt.Fprintf(&b, "wordcount=%d\n", len(words))
	if synCount > 0 {
		fmt.Fprintf(&b, "synwordcount=%d\n", synCount)
	}
	fmt.Fprintf(&b, "idxoffsetbits=%d\n", opts.offsetBits())
	if opts != nil && opts.SameTypeSequence != "" {
		fmt.Fprintf(&b, "sametypesequence=%s\n", opts.SameTypeSequence)
	}
	return []byte(b.String())
}

// WriteDict writes a stardict dictionary named name to dir and returns the
// path to its .ifo file.
func WriteDict(t *testing.T, dir, name string, words []*Word, opts *Options) string {
	t.Helper()

	sts := ""
	if opts != nil {
		sts = opts.SameTypeSequence
	}
	dictData, entries := MakeDict(t, words, sts)
	idxData := MakeIndex(entries, opts.offsetBits())

	base := filepath.Join(dir, name)
	ifoPath := base + ".ifo"
	writeFile(t, ifoPath, MakeIfo(name, words, opts))

	if opts != nil && opts.IdxGzip {
		var buf bytes.Buffer
		z := gzip.NewWriter(&buf)
		if _, err := z.Write(idxData); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
		writeFile(t, base+".idx.gz", buf.Bytes())
	} else {
		writeFile(t, base+".idx", idxData)
	}

	if opts != nil && opts.DictZip {
		f, err := os.Create(base + ".dict.dz")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(dictData); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	} else {
		writeFile(t, base+".dict", dictData)
	}

	if syn := MakeSyn(words); len(syn) > 0 {
		writeFile(t, base+".syn", syn)
	}

	return ifoPath
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
}
