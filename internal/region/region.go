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

// Package region implements writers for the articles and word list regions
// of a .prspdict file.
package region

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ianlewis/go-prspdict/radix"
)

// ErrInvalidKeyword indicates that a keyword cannot be stored in the word
// list.
var ErrInvalidKeyword = errors.New("invalid keyword")

// counter tracks the number of bytes written to a region.
type counter struct {
	w io.Writer
	n int64
}

// reserve returns the current offset, checking that a record of size bytes
// starting at it can still be addressed with 32 bit offsets.
func (c *counter) reserve(size int) (uint32, error) {
	if c.n+int64(size) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: region size %d + %d", radix.ErrOffsetOverflow, c.n, size)
	}
	return uint32(c.n), nil
}

func (c *counter) write(b []byte) error {
	n, err := c.w.Write(b)
	c.n += int64(n)
	//nolint:wrapcheck // callers add context.
	return err
}

// ArticleWriter writes length prefixed article bodies.
type ArticleWriter struct {
	c counter
}

// NewArticleWriter returns an ArticleWriter that writes to w.
func NewArticleWriter(w io.Writer) *ArticleWriter {
	return &ArticleWriter{c: counter{w: w}}
}

// Write writes an article and returns its offset relative to the start of
// the region. The record is a uint32 little endian length followed by the
// UTF-8 text.
func (a *ArticleWriter) Write(translation string) (uint32, error) {
	off, err := a.c.reserve(4 + len(translation))
	if err != nil {
		return 0, err
	}

	b := make([]byte, 4, 4+len(translation))
	//nolint:gosec // length is bounds checked by reserve.
	binary.LittleEndian.PutUint32(b, uint32(len(translation)))
	b = append(b, translation...)
	if err := a.c.write(b); err != nil {
		return 0, fmt.Errorf("writing article: %w", err)
	}
	return off, nil
}

// Len returns the number of bytes written.
func (a *ArticleWriter) Len() int64 {
	return a.c.n
}

// WordListWriter writes word list records.
type WordListWriter struct {
	c counter
}

// NewWordListWriter returns a WordListWriter that writes to w.
func NewWordListWriter(w io.Writer) *WordListWriter {
	return &WordListWriter{c: counter{w: w}}
}

// Write writes a word list record and returns its offset relative to the
// start of the region. The record is the keyword and the short translation,
// each followed by a NUL byte. short is written as given and should already
// be normalized. The keyword must be valid UTF-8 so that it survives the
// UTF-16 encoding of radix tree labels.
func (l *WordListWriter) Write(keyword, short string) (uint32, error) {
	if keyword == "" || strings.ContainsRune(keyword, 0) || !utf8.ValidString(keyword) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKeyword, keyword)
	}
	// A NUL in the short translation would end the record early.
	short = strings.ReplaceAll(short, "\x00", "")

	size := len(keyword) + 1 + len(short) + 1
	off, err := l.c.reserve(size)
	if err != nil {
		return 0, err
	}

	b := make([]byte, 0, size)
	b = append(b, keyword...)
	b = append(b, 0)
	b = append(b, short...)
	b = append(b, 0)
	if err := l.c.write(b); err != nil {
		return 0, fmt.Errorf("writing word list record for %q: %w", keyword, err)
	}
	return off, nil
}

// Len returns the number of bytes written.
func (l *WordListWriter) Len() int64 {
	return l.c.n
}
