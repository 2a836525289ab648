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

package prspdict_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianlewis/go-prspdict"
	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/radix"
)

// build writes the articles to a temporary .prspdict file and returns its
// path.
func build(t *testing.T, articles ...*article.Article) (string, *prspdict.BuildStats) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test"+prspdict.Ext)
	stats, err := prspdict.BuildFile(path, article.NewSliceSource(articles...), &prspdict.BuildOptions{
		TempDir:  dir,
		ShortLen: 80,
	})
	require.NoError(t, err)
	return path, stats
}

func openDict(t *testing.T, path string) *prspdict.Dict {
	t.Helper()

	d, err := prspdict.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, d.Close())
	})
	return d
}

func TestBuild_mergeDuplicates(t *testing.T) {
	t.Parallel()

	path, stats := build(t,
		&article.Article{Keyword: "cat", Translation: "a feline", ShortTranslation: "feline"},
		&article.Article{Keyword: "", Translation: "orphan", ShortTranslation: "orphan"},
		&article.Article{Keyword: "dog", Translation: "a canine", ShortTranslation: "canine"},
		&article.Article{Keyword: "cat", Translation: "domestic animal", ShortTranslation: "animal"},
	)

	assert.Equal(t, 4, stats.Read)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 2, stats.Articles)

	// Each article is a 4 byte length and the text.
	assert.Equal(t, int64(4+len("a felinedomestic animal")+4+len("a canine")), stats.ArticlesLen)
	// Each record is the keyword, short translation and two NUL bytes.
	assert.Equal(t, int64(len("cat")+len("feline")+2+len("dog")+len("canine")+2), stats.WordListLen)

	d := openDict(t, path)

	e, err := d.Lookup("cat")
	require.NoError(t, err)
	assert.Equal(t, "cat", e.Keyword)
	assert.Equal(t, "feline", e.ShortTranslation)

	text, err := d.Article(e)
	require.NoError(t, err)
	assert.Equal(t, "a felinedomestic animal", text)

	all, err := d.Prefix("", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cat", all[0].Keyword)
	assert.Equal(t, "dog", all[1].Keyword)

	// The article without a keyword is not written anywhere.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(b, []byte("orphan")))
}

func TestBuild_layout(t *testing.T) {
	t.Parallel()

	path, stats := build(t,
		&article.Article{Keyword: "romane", Translation: "1", ShortTranslation: "well-known--thing"},
		&article.Article{Keyword: "romanus", Translation: "22", ShortTranslation: "b"},
		&article.Article{Keyword: "romulus", Translation: "333", ShortTranslation: "c"},
		&article.Article{Keyword: "rubens", Translation: "4444", ShortTranslation: "d"},
	)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []byte(prspdict.Magic), b[:8])
	assert.Equal(t, uint16(prspdict.HeaderSize-8), binary.LittleEndian.Uint16(b[8:]))
	assert.Equal(t, byte(0), b[10])
	assert.Equal(t, byte(1), b[11])

	wordListOffset := binary.LittleEndian.Uint32(b[12:])
	radixOffset := binary.LittleEndian.Uint32(b[16:])
	rootOffset := binary.LittleEndian.Uint32(b[20:])
	assert.Equal(t, int64(prspdict.HeaderSize)+stats.ArticlesLen, int64(wordListOffset))
	assert.Equal(t, int64(prspdict.HeaderSize)+stats.ArticlesLen+stats.WordListLen, int64(radixOffset))
	assert.Equal(t, int64(radixOffset)+stats.RadixLen, int64(len(b)))
	assert.Equal(t, bytes.Repeat([]byte{0}, prspdict.HeaderSize-24), b[24:prspdict.HeaderSize])

	// The root is the last node in the file.
	root, err := radix.ReadNode(bytes.NewReader(b), int64(rootOffset))
	require.NoError(t, err)
	rb, err := root.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, len(b), int(rootOffset)+len(rb))

	// The word list region holds the normalized short translations.
	assert.True(t, bytes.HasPrefix(b[wordListOffset:], []byte("romane\x00well known thing\x00")))

	// Every child precedes its parent.
	nodes := 0
	var check func(off uint32)
	check = func(off uint32) {
		n, err := radix.ReadNode(bytes.NewReader(b), int64(off))
		require.NoError(t, err)
		nodes++
		for _, c := range n.Children {
			assert.Less(t, c.Offset, off, "child %q", c.Label)
			assert.GreaterOrEqual(t, c.Offset, radixOffset, "child %q", c.Label)
			check(c.Offset)
		}
	}
	check(rootOffset)
	assert.Equal(t, stats.Nodes, nodes)
}

func TestBuild_roundTrip(t *testing.T) {
	t.Parallel()

	var articles []*article.Article
	for i := 0; i < 500; i++ {
		articles = append(articles, &article.Article{
			Keyword:          fmt.Sprintf("w%x", i*7919),
			Translation:      fmt.Sprintf("translation %d", i),
			ShortTranslation: fmt.Sprintf("short-%d", i),
		})
	}
	articles = append(articles,
		&article.Article{Keyword: "ユニコード", Translation: "unicode", ShortTranslation: "unicode"},
		&article.Article{Keyword: "ユニ", Translation: "uni", ShortTranslation: "uni"},
		&article.Article{Keyword: "𝄞", Translation: "clef", ShortTranslation: "clef"},
	)

	path, stats := build(t, articles...)
	require.Equal(t, len(articles), stats.Articles)

	d := openDict(t, path)
	for _, a := range articles {
		e, err := d.Lookup(a.Keyword)
		require.NoError(t, err, a.Keyword)
		assert.Equal(t, a.Keyword, e.Keyword)

		text, err := d.Article(e)
		require.NoError(t, err)
		assert.Equal(t, a.Translation, text)
	}

	for _, k := range []string{"", "w", "ユ", "unknown", "ユニコ"} {
		_, err := d.Lookup(k)
		assert.ErrorIs(t, err, prspdict.ErrNotFound, k)
	}
}

func TestBuild_empty(t *testing.T) {
	t.Parallel()

	path, stats := build(t)
	assert.Equal(t, 0, stats.Articles)
	assert.Equal(t, 1, stats.Nodes)

	d := openDict(t, path)
	_, err := d.Lookup("cat")
	require.ErrorIs(t, err, prspdict.ErrNotFound)

	entries, err := d.Prefix("", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

var errSource = errors.New("source failure")

type failingSource struct{}

func (failingSource) Next() (*article.Article, error) { return nil, errSource }
func (failingSource) Close() error                    { return nil }

func TestBuildFile_removesOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "broken"+prspdict.Ext)

	_, err := prspdict.BuildFile(path, failingSource{}, &prspdict.BuildOptions{TempDir: dir})
	require.ErrorIs(t, err, errSource)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "output file was not removed")

	// The temporary word list file is also removed.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildFile_invalidKeyword(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "invalid"+prspdict.Ext)

	// Both keywords would be stored as the same UTF-16 label.
	_, err := prspdict.BuildFile(path, article.NewSliceSource(
		&article.Article{Keyword: "a\xfe", Translation: "one"},
		&article.Article{Keyword: "a\xff", Translation: "two"},
	), &prspdict.BuildOptions{TempDir: dir})
	require.ErrorIs(t, err, prspdict.ErrInvalidKeyword)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "output file was not removed")
}

func TestBuild_shortLen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "short"+prspdict.Ext)
	_, err := prspdict.BuildFile(path, article.NewSliceSource(
		&article.Article{Keyword: "cat", Translation: "x", ShortTranslation: "abcdefgh"},
	), &prspdict.BuildOptions{TempDir: dir, ShortLen: 3})
	require.NoError(t, err)

	d := openDict(t, path)
	e, err := d.Lookup("cat")
	require.NoError(t, err)
	assert.Equal(t, "abc", e.ShortTranslation)
}
