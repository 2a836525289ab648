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
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/internal/folding"
	"github.com/ianlewis/go-prspdict/internal/region"
	"github.com/ianlewis/go-prspdict/radix"
)

var (
	// ErrLayout indicates that the computed region offsets do not match the
	// data actually written. The output file is corrupt.
	ErrLayout = errors.New("layout mismatch")

	// ErrOffsetOverflow indicates that the output is too large to be
	// addressed with 32 bit offsets.
	ErrOffsetOverflow = radix.ErrOffsetOverflow

	// ErrDuplicateKey indicates that a keyword was indexed twice. It means
	// that article deduplication failed.
	ErrDuplicateKey = radix.ErrDuplicateKey

	// ErrInvalidKeyword indicates that a keyword cannot be indexed. Keywords
	// must be valid UTF-8 without NUL bytes.
	ErrInvalidKeyword = region.ErrInvalidKeyword
)

// BuildOptions are options for Build.
type BuildOptions struct {
	// TempDir is the directory where the temporary word list file is
	// created. The default temporary directory is used if empty.
	TempDir string

	// ShortLen is the maximum length in runes of short translations in the
	// word list.
	ShortLen int
}

// DefaultBuildOptions is the default options for Build.
var DefaultBuildOptions = &BuildOptions{
	ShortLen: folding.DefaultShortLen,
}

// BuildStats describes a completed build.
type BuildStats struct {
	// Read is the number of articles read from the source.
	Read int

	// Dropped is the number of articles dropped because they had no keyword.
	Dropped int

	// Merged is the number of articles merged into another article with the
	// same keyword.
	Merged int

	// Articles is the number of articles written.
	Articles int

	// Nodes is the number of radix tree nodes written.
	Nodes int

	// ArticlesLen is the size of the articles region in bytes.
	ArticlesLen int64

	// WordListLen is the size of the word list region in bytes.
	WordListLen int64

	// RadixLen is the size of the radix tree region in bytes.
	RadixLen int64

	Header Header
}

// Build reads all articles from src and writes a .prspdict file to w. The
// header is written last, after all region lengths are known. Build does not
// close src.
//
// If Build fails, w contains a partially written file that should be
// discarded.
func Build(w io.WriteSeeker, src article.Source, opts *BuildOptions) (*BuildStats, error) {
	if opts == nil {
		opts = DefaultBuildOptions
	}
	shortLen := opts.ShortLen
	if shortLen <= 0 {
		shortLen = folding.DefaultShortLen
	}

	set, cstats, err := article.Collect(src)
	if err != nil {
		return nil, fmt.Errorf("reading articles: %w", err)
	}
	stats := &BuildStats{
		Read:    cstats.Read,
		Dropped: cstats.Dropped,
		Merged:  cstats.Merged,
	}

	// Reserve space for the header.
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to header: %w", err)
	}
	if _, err := w.Write(make([]byte, HeaderSize)); err != nil {
		return nil, fmt.Errorf("reserving header: %w", err)
	}

	// The word list is written to a temporary file because it must be placed
	// after the articles, whose total length is not known yet.
	scratch, err := os.CreateTemp(opts.TempDir, "prspdict-wordlist-*"+Ext)
	if err != nil {
		return nil, fmt.Errorf("creating word list file: %w", err)
	}
	defer func() {
		_ = scratch.Close()
		_ = os.Remove(scratch.Name())
	}()

	out := bufio.NewWriter(w)
	wl := bufio.NewWriter(scratch)
	articles := region.NewArticleWriter(out)
	words := region.NewWordListWriter(wl)
	tree := radix.New()

	for _, keyword := range set.Keywords() {
		a := set[keyword]

		short, err := folding.ShortTranslation(a.ShortTranslation, shortLen)
		if err != nil {
			return nil, fmt.Errorf("normalizing short translation for %q: %w", keyword, err)
		}
		wordOff, err := words.Write(keyword, short)
		if err != nil {
			return nil, fmt.Errorf("writing word list: %w", err)
		}
		articleOff, err := articles.Write(a.Translation)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", keyword, err)
		}

		if err := tree.Insert(keyword, radix.Entry{
			Article:  articleOff,
			WordList: wordOff,
		}); err != nil {
			return nil, fmt.Errorf("indexing: %w", err)
		}
		stats.Articles++
	}

	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("writing articles: %w", err)
	}
	if err := wl.Flush(); err != nil {
		return nil, fmt.Errorf("writing word list: %w", err)
	}
	stats.ArticlesLen = articles.Len()
	stats.WordListLen = words.Len()

	wordListOffset := HeaderSize + stats.ArticlesLen
	radixOffset := wordListOffset + stats.WordListLen
	if radixOffset > math.MaxUint32 {
		return nil, fmt.Errorf("%w: radix offset %d", ErrOffsetOverflow, radixOffset)
	}

	if err := checkOffset(w, wordListOffset); err != nil {
		return nil, err
	}

	// Copy the word list in place.
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding word list file: %w", err)
	}
	if _, err := io.Copy(w, scratch); err != nil {
		return nil, fmt.Errorf("copying word list: %w", err)
	}
	if err := checkOffset(w, radixOffset); err != nil {
		return nil, err
	}

	out.Reset(w)
	res, err := tree.Serialize(out, radix.SerializeOptions{
		Offset:       radixOffset,
		ArticleBase:  HeaderSize,
		WordListBase: wordListOffset,
	})
	if err != nil {
		return nil, fmt.Errorf("writing radix tree: %w", err)
	}
	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("writing radix tree: %w", err)
	}
	stats.RadixLen = res.Len
	stats.Nodes = res.Nodes

	stats.Header = Header{
		Version:        CurrentVersion,
		WordListOffset: uint32(wordListOffset),
		RadixOffset:    uint32(radixOffset),
		RootOffset:     res.Root,
	}
	b, err := stats.Header.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to header: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return stats, nil
}

// BuildFile builds a .prspdict file at path. The file is removed if the build
// fails.
func BuildFile(path string, src article.Source, opts *BuildOptions) (stats *BuildStats, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %q: %w", path, cerr)
		}
		if err != nil {
			stats = nil
			_ = os.Remove(path)
		}
	}()

	return Build(f, src, opts)
}

// checkOffset verifies that the write cursor of w is at want.
func checkOffset(w io.Seeker, want int64) error {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("getting file position: %w", err)
	}
	if pos != want {
		return fmt.Errorf("%w: file position %d, expected %d", ErrLayout, pos, want)
	}
	return nil
}
