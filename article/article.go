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

// Package article implements the dictionary article model shared by source
// parsers and the .prspdict builder.
package article

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrNilArticle indicates that a Source returned neither an article nor an
// error.
var ErrNilArticle = errors.New("nil article")

// Article is a single dictionary article.
type Article struct {
	// Keyword is the article's search key. Articles with an empty keyword are
	// dropped by Collect.
	Keyword string

	// Translation is the full article text.
	Translation string

	// ShortTranslation is a preview of the translation shown in word lists.
	ShortTranslation string
}

// Append merges other into a. The translations are concatenated without a
// separator. The short translation of a is kept.
func (a *Article) Append(other *Article) {
	a.Translation += other.Translation
}

// Source is a stream of articles read from a source dictionary.
type Source interface {
	// Next returns the next article. It returns io.EOF when no more articles
	// are available.
	Next() (*Article, error)

	// Close releases the resources held by the source.
	Close() error
}

// Stats are counters collected by Collect.
type Stats struct {
	// Read is the number of articles read from the source.
	Read int

	// Dropped is the number of articles without a keyword.
	Dropped int

	// Merged is the number of articles appended to an earlier article with
	// the same keyword.
	Merged int
}

// Set is a deduplicated set of articles keyed by keyword.
type Set map[string]*Article

// Keywords returns the set's keywords in sorted order.
func (s Set) Keywords() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Collect reads all articles from src and merges articles sharing a keyword
// in the order they arrive. Articles without a keyword are dropped and
// counted.
func Collect(src Source) (Set, Stats, error) {
	set := Set{}
	var stats Stats
	for {
		a, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading article %d: %w", stats.Read+1, err)
		}
		if a == nil {
			return nil, stats, fmt.Errorf("%w: article %d", ErrNilArticle, stats.Read+1)
		}
		stats.Read++

		if a.Keyword == "" {
			stats.Dropped++
			continue
		}

		if existing, ok := set[a.Keyword]; ok {
			existing.Append(a)
			stats.Merged++
			continue
		}

		// Copy so that merges never modify the parser's value.
		c := *a
		set[a.Keyword] = &c
	}
	return set, stats, nil
}

// SliceSource is a Source backed by an in-memory slice.
type SliceSource struct {
	articles []*Article
	closed   bool
}

// NewSliceSource returns a Source that yields the given articles in order.
func NewSliceSource(articles ...*Article) *SliceSource {
	return &SliceSource{articles: articles}
}

// Next implements [Source.Next].
func (s *SliceSource) Next() (*Article, error) {
	if s.closed || len(s.articles) == 0 {
		return nil, io.EOF
	}
	a := s.articles[0]
	s.articles = s.articles[1:]
	return a, nil
}

// Close implements [Source.Close].
func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}
