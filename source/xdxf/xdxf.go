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

// Package xdxf implements an article source that reads dictionaries in the
// XDXF visual format.
//
// Each <ar> element is an article. Its <k> elements are the keywords and the
// remaining text is the translation.
package xdxf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/internal/folding"
)

// Ext is the extension of XDXF files.
const Ext = ".xdxf"

// Source reads articles from an XDXF document.
type Source struct {
	closer io.Closer
	d      *xml.Decoder

	// pending are articles for extra keywords of the last <ar>.
	pending []*article.Article
}

// Open opens the XDXF file at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	s := New(f)
	s.closer = f
	return s, nil
}

// New returns a Source that reads the XDXF document from r.
func New(r io.Reader) *Source {
	d := xml.NewDecoder(r)
	// Dictionaries in the wild often use HTML entities and unclosed tags.
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charsetReader
	return &Source{d: d}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	e, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return e.NewDecoder().Reader(input), nil
}

// Next implements [article.Source.Next].
func (s *Source) Next() (*article.Article, error) {
	if len(s.pending) > 0 {
		a := s.pending[0]
		s.pending = s.pending[1:]
		return a, nil
	}

	for {
		tok, err := s.d.Token()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("reading xdxf: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "ar" {
			articles, err := s.readArticle()
			if err != nil {
				return nil, err
			}
			s.pending = articles[1:]
			return articles[0], nil
		}
	}
}

// readArticle reads the contents of an <ar> element up to its end tag. It
// returns one article per keyword, or a single article with an empty keyword
// if the element has none.
func (s *Source) readArticle() ([]*article.Article, error) {
	var keys []string
	var key, text strings.Builder
	inKey := 0
	for {
		tok, err := s.d.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading xdxf article: %w", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("reading xdxf article: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "k":
				if inKey == 0 {
					key.Reset()
				}
				inKey++
			case "tr":
				if inKey == 0 {
					text.WriteString("[")
				}
			case "br":
				text.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "ar":
				return newArticles(keys, text.String())
			case "k":
				if inKey > 0 {
					inKey--
					if inKey == 0 {
						keys = append(keys, key.String())
					}
				}
			case "tr":
				if inKey == 0 {
					text.WriteString("]")
				}
			}
		case xml.CharData:
			if inKey > 0 {
				key.Write(t)
			} else {
				text.Write(t)
			}
		}
	}
}

func newArticles(keys []string, text string) ([]*article.Article, error) {
	translation := strings.TrimSpace(text)
	short, _, err := transform.String(&folding.SpaceFolder{Trim: true}, translation)
	if err != nil {
		return nil, fmt.Errorf("folding article: %w", err)
	}

	if len(keys) == 0 {
		keys = []string{""}
	}
	articles := make([]*article.Article, 0, len(keys))
	for _, k := range keys {
		articles = append(articles, &article.Article{
			Keyword:          strings.ToValidUTF8(strings.TrimSpace(k), "�"),
			Translation:      translation,
			ShortTranslation: short,
		})
	}
	return articles, nil
}

// Close implements [article.Source.Close].
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing xdxf: %w", err)
	}
	return nil
}
