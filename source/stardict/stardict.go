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

// Package stardict implements an article source that reads stardict
// dictionaries.
//
// Stardict dictionaries contain several files:
//  1. An .ifo file that contains metadata about the dictionary.
//  2. An .idx file that contains the dictionary index. The index file can be
//     compressed using gzip.
//  3. A .dict file that contains the dictionary's main article data. The
//     dict file can be compressed using the dictzip format.
//  4. An optional .syn file that contains synonyms which link index entries.
//
// More info on on the dictionary format can be found at this URL:
// https://github.com/huzheng001/stardict-3/blob/master/dict/doc/StarDictFileFormat
package stardict

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-dictzip"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/internal/folding"
)

// Ext is the extension of the .ifo file used to open a stardict dictionary.
const Ext = ".ifo"

var errMissingFile = errors.New("file not found")

// Source reads articles from a stardict dictionary.
type Source struct {
	info *Info

	idxFile  io.Closer
	idx      *idxScanner
	dictFile io.Closer
	dict     io.ReaderAt

	// synonyms maps .idx entry indexes to their synonyms.
	synonyms map[uint32][]string

	// index is the index of the next .idx entry.
	index uint32

	// pending are synonym articles waiting to be returned.
	pending []*article.Article
}

// Open opens the stardict dictionary described by the .ifo file at path.
func Open(path string) (*Source, error) {
	if ext := filepath.Ext(path); !strings.EqualFold(ext, Ext) {
		return nil, fmt.Errorf("bad extension: %v", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	info, err := readInfo(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	s := &Source{info: info}
	if err := s.openIdx(path); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.openDict(path); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.readSyn(path); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Info returns the dictionary metadata.
func (s *Source) Info() *Info {
	return s.info
}

// Next implements [article.Source.Next].
func (s *Source) Next() (*article.Article, error) {
	if len(s.pending) > 0 {
		a := s.pending[0]
		s.pending = s.pending[1:]
		return a, nil
	}

	if !s.idx.Scan() {
		if err := s.idx.Err(); err != nil {
			return nil, fmt.Errorf("reading index entry %d: %w", s.index, err)
		}
		return nil, io.EOF
	}
	w := s.idx.Word()
	i := s.index
	s.index++

	data, err := readWord(s.dict, w, s.info.SameTypeSequence)
	if err != nil {
		return nil, fmt.Errorf("reading word %q: %w", w.Word, err)
	}

	translation := wordText(data)
	short, _, err := transform.String(&folding.SpaceFolder{Trim: true}, translation)
	if err != nil {
		return nil, fmt.Errorf("folding word %q: %w", w.Word, err)
	}

	a := &article.Article{
		Keyword:          strings.ToValidUTF8(w.Word, "�"),
		Translation:      translation,
		ShortTranslation: short,
	}
	for _, syn := range s.synonyms[i] {
		s.pending = append(s.pending, &article.Article{
			Keyword:          strings.ToValidUTF8(syn, "�"),
			Translation:      a.Translation,
			ShortTranslation: a.ShortTranslation,
		})
	}
	return a, nil
}

// Close implements [article.Source.Close].
func (s *Source) Close() error {
	var errs []error
	if s.idxFile != nil {
		errs = append(errs, s.idxFile.Close())
	}
	if s.dictFile != nil {
		errs = append(errs, s.dictFile.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing stardict: %w", err)
	}
	return nil
}

// findFile returns the first existing file with the base name of the .ifo
// path and one of the given extensions.
func findFile(ifoPath string, exts []string) (string, error) {
	baseName := strings.TrimSuffix(ifoPath, filepath.Ext(ifoPath))
	for _, ext := range exts {
		p := baseName + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s{%s}", errMissingFile, baseName, strings.Join(exts, ","))
}

func isCompressed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".gz" || ext == ".dz"
}

func (s *Source) openIdx(ifoPath string) error {
	path, err := findFile(ifoPath, []string{".idx", ".idx.gz", ".IDX", ".IDX.gz", ".IDX.GZ"})
	if err != nil {
		return fmt.Errorf("opening .idx file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	s.idxFile = f

	var r io.Reader = f
	if isCompressed(path) {
		z, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		r = z
	}
	s.idx = newIdxScanner(r, s.info.IdxOffsetBits)
	return nil
}

func (s *Source) openDict(ifoPath string) error {
	path, err := findFile(ifoPath, []string{".dict", ".dict.dz", ".DICT", ".DICT.dz", ".DICT.DZ"})
	if err != nil {
		return fmt.Errorf("opening .dict file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	s.dictFile = f
	s.dict = f

	if isCompressed(path) {
		z, err := dictzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		s.dict = z
	}
	return nil
}

// readSyn loads the optional .syn file into memory.
func (s *Source) readSyn(ifoPath string) error {
	s.synonyms = map[uint32][]string{}

	path, err := findFile(ifoPath, []string{".syn", ".syn.gz", ".syn.dz", ".SYN", ".SYN.gz", ".SYN.GZ", ".SYN.dz", ".SYN.DZ"})
	if errors.Is(err, errMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening .syn file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		// dictzip files are valid gzip files.
		z, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		defer z.Close()
		r = z
	}

	ss := newSynScanner(r)
	for ss.Scan() {
		word, index := ss.Synonym()
		s.synonyms[index] = append(s.synonyms[index], word)
	}
	if err := ss.Err(); err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	return nil
}
