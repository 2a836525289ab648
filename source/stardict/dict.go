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

package stardict

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/k3a/html2text"
)

var (
	errInvalidData        = errors.New("invalid word data")
	errWordOffsetTooLarge = errors.New("word offset too large")
)

// DataType is a type of data in a word. Lower case characters represent
// string-like data that is terminated by a null terminator ('\0'). Upper case
// characters represent file-like data that starts with a 32-bit size followed
// by file data.
type DataType byte

const (
	// UTFTextType is utf-8 text.
	UTFTextType = DataType('m')

	// LocaleTextType is text in a locale encoding.
	LocaleTextType = DataType('l')

	// PangoTextType is utf-8 text in the Pango text format.
	PangoTextType = DataType('g')

	// PhoneticType is utf-8 text representing an English phonetic string.
	PhoneticType = DataType('t')

	// XDXFType is utf-8 encoded xml in XDXF format.
	XDXFType = DataType('x')

	// YinBiaoOrKataType is utf-8 encoded Yin Biao or Kana phonetic string.
	YinBiaoOrKataType = DataType('y')

	// PowerWordType is a utf-8 encoded KingSoft PowerWord XML format.
	PowerWordType = DataType('p')

	// MediaWikiType is utf-8 encoded text in MediaWiki format.
	MediaWikiType = DataType('w')

	// HTMLType is utf-8 encoded HTML text.
	HTMLType = DataType('h')

	// WordNetType is WordNet data.
	WordNetType = DataType('n')

	// ResourceFileListType is a list of files in resource storage.
	ResourceFileListType = DataType('r')

	// WavType is .wav sound file data.
	WavType = DataType('W')

	// PictureType is image file data.
	PictureType = DataType('P')

	// ExperimentalType is reserved for experimental features.
	ExperimentalType = DataType('X')
)

func (t DataType) valid() bool {
	switch t {
	case UTFTextType,
		LocaleTextType,
		PangoTextType,
		PhoneticType,
		XDXFType,
		YinBiaoOrKataType,
		PowerWordType,
		MediaWikiType,
		HTMLType,
		WordNetType,
		ResourceFileListType,
		WavType,
		PictureType,
		ExperimentalType:
		return true
	default:
		return false
	}
}

// stringLike returns true if the data is NUL terminated.
func (t DataType) stringLike() bool {
	return 'a' <= t && t <= 'z'
}

// Data is a data entry in a word.
type Data struct {
	Type DataType
	Data []byte
}

// Text returns the data as plain text. Markup is removed. Non-text data
// returns an empty string.
func (d *Data) Text() string {
	switch d.Type {
	case UTFTextType, LocaleTextType, PhoneticType, YinBiaoOrKataType, MediaWikiType, WordNetType:
		return string(d.Data)
	case HTMLType, PangoTextType, XDXFType, PowerWordType:
		return html2text.HTML2Text(string(d.Data))
	default:
		return ""
	}
}

// readWord reads the data of the word at the given .idx entry.
func readWord(r io.ReaderAt, w *IdxWord, sametypesequence []DataType) ([]*Data, error) {
	if w.Offset > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", errWordOffsetTooLarge, w.Offset)
	}
	b := make([]byte, w.Size)
	//nolint:gosec // offset size is bounds checked above.
	if _, err := r.ReadAt(b, int64(w.Offset)); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return parseWord(b, sametypesequence)
}

// parseWord splits word data into its data entries.
func parseWord(b []byte, sametypesequence []DataType) ([]*Data, error) {
	var data []*Data
	if len(sametypesequence) > 0 {
		// When sametypesequence is specified, that determines the type of the
		// word's data. The last string-like entry has no terminator.
		for i, t := range sametypesequence {
			last := i == len(sametypesequence)-1
			d, rest, err := splitData(b, t, last)
			if err != nil {
				return nil, err
			}
			data = append(data, d)
			b = rest
		}
		return data, nil
	}

	for len(b) > 0 {
		t := DataType(b[0])
		d, rest, err := splitData(b[1:], t, false)
		if err != nil {
			return nil, err
		}
		data = append(data, d)
		b = rest
	}
	return data, nil
}

func splitData(b []byte, t DataType, last bool) (*Data, []byte, error) {
	if t.stringLike() {
		if last {
			return &Data{Type: t, Data: bytes.TrimSuffix(b, []byte{0})}, nil, nil
		}
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			// Tolerate a missing terminator at the end of the data.
			return &Data{Type: t, Data: b}, nil, nil
		}
		return &Data{Type: t, Data: b[:i]}, b[i+1:], nil
	}

	if last {
		// The size of the last entry is omitted.
		return &Data{Type: t, Data: b}, nil, nil
	}
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("%w: type %q: missing size", errInvalidData, t)
	}
	size := binary.BigEndian.Uint32(b)
	if uint64(len(b)-4) < uint64(size) {
		return nil, nil, fmt.Errorf("%w: type %q: size %d", errInvalidData, t, size)
	}
	return &Data{Type: t, Data: b[4 : 4+size]}, b[4+size:], nil
}

// wordText joins the text of the word's data entries.
func wordText(data []*Data) string {
	var parts []string
	for _, d := range data {
		if s := strings.TrimSpace(d.Text()); s != "" {
			if d.Type == PhoneticType {
				s = "[" + s + "]"
			}
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
