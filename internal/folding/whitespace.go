// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// SpaceFolder replaces every whitespace span in the input with a single ASCII
// space rune. If Trim is true, leading and trailing whitespace is removed
// instead of folded.
type SpaceFolder struct {
	// Trim removes leading and trailing whitespace.
	Trim bool

	// notStart is true after encountering the first non-whitespace rune.
	notStart bool

	// wsSpan is true if the transformer is currently handling a whitespace span.
	wsSpan bool
}

// Transform implements [transform.Transformer.Transform].
func (w *SpaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nSrc, nDst int
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		c, size := utf8.DecodeRune(src[nSrc:])

		if unicode.IsSpace(c) {
			nSrc += size
			if w.Trim && !w.notStart {
				// Ignore leading whitespace.
				continue
			}
			w.wsSpan = true
			continue
		}

		if w.wsSpan {
			// Emit a single space if we are coming out of a whitespace span.
			if nDst+1 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = ' '
			nDst++
			w.wsSpan = false
		}

		// NOTE: we cannot use size here because c could be utf8.RuneError in
		// which case size would be 1 but the length of utf8.RuneError is 3.
		if nDst+utf8.RuneLen(c) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		w.notStart = true
		nSrc += size
		nDst += utf8.EncodeRune(dst[nDst:], c)
	}

	if atEOF && w.wsSpan && !w.Trim {
		// A trailing span is folded rather than dropped.
		if nDst+1 > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = ' '
		nDst++
		w.wsSpan = false
	}

	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *SpaceFolder) Reset() {
	*w = SpaceFolder{Trim: w.Trim}
}
