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

// Package folding implements text transformers used to normalize dictionary
// text.
package folding

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultShortLen is the default maximum length in runes of a word list
// short translation.
const DefaultShortLen = 80

// HyphenFolder returns a transformer that replaces hyphens with spaces.
func HyphenFolder() transform.Transformer {
	return runes.Map(func(r rune) rune {
		if r == '-' {
			return ' '
		}
		return r
	})
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

// ShortTranslation normalizes a short translation for the word list. s is
// truncated to maxLen runes first. Hyphens in the truncated text are then
// replaced by spaces and whitespace spans are folded to a single space.
// Leading and trailing spaces are kept.
func ShortTranslation(s string, maxLen int) (string, error) {
	t := transform.Chain(HyphenFolder(), &SpaceFolder{})
	out, _, err := transform.String(t, Truncate(s, maxLen))
	if err != nil {
		//nolint:wrapcheck // transform errors are returned as is.
		return "", err
	}
	return out, nil
}
