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

// Entry is a dictionary entry found in the index.
type Entry struct {
	// Keyword is the entry's keyword.
	Keyword string

	// ShortTranslation is the word list preview of the entry.
	ShortTranslation string

	// ArticleOffset is the absolute offset of the entry's article.
	ArticleOffset uint32

	// WordListOffset is the absolute offset of the entry's word list record.
	WordListOffset uint32
}

// Title return the entry's title.
func (e *Entry) Title() string {
	return e.Keyword
}

// String returns a string representation of the Entry.
func (e *Entry) String() string {
	return e.Keyword + "\t" + e.ShortTranslation
}
