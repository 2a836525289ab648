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

// Package prspdict implements writing and reading .prspdict dictionaries in
// pure Go.
//
// A .prspdict file is a single file designed for fast lookup and prefix
// browsing on e-book readers. It contains four regions:
//  1. A fixed size header (see Header).
//  2. The articles: each article is a uint32 length followed by the UTF-8
//     article text.
//  3. The word list: each record is the UTF-8 keyword and a short
//     translation, each terminated by a NUL byte.
//  4. The radix tree: a compressed prefix tree over the keywords, written
//     children first. See package radix for the node layout.
//
// All integers are little endian and all offsets are absolute file offsets.
//
// Build converts an article.Source into a .prspdict file. Open reads one.
package prspdict
