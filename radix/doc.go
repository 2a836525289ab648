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

// Package radix implements the compressed prefix tree used as the keyword
// index of .prspdict files.
//
// A Tree is built in memory by inserting every keyword once and is then
// written with Serialize. Nodes are written in post-order: children come
// before their parents in the file, and the root is the last node written.
// Every child reference is an absolute file offset so that a reader can jump
// from node to node without any other context.
//
// Child labels are encoded as NUL terminated UTF-16LE strings. Because of
// this, keys are split only on rune boundaries.
package radix
