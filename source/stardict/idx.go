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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var errTruncated = errors.New("truncated entry")

// IdxWord is an .idx file entry.
type IdxWord struct {
	Word   string
	Offset uint64
	Size   uint32
}

// idxScanner scans an .idx file from start to end.
type idxScanner struct {
	s          *bufio.Scanner
	offsetBits int
}

func newIdxScanner(r io.Reader, offsetBits int) *idxScanner {
	s := &idxScanner{
		s:          bufio.NewScanner(bufio.NewReader(r)),
		offsetBits: offsetBits,
	}
	s.s.Split(s.split)
	return s
}

// Scan advances to the next entry.
func (s *idxScanner) Scan() bool {
	return s.s.Scan()
}

// Err returns the first error encountered.
func (s *idxScanner) Err() error {
	//nolint:wrapcheck // error should not be wrapped
	return s.s.Err()
}

// Word returns the current entry.
func (s *idxScanner) Word() *IdxWord {
	var w IdxWord
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	w.Word = string(b[:i])
	if s.offsetBits == 64 {
		w.Offset = binary.BigEndian.Uint64(b[i+1:])
	} else {
		w.Offset = uint64(binary.BigEndian.Uint32(b[i+1:]))
	}
	w.Size = binary.BigEndian.Uint32(b[i+1+s.offsetBits/8:])
	return &w
}

// split splits an entry: the NUL terminated word followed by the offset and
// size in network byte order.
func (s *idxScanner) split(data []byte, atEOF bool) (int, []byte, error) {
	return splitTerminated(data, atEOF, s.offsetBits/8+4)
}

// synScanner scans a .syn file from start to end.
type synScanner struct {
	s *bufio.Scanner
}

func newSynScanner(r io.Reader) *synScanner {
	s := &synScanner{
		s: bufio.NewScanner(bufio.NewReader(r)),
	}
	s.s.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		return splitTerminated(data, atEOF, 4)
	})
	return s
}

// Scan advances to the next entry.
func (s *synScanner) Scan() bool {
	return s.s.Scan()
}

// Err returns the first error encountered.
func (s *synScanner) Err() error {
	//nolint:wrapcheck // error should not be wrapped
	return s.s.Err()
}

// Synonym returns the current synonym and the index of the .idx entry it
// refers to.
func (s *synScanner) Synonym() (string, uint32) {
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	return string(b[:i]), binary.BigEndian.Uint32(b[i+1:])
}

// splitTerminated splits a NUL terminated string followed by n bytes.
func splitTerminated(data []byte, atEOF bool, n int) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		tokenSize := i + 1 + n
		if len(data) >= tokenSize {
			return tokenSize, data[:tokenSize], nil
		}
	}

	if atEOF {
		return 0, nil, errTruncated
	}

	// Request more data.
	return 0, nil, nil
}
