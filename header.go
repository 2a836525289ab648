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

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic is the magic string at the start of every .prspdict file.
	Magic = "PRSPDICT"

	// HeaderSize is the size of the file header. The unused part of the
	// header is zero filled.
	HeaderSize = 1024

	// Ext is the file extension of .prspdict files.
	Ext = ".prspdict"
)

// CurrentVersion is the version written by Build.
var CurrentVersion = Version{Major: 1, Minor: 0}

var (
	// ErrBadMagic indicates that a file is not a .prspdict file.
	ErrBadMagic = errors.New("bad magic data")

	// ErrInvalidHeader indicates that the file header is malformed.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrUnsupportedVersion indicates that the file format version is not
	// supported.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Version is a file format version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Header is the .prspdict file header.
//
// The header is laid out as follows. All integers are little endian.
//
//	bytes 0..7    "PRSPDICT"
//	bytes 8..9    header size minus the magic length (uint16)
//	byte  10      minor version
//	byte  11      major version
//	bytes 12..15  word list region offset (uint32)
//	bytes 16..19  radix tree region offset (uint32)
//	bytes 20..23  radix tree root node offset (uint32)
//	               zero padding up to HeaderSize
type Header struct {
	Version Version

	// WordListOffset is the absolute offset of the word list region. The
	// articles region starts at HeaderSize and ends here.
	WordListOffset uint32

	// RadixOffset is the absolute offset of the radix tree region.
	RadixOffset uint32

	// RootOffset is the absolute offset of the root node of the radix tree.
	// Zero if not recorded.
	RootOffset uint32
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	copy(b, Magic)
	binary.LittleEndian.PutUint16(b[8:], HeaderSize-uint16(len(Magic)))
	b[10] = h.Version.Minor
	b[11] = h.Version.Major
	binary.LittleEndian.PutUint32(b[12:], h.WordListOffset)
	binary.LittleEndian.PutUint32(b[16:], h.RadixOffset)
	binary.LittleEndian.PutUint32(b[20:], h.RootOffset)
	return b, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < 24 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(b))
	}
	if !bytes.Equal(b[:len(Magic)], []byte(Magic)) {
		return ErrBadMagic
	}
	if size := binary.LittleEndian.Uint16(b[8:]); int(size)+len(Magic) != HeaderSize {
		return fmt.Errorf("%w: header size %d", ErrInvalidHeader, size)
	}

	h.Version = Version{Minor: b[10], Major: b[11]}
	if h.Version.Major != CurrentVersion.Major {
		return fmt.Errorf("%w: %v", ErrUnsupportedVersion, h.Version)
	}
	h.WordListOffset = binary.LittleEndian.Uint32(b[12:])
	h.RadixOffset = binary.LittleEndian.Uint32(b[16:])
	h.RootOffset = binary.LittleEndian.Uint32(b[20:])

	if h.WordListOffset < HeaderSize || h.RadixOffset < h.WordListOffset {
		return fmt.Errorf("%w: word list offset %d, radix offset %d", ErrInvalidHeader, h.WordListOffset, h.RadixOffset)
	}
	if h.RootOffset != 0 && h.RootOffset < h.RadixOffset {
		return fmt.Errorf("%w: root offset %d", ErrInvalidHeader, h.RootOffset)
	}
	return nil
}
