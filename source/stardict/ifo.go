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
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const ifoMagic = "StarDict's dict ifo file"

var (
	errBadMagic       = errors.New("bad magic data")
	errInvalidKey     = errors.New("invalid key")
	errMissingVersion = errors.New("missing version")
	errInvalidVersion = errors.New("invalid version")
	errInvalidValue   = errors.New("invalid value")
)

var keyRegex = regexp.MustCompile("^[a-zA-Z0-9-_]+$")

// Info is the dictionary metadata from the .ifo file.
type Info struct {
	Version          string
	Bookname         string
	WordCount        int64
	SynWordCount     int64
	IdxOffsetBits    int
	SameTypeSequence []DataType

	metadata map[string]string
}

// Value returns the raw value of an .ifo key.
func (i *Info) Value(key string) string {
	return i.metadata[key]
}

// readInfo parses and validates an .ifo file.
func readInfo(r io.Reader) (*Info, error) {
	s := bufio.NewScanner(r)
	if !s.Scan() || strings.TrimSpace(s.Text()) != ifoMagic {
		if err := s.Err(); err != nil {
			return nil, fmt.Errorf("reading .ifo: %w", err)
		}
		return nil, errBadMagic
	}

	metadata := map[string]string{}
	i := 0
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !keyRegex.MatchString(key) {
			return nil, fmt.Errorf("%w: %q", errInvalidKey, key)
		}
		if i == 0 && key != "version" {
			return nil, errMissingVersion
		}
		metadata[key] = value
		i++
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading .ifo: %w", err)
	}
	if i == 0 {
		return nil, errMissingVersion
	}

	info := &Info{
		Version:       metadata["version"],
		Bookname:      metadata["bookname"],
		IdxOffsetBits: 32,
		metadata:      metadata,
	}

	switch info.Version {
	case "2.4.2", "3.0.0":
	default:
		return nil, fmt.Errorf("%w: %q", errInvalidVersion, info.Version)
	}

	var err error
	if info.WordCount, err = parseCount(metadata, "wordcount"); err != nil {
		return nil, err
	}
	if info.SynWordCount, err = parseCount(metadata, "synwordcount"); err != nil {
		return nil, err
	}

	if bits := metadata["idxoffsetbits"]; bits != "" && info.Version == "3.0.0" {
		info.IdxOffsetBits, err = strconv.Atoi(bits)
		if err != nil || (info.IdxOffsetBits != 32 && info.IdxOffsetBits != 64) {
			return nil, fmt.Errorf("%w: idxoffsetbits=%q", errInvalidValue, bits)
		}
	}

	for _, r := range metadata["sametypesequence"] {
		t := DataType(r)
		if !t.valid() {
			return nil, fmt.Errorf("%w: sametypesequence type %q", errInvalidValue, r)
		}
		info.SameTypeSequence = append(info.SameTypeSequence, t)
	}

	return info, nil
}

func parseCount(metadata map[string]string, key string) (int64, error) {
	v := metadata[key]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidValue, key, v)
	}
	return n, nil
}
