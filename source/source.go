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

// Package source opens source dictionaries by file extension.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/source/stardict"
	"github.com/ianlewis/go-prspdict/source/xdxf"
)

// ErrUnknownExtension is returned when no parser handles the file extension.
var ErrUnknownExtension = errors.New("unknown extension")

// Extensions returns the supported file extensions.
func Extensions() []string {
	return []string{xdxf.Ext, stardict.Ext}
}

// Open opens the source dictionary at path with the parser matching its
// extension.
func Open(path string) (article.Source, error) {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case stardict.Ext:
		s, err := stardict.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening stardict: %w", err)
		}
		return s, nil
	case xdxf.Ext:
		s, err := xdxf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening xdxf: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q, supported: %s", ErrUnknownExtension, ext, strings.Join(Extensions(), ", "))
	}
}
