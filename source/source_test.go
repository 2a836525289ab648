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

package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-prspdict/article"
	"github.com/ianlewis/go-prspdict/internal/testutil"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ifoPath := testutil.WriteDict(t, dir, "test", []*testutil.Word{
		{Word: "cat", Data: []testutil.Data{{Type: 'm', Data: []byte("a feline")}}},
	}, nil)
	xdxfPath := filepath.Join(dir, "test.XDXF")
	if err := os.WriteFile(xdxfPath, []byte(`<xdxf><ar><k>cat</k>a feline</ar></xdxf>`), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{ifoPath, xdxfPath} {
		src, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%q): %v", path, err)
		}
		set, _, err := article.Collect(src)
		if err != nil {
			t.Fatalf("Collect(%q): %v", path, err)
		}
		if err := src.Close(); err != nil {
			t.Fatalf("Close(%q): %v", path, err)
		}

		want := article.Set{
			"cat": {Keyword: "cat", Translation: "a feline", ShortTranslation: "a feline"},
		}
		if diff := cmp.Diff(want, set); diff != "" {
			t.Errorf("Collect(%q) (-want, +got):\n%s", path, diff)
		}
	}
}

func TestOpen_unknownExtension(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"test.txt", "test", "test.dict"} {
		if _, err := Open(filepath.Join(t.TempDir(), name)); !errors.Is(err, ErrUnknownExtension) {
			t.Errorf("Open(%q); want: %v, got: %v", name, ErrUnknownExtension, err)
		}
	}
}
