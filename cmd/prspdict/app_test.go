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

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prspdict "github.com/ianlewis/go-prspdict"
	"github.com/ianlewis/go-prspdict/internal/config"
	"github.com/ianlewis/go-prspdict/internal/testutil"
	"github.com/ianlewis/go-prspdict/source"
)

const testXDXF = `<?xml version="1.0" encoding="UTF-8"?>
<xdxf lang_from="ENG" lang_to="ENG" format="visual">
<full_name>Test</full_name>
<ar><k>cat</k>a feline</ar>
<ar><k>cat</k>domestic animal</ar>
<ar><k>catalog</k>a list</ar>
<ar>no keyword</ar>
<ar><k>dog</k>a well-known--friend</ar>
</xdxf>`

// runApp runs the app and returns its standard output and standard error.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newPrspdictApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"prspdict"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeXDXF(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.dict.xdxf")
	require.NoError(t, os.WriteFile(path, []byte(testXDXF), 0o600))
	return path
}

func TestConvertQuery(t *testing.T) {
	t.Parallel()

	input := writeXDXF(t)
	stdout, stderr, err := runApp(t, "convert", "--temp-dir", t.TempDir(), input)
	require.NoError(t, err)

	output := filepath.Join(filepath.Dir(input), "test.prspdict")
	assert.Equal(t, output+"\n", stdout)
	assert.Contains(t, stderr, "finished")
	assert.Contains(t, stderr, "dropped articles without keyword")
	require.FileExists(t, output)

	stdout, _, err = runApp(t, "query", output, "cat")
	require.NoError(t, err)
	assert.Equal(t, "cat\ta feline\n", stdout)

	stdout, _, err = runApp(t, "query", "--full", output, "cat")
	require.NoError(t, err)
	assert.Equal(t, "cat\na felinedomestic animal\n\n", stdout)

	stdout, _, err = runApp(t, "query", "--prefix", output, "ca")
	require.NoError(t, err)
	assert.Equal(t, "cat\ta feline\ncatalog\ta list\n", stdout)

	// Missing words fall back to the closest words.
	stdout, _, err = runApp(t, "query", output, "d")
	require.NoError(t, err)
	assert.Equal(t, "dog\ta well known friend\n", stdout)

	_, _, err = runApp(t, "query", output, "zebra")
	require.ErrorIs(t, err, prspdict.ErrNotFound)

	stdout, _, err = runApp(t, "info", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, output)
	assert.Contains(t, stdout, "1.0")
}

func TestConvert_stardict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := testutil.WriteDict(t, dir, "test", []*testutil.Word{
		{Word: "cat", Data: []testutil.Data{{Type: 'm', Data: []byte("a feline")}}},
	}, &testutil.Options{DictZip: true})
	output := filepath.Join(dir, "out.prspdict")

	_, _, err := runApp(t, "--log-format", "json", "convert", "--short-len", "3", input, output)
	require.NoError(t, err)

	stdout, _, err := runApp(t, "query", output, "cat")
	require.NoError(t, err)
	assert.Equal(t, "cat\ta f\n", stdout)
}

func TestConvert_errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown extension", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "test.txt")
		require.NoError(t, os.WriteFile(input, []byte("cat"), 0o600))

		_, _, err := runApp(t, "convert", input)
		require.ErrorIs(t, err, source.ErrUnknownExtension)
		assert.NoFileExists(t, filepath.Join(dir, "test.prspdict"))
	})

	t.Run("arguments", func(t *testing.T) {
		t.Parallel()

		_, _, err := runApp(t, "convert")
		require.ErrorIs(t, err, ErrFlagParse)

		_, _, err = runApp(t, "convert", "a", "b", "c")
		require.ErrorIs(t, err, ErrFlagParse)
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		_, _, err := runApp(t, "convert", "--no-such-flag", "a.xdxf")
		require.ErrorIs(t, err, ErrFlagParse)
	})

	t.Run("bad log format", func(t *testing.T) {
		t.Parallel()

		_, _, err := runApp(t, "--log-format", "xml", "convert", writeXDXF(t))
		require.ErrorIs(t, err, ErrFlagParse)
	})
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := runApp(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Copyright (c) 2021 Google LLC, 2025 Ian Lewis")
}

func TestRun(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitCodeFlagParseError, run([]string{"prspdict", "query"}))
	assert.Equal(t, ExitCodeUnknownError, run([]string{"prspdict", "info", filepath.Join(t.TempDir(), "missing.prspdict")}))
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		output   string
		expected string
	}{
		{input: "dict.xdxf", expected: "dict.prspdict"},
		{input: "dir/en-ru.dict.ifo", expected: filepath.Join("dir", "en-ru.prspdict")},
		{input: "./dir.v2/noext", expected: filepath.Join("dir.v2", "noext.prspdict")},
		{input: "dict.xdxf", output: "out", expected: "out.prspdict"},
		{input: "dict.xdxf", output: "out.prspdict", expected: "out.prspdict"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, outputPath(test.input, test.output), "outputPath(%q, %q)", test.input, test.output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("hello", "n", 1)
	assert.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
