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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	prspdict "github.com/ianlewis/go-prspdict"
	"github.com/ianlewis/go-prspdict/source"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert an XDXF (.xdxf) or StarDict (.ifo) dictionary",
		ArgsUsage: "INPUT [OUTPUT]",
		Description: strings.Join([]string{
			"Converts INPUT to the .prspdict format. OUTPUT defaults to the",
			"input file name up to its first '.' with the .prspdict extension.",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "temp-dir",
				Usage: "create the scratch word list in `DIR`",
			},
			&cli.IntFlag{
				Name:  "short-len",
				Usage: "truncate short translations to `N` characters",
			},
		},
		OnUsageError: onUsageError,
		Action:       convert,
	}
}

// outputPath returns the output path for the input file. If output is empty
// the path is derived from the input file name.
func outputPath(input, output string) string {
	if output == "" {
		dir, base := filepath.Split(input)
		if i := strings.IndexByte(base, '.'); i > -1 {
			base = base[:i]
		}
		output = filepath.Join(dir, base)
	}
	if !strings.HasSuffix(output, prspdict.Ext) {
		output += prspdict.Ext
	}
	return output
}

func convert(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return fmt.Errorf("%w: unexpected number of arguments: %d", ErrFlagParse, c.NArg())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, c.App.ErrWriter)

	input := c.Args().Get(0)
	output := outputPath(input, c.Args().Get(1))

	// The source is opened first so that unsupported input does not leave an
	// output file behind.
	src, err := source.Open(input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrspdict, err)
	}
	defer src.Close()

	logger.Info("reading articles (might take a while)", "input", input)
	stats, err := prspdict.BuildFile(output, src, &prspdict.BuildOptions{
		TempDir:  cfg.TempDir,
		ShortLen: cfg.ShortLen,
	})
	if err != nil {
		return fmt.Errorf("%w: converting %q: %w", ErrPrspdict, input, err)
	}

	if stats.Dropped > 0 {
		logger.Warn("dropped articles without keyword", "count", stats.Dropped)
	}
	if stats.Merged > 0 {
		logger.Info("merged articles with duplicate keywords", "count", stats.Merged)
	}
	logger.Info("finished",
		"output", output,
		"articles", stats.Articles,
		"nodes", stats.Nodes,
		"articles_len", stats.ArticlesLen,
		"word_list_len", stats.WordListLen,
		"radix_len", stats.RadixLen,
	)

	_, err = fmt.Fprintln(c.App.Writer, output)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrspdict, err)
	}
	return nil
}
