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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	prspdict "github.com/ianlewis/go-prspdict"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:         "info",
		Usage:        "print the layout of .prspdict dictionaries",
		ArgsUsage:    "FILE...",
		OnUsageError: onUsageError,
		Action:       info,
	}
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("%w: missing FILE", ErrFlagParse)
	}

	tbl := table.New("File", "Version", "Words", "Articles", "Word List", "Radix Tree", "Root", "Size").
		WithWriter(c.App.Writer)
	for _, path := range c.Args().Slice() {
		d, err := prspdict.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPrspdict, err)
		}
		entries, err := d.Prefix("", 0)
		_ = d.Close()
		if err != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrPrspdict, path, err)
		}

		h := d.Header()
		tbl.AddRow(
			path,
			h.Version,
			len(entries),
			prspdict.HeaderSize,
			h.WordListOffset,
			h.RadixOffset,
			h.RootOffset,
			d.Size(),
		)
	}
	tbl.Print()
	return nil
}
