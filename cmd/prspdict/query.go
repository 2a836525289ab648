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

package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	prspdict "github.com/ianlewis/go-prspdict"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "look up words in a .prspdict dictionary",
		ArgsUsage: "FILE QUERY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "prefix",
				Usage:   "list words starting with QUERY",
				Aliases: []string{"p"},
			},
			&cli.IntFlag{
				Name:    "limit",
				Usage:   "list at most `N` words",
				Aliases: []string{"n"},
				Value:   20,
			},
			&cli.BoolFlag{
				Name:    "full",
				Usage:   "print the full article",
				Aliases: []string{"f"},
			},
		},
		OnUsageError: onUsageError,
		Action:       query,
	}
}

func query(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("%w: unexpected number of arguments: %d", ErrFlagParse, c.NArg())
	}
	path := c.Args().Get(0)
	q := c.Args().Get(1)

	d, err := prspdict.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrspdict, err)
	}
	defer d.Close()

	var entries []*prspdict.Entry
	if c.Bool("prefix") {
		entries, err = d.Prefix(q, c.Int("limit"))
	} else {
		var e *prspdict.Entry
		e, err = d.Lookup(q)
		if errors.Is(err, prspdict.ErrNotFound) {
			// Fall back to the closest words.
			entries, err = d.Prefix(q, c.Int("limit"))
		} else if err == nil {
			entries = []*prspdict.Entry{e}
		}
	}
	if err != nil {
		return fmt.Errorf("%w: querying %q: %w", ErrPrspdict, q, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %w: %q", ErrPrspdict, prspdict.ErrNotFound, q)
	}

	w := c.App.Writer
	for _, e := range entries {
		if !c.Bool("full") {
			fmt.Fprintln(w, e)
			continue
		}
		text, err := d.Article(e)
		if err != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrPrspdict, e.Keyword, err)
		}
		fmt.Fprintf(w, "%s\n%s\n\n", e.Title(), text)
	}
	return nil
}
