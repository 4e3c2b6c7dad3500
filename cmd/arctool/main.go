/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Command arctool is a thin CLI over archivefs: it lists an archive's
// entries; it has no command that writes or converts archives. Argument
// parsing stays minimal by design; the library, not the CLI, is the
// point of this module.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/nabbar/goarchive/format/allformats"

	"github.com/nabbar/goarchive/archivefs"
	"github.com/nabbar/goarchive/config"
	"github.com/nabbar/goarchive/match"
)

var (
	flagConfig  string
	flagInclude []string
	flagExclude []string
	flagFold    bool
)

func main() {
	root := &cobra.Command{
		Use:   "arctool",
		Short: "inspect tar/zip/cpio/ar archives",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config file (TOML/YAML/JSON)")
	root.PersistentFlags().StringSliceVar(&flagInclude, "include", nil, "glob pattern to include (repeatable)")
	root.PersistentFlags().StringSliceVar(&flagExclude, "exclude", nil, "glob pattern to exclude (repeatable)")
	root.PersistentFlags().BoolVar(&flagFold, "fold-case", false, "case-fold include/exclude globs")

	root.AddCommand(listCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("arctool failed")
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "print every entry's name, type, and size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			m := match.NewSet()
			m.FoldCase = cfg.FoldCase
			if cmd.Flags().Changed("fold-case") {
				m.FoldCase = flagFold
			}
			for _, g := range append(cfg.Include, flagInclude...) {
				m.AddInclude(g)
			}
			for _, g := range append(cfg.Exclude, flagExclude...) {
				m.AddExclude(g)
			}
			if t, ok := cfg.NewerThan(); ok {
				m.SetAfter(t)
			}

			r, err := archivefs.OpenReader(f, archivefs.WithMatcher(m))
			if err != nil {
				return err
			}
			defer r.Close()

			for {
				e, err := r.NextHeader()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				fmt.Printf("%-10s %10d  %s\n", e.Type, e.EffectiveSize(), e.Pathname)
				if err := r.Skip(); err != nil {
					return err
				}
			}

			for _, unused := range m.Unmatched() {
				logrus.WithField("pattern", unused).Warn("pattern matched no entries")
			}
			return nil
		},
	}
}
