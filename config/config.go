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

// Package config loads arctool's settings (default container format,
// compression, block size, and match patterns) from a config file and
// environment variables via spf13/viper, the way the wider corpus wires its
// own command-line tools. Command-line flags are applied on top of these by
// cmd/arctool itself.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved set of defaults a fresh archivefs session starts
// from; CLI flags (see cmd/arctool) override whatever this loads.
type Config struct {
	Format      string   `mapstructure:"format"`
	Compression string   `mapstructure:"compression"`
	BlockSize   int      `mapstructure:"block_size"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	FoldCase    bool     `mapstructure:"fold_case"`
	Newer       string   `mapstructure:"newer"`
}

// Defaults returns the built-in configuration used when no file, flag, or
// environment variable overrides a setting.
func Defaults() Config {
	return Config{
		Format:      "tar",
		Compression: "none",
		BlockSize:   10240,
	}
}

// Load builds a viper instance rooted at Defaults, layering in (in
// increasing priority) a config file at path (if non-empty), environment
// variables prefixed ARCTOOL_, and returns the merged result.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("format", def.Format)
	v.SetDefault("compression", def.Compression)
	v.SetDefault("block_size", def.BlockSize)
	v.SetDefault("fold_case", def.FoldCase)

	v.SetEnvPrefix("arctool")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewerThan parses Newer as RFC3339 for match.Set.SetAfter, returning the
// zero time and false when Newer is empty.
func (c Config) NewerThan() (time.Time, bool) {
	if c.Newer == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.Newer)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
