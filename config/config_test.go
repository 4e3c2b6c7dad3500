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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Format != "tar" || d.Compression != "none" || d.BlockSize != 10240 {
		t.Fatalf("Defaults() = %+v, want format=tar compression=none block_size=10240", d)
	}
}

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "tar" || cfg.BlockSize != 10240 {
		t.Fatalf("Load(\"\") = %+v, want the built-in defaults", cfg)
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arctool.yaml")
	content := "format: zip\ncompression: gzip\nblock_size: 512\n"
	if err := writeFile(path, content); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "zip" {
		t.Fatalf("Format = %q, want %q", cfg.Format, "zip")
	}
	if cfg.Compression != "gzip" {
		t.Fatalf("Compression = %q, want %q", cfg.Compression, "gzip")
	}
	if cfg.BlockSize != 512 {
		t.Fatalf("BlockSize = %d, want 512", cfg.BlockSize)
	}
}

func TestLoad_EnvironmentOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arctool.yaml")
	if err := writeFile(path, "format: zip\n"); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	t.Setenv("ARCTOOL_FORMAT", "cpio")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "cpio" {
		t.Fatalf("Format = %q, want %q (environment should win over the config file)", cfg.Format, "cpio")
	}
}

func TestLoad_UnreadableFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("Load should fail for a config file that does not exist")
	}
}

func TestConfig_NewerThan(t *testing.T) {
	var c Config
	if _, ok := c.NewerThan(); ok {
		t.Fatal("NewerThan() should report false when Newer is empty")
	}

	c.Newer = "2024-03-15T12:00:00Z"
	tm, ok := c.NewerThan()
	if !ok {
		t.Fatal("NewerThan() should parse a valid RFC3339 timestamp")
	}
	if tm.Year() != 2024 || tm.Month() != 3 || tm.Day() != 15 {
		t.Fatalf("NewerThan() = %v, want 2024-03-15", tm)
	}

	c.Newer = "not a timestamp"
	if _, ok = c.NewerThan(); ok {
		t.Fatal("NewerThan() should report false for an unparsable timestamp")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
