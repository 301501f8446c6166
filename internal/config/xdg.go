// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"path/filepath"
)

const appDir = "countup"

// baseDir resolves an XDG base directory. Relative values of env are
// ignored, as the base directory specification requires.
func baseDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// ConfigDir is the countup directory under XDG_CONFIG_HOME.
func ConfigDir() string { return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appDir) }

// DataDir is the countup directory under XDG_DATA_HOME.
func DataDir() string { return filepath.Join(baseDir("XDG_DATA_HOME", ".local", "share"), appDir) }

// DefaultConfigPath returns the default settings file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultLedgerPath returns the default credit ledger database.
func DefaultLedgerPath() string {
	return filepath.Join(DataDir(), "credits.db")
}
