package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveBaseDir picks the directory holding Config/, Data/, Objects/ and
// RunTime/. An explicit dir wins. A binary installed in a bin-like
// subdirectory (App/, bin/) uses that directory's parent. Otherwise the
// working directory is used.
func ResolveBaseDir(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve base dir: %w", err)
		}
		return abs, nil
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		switch strings.ToLower(filepath.Base(dir)) {
		case "app", "bin":
			parent := filepath.Dir(dir)
			if _, err := os.Stat(filepath.Join(parent, DefaultConfigFile)); err == nil {
				return parent, nil
			}
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}
	return wd, nil
}
