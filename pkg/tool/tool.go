// Copyright 2020 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tool contains various helper utilitites useful for implementation of command line tools.
package tool

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drvkit/drvkit/pkg/ui"
)

func Failf(msg string, args ...interface{}) {
	ui.Error(os.Stderr, msg, args...)
	os.Exit(1)
}

func Fail(err error) {
	Failf("%v", err)
}

// RootDir returns the directory two levels above the running binary.
// Tools are installed into <root>/scripts, so this is the tree they belong to.
// If env is not empty and the variable is set, its value is returned instead.
func RootDir(env string) (string, error) {
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return filepath.Abs(dir)
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}
