// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultDirPerm  = 0755
	DefaultFilePerm = 0644
	DefaultExecPerm = 0755
)

// IsExist returns true if the file name exists.
func IsExist(name string) bool {
	_, err := os.Lstat(name)
	return err == nil
}

// IsDir returns true if name exists and is a directory.
func IsDir(name string) bool {
	st, err := os.Stat(name)
	return err == nil && st.IsDir()
}

func MkdirAll(dir string) error {
	return os.MkdirAll(dir, DefaultDirPerm)
}

func WriteFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, DefaultFilePerm)
}

// RewriteFile replaces contents of an existing file keeping its permissions.
func RewriteFile(filename string, data []byte) error {
	st, err := os.Stat(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, st.Mode().Perm())
}

// CopyFile atomically copies oldFile to newFile preserving permissions and modification time.
func CopyFile(oldFile, newFile string) error {
	oldf, err := os.Open(oldFile)
	if err != nil {
		return err
	}
	defer oldf.Close()
	stat, err := oldf.Stat()
	if err != nil {
		return err
	}
	tmpFile := newFile + ".tmp"
	newf, err := os.OpenFile(tmpFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stat.Mode()&os.ModePerm)
	if err != nil {
		return err
	}
	defer newf.Close()
	if _, err := io.Copy(newf, oldf); err != nil {
		os.Remove(tmpFile)
		return err
	}
	if err := newf.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	if err := os.Chtimes(tmpFile, stat.ModTime(), stat.ModTime()); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, newFile)
}

// SkipFunc decides whether an entry is left out of a copy.
// rel is the entry path relative to the copy root in slash notation.
type SkipFunc func(rel string, entry fs.DirEntry) bool

// CopyDir recursively copies srcDir into dstDir.
// Entries for which skip returns true are not copied, skipped directories are not descended into.
// Regular files keep permissions and modification time, symlinks are recreated as is.
// Returns the number of copied files.
func CopyDir(srcDir, dstDir string, skip SkipFunc) (int, error) {
	copied := 0
	dstAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return 0, err
	}
	err = filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)
		if rel == "." {
			return MkdirAll(dst)
		}
		if abs, err := filepath.Abs(path); err == nil && abs == dstAbs {
			// The destination lives inside the source tree.
			return filepath.SkipDir
		}
		if skip != nil && skip(filepath.ToSlash(rel), entry) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch mode := entry.Type(); {
		case mode.IsDir():
			return MkdirAll(dst)
		case mode&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(target, dst)
		case mode.IsRegular():
			copied++
			return CopyFile(path, dst)
		default:
			return fmt.Errorf("can't copy %v: unsupported file type %v", path, mode)
		}
	})
	return copied, err
}

// Abs returns an absolute representation of path, paths that can't be resolved are returned as is.
func Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
