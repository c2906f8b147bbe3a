// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package skel holds the driver template skeleton and writes it into a template directory.
package skel

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/drvkit/drvkit/pkg/compdb"
	"github.com/drvkit/drvkit/pkg/log"
	"github.com/drvkit/drvkit/pkg/osutil"
	"gopkg.in/yaml.v3"
)

//go:embed all:files
var files embed.FS

const (
	filesDir     = "files"
	templateExt  = ".tmpl"
	ClangdFile   = ".clangd"
	clangdIndent = 2
)

// Legacy lists sample files of older template versions.
var Legacy = []string{
	"driver/my_driver.c",
	"app/my_app.c",
}

type Result struct {
	Written []string
	Removed []string
}

// Seed writes the skeleton into dir, overwriting existing files, and removes legacy samples.
// Build settings in cfg end up in the top-level Makefile and in .clangd.
func Seed(dir string, cfg *compdb.Config) (*Result, error) {
	if !osutil.IsDir(dir) {
		return nil, fmt.Errorf("template dir %v does not exist", dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := new(Result)
	write := func(name string, data []byte) error {
		file := filepath.Join(dir, filepath.FromSlash(name))
		if err := osutil.MkdirAll(filepath.Dir(file)); err != nil {
			return err
		}
		if err := osutil.WriteFile(file, data); err != nil {
			return err
		}
		log.Logf(1, "wrote %v (%v bytes)", file, len(data))
		res.Written = append(res.Written, name)
		return nil
	}
	err := fs.WalkDir(files, filesDir, func(file string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		name := strings.TrimPrefix(file, filesDir+"/")
		data, err := files.ReadFile(file)
		if err != nil {
			return err
		}
		if strings.HasSuffix(name, templateExt) {
			name = strings.TrimSuffix(name, templateExt)
			if data, err = render(name, data, cfg); err != nil {
				return err
			}
		}
		return write(name, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write skeleton: %w", err)
	}
	clangd, err := Clangd(cfg)
	if err != nil {
		return nil, err
	}
	if err := write(ClangdFile, clangd); err != nil {
		return nil, fmt.Errorf("failed to write skeleton: %w", err)
	}
	sort.Strings(res.Written)
	for _, name := range Legacy {
		file := filepath.Join(dir, filepath.FromSlash(name))
		if !osutil.IsExist(file) {
			continue
		}
		if err := os.Remove(file); err != nil {
			return nil, err
		}
		res.Removed = append(res.Removed, name)
	}
	return res, nil
}

// makeVars are the variables available to skeleton templates.
// Arch is the kernel's ARCH= name, aliases accepted on the command line are resolved.
type makeVars struct {
	KernelDir    string
	Arch         string
	CrossCompile string
}

func render(name string, data []byte, cfg *compdb.Config) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("bad template %v: %w", name, err)
	}
	vars := makeVars{
		KernelDir:    cfg.KernelDir,
		Arch:         cfg.Target().Arch,
		CrossCompile: cfg.CrossCompile,
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, vars); err != nil {
		return nil, fmt.Errorf("failed to render %v: %w", name, err)
	}
	return buf.Bytes(), nil
}

type ClangdConfig struct {
	CompileFlags ClangdFlags `yaml:"CompileFlags"`
}

type ClangdFlags struct {
	Add    []string `yaml:"Add"`
	Remove []string `yaml:"Remove"`
}

// Clangd renders the clangd configuration for kernel module sources.
// Warning flags are removed because clang does not understand all of gcc's.
func Clangd(cfg *compdb.Config) ([]byte, error) {
	add := []string{"--target=" + Triple(cfg)}
	var rest []string
	for _, flag := range compdb.KernelFlags() {
		if flag == "-nostdinc" {
			add = append(add, flag)
		} else {
			rest = append(rest, flag)
		}
	}
	add = append(add, cfg.KernelIncludes()...)
	add = append(add, "-I"+cfg.KernelDir+"/drivers")
	add = append(add, rest...)
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(clangdIndent)
	err := enc.Encode(ClangdConfig{
		CompileFlags: ClangdFlags{
			Add:    add,
			Remove: []string{"-W*"},
		},
	})
	if err == nil {
		err = enc.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %v: %w", ClangdFile, err)
	}
	return buf.Bytes(), nil
}

// Triple returns the clang target for the toolchain: the toolchain prefix
// without the trailing dash, or the arch default if no prefix is set.
func Triple(cfg *compdb.Config) string {
	if cfg.CrossCompile == "" || strings.HasSuffix(cfg.CrossCompile, "/") {
		return cfg.Target().Triple
	}
	return strings.TrimSuffix(path.Base(filepath.ToSlash(cfg.CrossCompile)), "-")
}
