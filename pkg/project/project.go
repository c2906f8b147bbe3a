// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package project creates new driver projects from the driver template.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/drvkit/drvkit/pkg/ignore"
	"github.com/drvkit/drvkit/pkg/log"
	"github.com/drvkit/drvkit/pkg/osutil"
	"github.com/drvkit/drvkit/pkg/ui"
)

const (
	// MakefilePath is the kbuild file of the driver, relative to the project root.
	MakefilePath = "driver/Makefile"
	// DefaultModule is the module name used by the template's sample driver.
	DefaultModule = "led_drv"
)

var ErrAlreadyExists = errors.New("project already exists")

type ExistsError struct {
	Name string
	Dir  string
}

func (err *ExistsError) Error() string {
	return fmt.Sprintf("project %q already exists at %v", err.Name, err.Dir)
}

func (err *ExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ModuleLine returns the kbuild line that builds module name.
func ModuleLine(name string) string {
	return "obj-m += " + name + ".o"
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("project name is empty")
	}
	if name == "." || name == ".." || !nameRe.MatchString(name) {
		return fmt.Errorf("bad project name %q: only letters, digits, '_' and '-' are allowed", name)
	}
	return nil
}

type Params struct {
	Name string
	// TemplateDir is the root of the template tree.
	TemplateDir string
	// ParentDir is where the project is created, the parent of TemplateDir if empty.
	ParentDir string
	// Rules select template entries that are not copied, ignore.Template if nil.
	Rules ignore.Set
}

// Destination returns the absolute path of the project directory.
func (p *Params) Destination() (string, error) {
	parent := p.ParentDir
	if parent == "" {
		parent = filepath.Dir(osutil.Abs(p.TemplateDir))
	}
	return filepath.Abs(filepath.Join(parent, p.Name))
}

type Result struct {
	Name        string
	Dir         string
	TemplateDir string
	// Files is the number of copied regular files.
	Files int
	// Skipped lists template entries that matched an ignore rule.
	Skipped []string
	// Substituted is set if the sample module line was found and replaced.
	Substituted bool
}

// NextSteps returns what the user needs to do to get the new project building.
func (res *Result) NextSteps() []string {
	return []string{
		fmt.Sprintf("cd %v", res.Dir),
		fmt.Sprintf("Replace driver/%v.c with your driver code (rename to %v.c)", DefaultModule, res.Name),
		"Replace app/led_app.c with your test application (optional)",
		"Run: ./scripts/drv-compdb",
		"Run: make",
	}
}

// Create copies the template into a new project directory and points the
// driver Makefile at the new module name. The project is assembled in a
// temporary directory and moved into place only once complete.
func Create(p *Params) (*Result, error) {
	if err := ValidateName(p.Name); err != nil {
		return nil, err
	}
	templateDir := osutil.Abs(p.TemplateDir)
	if !osutil.IsDir(templateDir) {
		return nil, fmt.Errorf("template dir %v does not exist", templateDir)
	}
	dst, err := p.Destination()
	if err != nil {
		return nil, err
	}
	if osutil.IsExist(dst) {
		return nil, &ExistsError{Name: p.Name, Dir: dst}
	}
	parent := filepath.Dir(dst)
	created := firstMissing(parent)
	if err := osutil.MkdirAll(parent); err != nil {
		return nil, fmt.Errorf("failed to create %v: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, "."+p.Name+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	res, err := create(p, templateDir, staging, created)
	if err == nil {
		// MkdirTemp creates the directory with 0700.
		err = os.Chmod(staging, osutil.DefaultDirPerm)
	}
	if err == nil {
		res.Dir = dst
		err = install(staging, dst, p.Name)
	}
	if err != nil {
		os.RemoveAll(staging)
		return nil, err
	}
	return res, nil
}

// firstMissing returns the outermost directory on the way to dir that does not exist, or "".
func firstMissing(dir string) string {
	missing := ""
	for !osutil.IsExist(dir) {
		missing = dir
		up := filepath.Dir(dir)
		if up == dir {
			break
		}
		dir = up
	}
	return missing
}

// install moves the assembled project to dst. dst is created exclusively first,
// so a directory that appeared after the existence check is never replaced.
func install(staging, dst, name string) error {
	if err := os.Mkdir(dst, osutil.DefaultDirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &ExistsError{Name: name, Dir: dst}
		}
		return err
	}
	if err := os.Rename(staging, dst); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// create fills dir with the filtered template. created is a directory made
// for the destination's parents, it is not copied if it lies inside the template.
func create(p *Params, templateDir, dir, created string) (*Result, error) {
	rules := p.Rules
	if rules == nil {
		rules = ignore.Template
	}
	log.Logf(1, "ignore rules: %v", rules.Patterns())
	res := &Result{
		Name:        p.Name,
		TemplateDir: templateDir,
	}
	skip := func(rel string, entry fs.DirEntry) bool {
		if created != "" && filepath.Join(templateDir, filepath.FromSlash(rel)) == created {
			return true
		}
		rule, ok := rules.Match(rel)
		if ok {
			log.Logf(2, "skipping %v (%v rule %v)", rel, rule.Kind, rule)
			res.Skipped = append(res.Skipped, filepath.ToSlash(rel))
		}
		return ok
	}
	files, err := osutil.CopyDir(templateDir, dir, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to copy template: %w", err)
	}
	res.Files = files
	log.Logf(1, "copied %v files from %v, skipped %v", files, templateDir, len(res.Skipped))
	res.Substituted, err = rename(filepath.Join(dir, filepath.FromSlash(MakefilePath)), p.Name)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// rename replaces every sample module line in the Makefile with the one for name.
// The file is written back even if nothing changed.
func rename(makefile, name string) (bool, error) {
	data, err := os.ReadFile(makefile)
	if err != nil {
		return false, fmt.Errorf("failed to read driver Makefile: %w", err)
	}
	old := []byte(ModuleLine(DefaultModule))
	found := bytes.Contains(data, old)
	updated := bytes.ReplaceAll(data, old, []byte(ModuleLine(name)))
	if err := osutil.RewriteFile(makefile, updated); err != nil {
		return false, fmt.Errorf("failed to write driver Makefile: %w", err)
	}
	if diff := ui.LineDiff(string(data), string(updated)); diff != "" {
		log.Logf(1, "%v:\n%v", MakefilePath, diff)
	}
	return found, nil
}
