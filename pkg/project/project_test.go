// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/drvkit/drvkit/pkg/osutil"
	"github.com/drvkit/drvkit/pkg/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMakefile = "# sample\nobj-m += led_drv.o\n\nall:\n\t$(MAKE) -C $(KDIR) M=$(PWD) modules\n"

func makeTemplate(t *testing.T, files map[string]string) string {
	dir := filepath.Join(t.TempDir(), "Driver_Template")
	require.NoError(t, osutil.MkdirAll(dir))
	testutil.WriteTree(t, dir, files)
	return dir
}

func defaultTemplate(t *testing.T) string {
	dir := makeTemplate(t, map[string]string{
		".git/HEAD":                 "ref: refs/heads/main\n",
		"README.md":                 "# Driver template\n",
		"driver/Makefile":           testMakefile,
		"driver/led_drv.c":          "// led\n",
		"driver/led_drv.ko":         "elf",
		"driver/led_drv.o":          "elf",
		"driver/led_drv.mod":        "led_drv.o\n",
		"driver/led_drv.mod.c":      "// generated\n",
		"driver/.led_drv.ko.cmd":    "cmd",
		"driver/Module.symvers":     "",
		"driver/modules.order":      "led_drv.ko\n",
		"driver/.tmp_versions/x":    "",
		"scripts/__pycache__/a.pyc": "",
		"app/led_app":               "elf",
		"app/led_app.c":             "int main() {}\n",
	})
	require.NoError(t, os.Chmod(filepath.Join(dir, "README.md"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "drv-compdb"), []byte("#!/bin/sh\n"), osutil.DefaultExecPerm))
	return dir
}

func listTree(t *testing.T, dir string) []string {
	var files []string
	for name := range testutil.ReadTree(t, dir) {
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

func TestCreate(t *testing.T) {
	template := defaultTemplate(t)
	res, err := Create(&Params{Name: "temp_sensor_drv", TemplateDir: template})
	require.NoError(t, err)

	dst := filepath.Join(filepath.Dir(template), "temp_sensor_drv")
	assert.Equal(t, dst, res.Dir)
	assert.Equal(t, template, res.TemplateDir)
	assert.True(t, res.Substituted)
	assert.Equal(t, 5, res.Files)
	want := []string{
		"README.md",
		"app/led_app.c",
		"driver/Makefile",
		"driver/led_drv.c",
		"scripts/drv-compdb",
	}
	if diff := cmp.Diff(want, listTree(t, dst)); diff != "" {
		t.Fatal(diff)
	}
	assert.ElementsMatch(t, []string{
		".git",
		"app/led_app",
		"driver/.led_drv.ko.cmd",
		"driver/.tmp_versions",
		"driver/Module.symvers",
		"driver/led_drv.ko",
		"driver/led_drv.mod",
		"driver/led_drv.mod.c",
		"driver/led_drv.o",
		"driver/modules.order",
		"scripts/__pycache__",
	}, res.Skipped)

	makefile, err := os.ReadFile(filepath.Join(dst, "driver", "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(testMakefile, "led_drv.o", "temp_sensor_drv.o", 1), string(makefile))
	assert.NotContains(t, string(makefile), "led_drv.o")

	st, err := os.Stat(filepath.Join(dst, "scripts", "drv-compdb"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(osutil.DefaultExecPerm), st.Mode().Perm())
	st, err = os.Stat(filepath.Join(dst, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), st.Mode().Perm())
	st, err = os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(osutil.DefaultDirPerm), st.Mode().Perm())

	// The template itself is not modified.
	makefile, err = os.ReadFile(filepath.Join(template, "driver", "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, testMakefile, string(makefile))

	assert.Equal(t, []string{
		"cd " + dst,
		"Replace driver/led_drv.c with your driver code (rename to temp_sensor_drv.c)",
		"Replace app/led_app.c with your test application (optional)",
		"Run: ./scripts/drv-compdb",
		"Run: make",
	}, res.NextSteps())
}

func TestCreateParentDir(t *testing.T) {
	template := defaultTemplate(t)
	parent := filepath.Join(t.TempDir(), "work", "drivers")
	res, err := Create(&Params{Name: "foo", TemplateDir: template, ParentDir: parent})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "foo"), res.Dir)
	assert.True(t, osutil.IsDir(filepath.Join(parent, "foo", "driver")))
	assert.Equal(t, []string{"foo"}, testutil.ListDir(t, parent))
}

func TestCreateInsideTemplate(t *testing.T) {
	template := defaultTemplate(t)
	res, err := Create(&Params{Name: "nested", TemplateDir: template, ParentDir: template})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(template, "nested"), res.Dir)
	assert.False(t, osutil.IsExist(filepath.Join(res.Dir, "nested")))
	assert.Equal(t, 5, res.Files)
}

func TestCreateExists(t *testing.T) {
	template := defaultTemplate(t)
	dst := filepath.Join(filepath.Dir(template), "foo")
	require.NoError(t, osutil.MkdirAll(dst))
	require.NoError(t, osutil.WriteFile(filepath.Join(dst, "keep"), []byte("data")))

	_, err := Create(&Params{Name: "foo", TemplateDir: template})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.Contains(t, err.Error(), dst)
	var exists *ExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "foo", exists.Name)

	assert.Equal(t, []string{"keep"}, listTree(t, dst))
	data, err := os.ReadFile(filepath.Join(dst, "keep"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestCreateNoToken(t *testing.T) {
	template := makeTemplate(t, map[string]string{
		"driver/Makefile": "obj-m += other.o\n",
		"app/led_app.c":   "",
	})
	res, err := Create(&Params{Name: "foo", TemplateDir: template})
	require.NoError(t, err)
	assert.False(t, res.Substituted)
	data, err := os.ReadFile(filepath.Join(res.Dir, "driver", "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, "obj-m += other.o\n", string(data))
}

func TestCreateReplacesAll(t *testing.T) {
	template := makeTemplate(t, map[string]string{
		"driver/Makefile": "obj-m += led_drv.o\nifdef EXTRA\nobj-m += led_drv.o\nendif\n",
	})
	res, err := Create(&Params{Name: "foo", TemplateDir: template})
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(res.Dir, "driver", "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, "obj-m += foo.o\nifdef EXTRA\nobj-m += foo.o\nendif\n", string(data))
}

func TestCreateNoMakefile(t *testing.T) {
	template := makeTemplate(t, map[string]string{
		"app/led_app.c": "",
	})
	_, err := Create(&Params{Name: "foo", TemplateDir: template})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	// Nothing is left behind next to the template.
	assert.Equal(t, []string{"Driver_Template"}, testutil.ListDir(t, filepath.Dir(template)))
}

func TestCreateErrors(t *testing.T) {
	_, err := Create(&Params{Name: "foo", TemplateDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "does not exist")
	_, err = Create(&Params{Name: "../foo", TemplateDir: t.TempDir()})
	assert.ErrorContains(t, err, "bad project name")
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"temp_sensor_drv", true},
		{"my-drv2", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{"a b", false},
		{"drv.c", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateName(test.name)
			assert.Equal(t, test.ok, err == nil, "err: %v", err)
		})
	}
}

func TestCreateParentInsideTemplate(t *testing.T) {
	template := defaultTemplate(t)
	res, err := Create(&Params{Name: "foo", TemplateDir: template, ParentDir: filepath.Join(template, "work", "drivers")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(template, "work", "drivers", "foo"), res.Dir)
	assert.Equal(t, 5, res.Files)
	assert.False(t, osutil.IsExist(filepath.Join(res.Dir, "work")))
	assert.NotContains(t, res.Skipped, "work")

	// An existing template dir as the parent is still copied, without the project itself.
	res, err = Create(&Params{Name: "bar", TemplateDir: template, ParentDir: filepath.Join(template, "driver")})
	require.NoError(t, err)
	assert.True(t, osutil.IsExist(filepath.Join(res.Dir, "driver", "Makefile")))
	assert.False(t, osutil.IsExist(filepath.Join(res.Dir, "driver", "bar")))
}

func TestInstall(t *testing.T) {
	staging := filepath.Join(t.TempDir(), ".foo-1")
	testutil.WriteTree(t, staging, map[string]string{"driver/Makefile": "obj-m += foo.o\n"})

	// A directory that appeared after the existence check is not replaced.
	dst := filepath.Join(t.TempDir(), "foo")
	require.NoError(t, osutil.MkdirAll(dst))
	err := install(staging, dst, "foo")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Empty(t, testutil.ListDir(t, dst))
	assert.True(t, osutil.IsExist(filepath.Join(staging, "driver", "Makefile")))

	dst = filepath.Join(t.TempDir(), "foo")
	require.NoError(t, install(staging, dst, "foo"))
	assert.Equal(t, map[string]string{"driver/Makefile": "obj-m += foo.o\n"}, testutil.ReadTree(t, dst))
	assert.False(t, osutil.IsExist(staging))
}
