// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package compdb generates compile_commands.json for an out-of-tree driver project,
// so that clangd and similar tools can resolve kernel headers.
package compdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drvkit/drvkit/pkg/log"
	"github.com/drvkit/drvkit/pkg/osutil"
	"github.com/drvkit/drvkit/pkg/ui"
	"github.com/drvkit/drvkit/sys/targets"
)

const (
	DefaultKernelDir    = "/home/gm/Workspace/linux_sdk/luckfox_rk3506_sdk/kernel"
	DefaultCrossCompile = "/home/gm/Workspace/linux_sdk/luckfox_rk3506_sdk/prebuilts/gcc/linux-x86/arm/" +
		"gcc-arm-10.3-2021.07-x86_64-arm-none-linux-gnueabihf/bin/arm-none-linux-gnueabihf-"
	DefaultArch   = "arm"
	DefaultOutput = "compile_commands.json"

	DriverDir = "driver"
	AppDir    = "app"
	sourceExt = ".c"
)

// Command is one entry of a JSON compilation database.
// Field order is the order in which entries are serialized.
type Command struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

type Config struct {
	// Kernel source tree the driver is built against.
	KernelDir string `json:"kdir"`
	// Toolchain prefix, "gcc" is appended to it.
	CrossCompile string `json:"cross_compile"`
	Arch         string `json:"arch"`
	// Output file, relative paths are resolved against the project root.
	Output string `json:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		KernelDir:    DefaultKernelDir,
		CrossCompile: DefaultCrossCompile,
		Arch:         DefaultArch,
		Output:       DefaultOutput,
	}
}

func (cfg *Config) Validate() error {
	if cfg.KernelDir == "" {
		return fmt.Errorf("kernel dir is not set")
	}
	if cfg.Output == "" {
		return fmt.Errorf("output file is not set")
	}
	if _, err := targets.Get(cfg.Arch); err != nil {
		return err
	}
	return nil
}

func (cfg *Config) Target() *targets.Target {
	target, err := targets.Get(cfg.Arch)
	if err != nil {
		panic(err)
	}
	return target
}

func (cfg *Config) Compiler() string {
	return cfg.CrossCompile + "gcc"
}

// KernelIncludes returns the include flags needed to compile a module against the kernel tree.
func (cfg *Config) KernelIncludes() []string {
	arch := cfg.KernelDir + "/arch/" + cfg.Target().KernelHeaderArch
	return []string{
		"-I" + arch + "/include",
		"-I" + arch + "/include/generated",
		"-I" + cfg.KernelDir + "/include",
		"-I" + cfg.KernelDir + "/include/uapi",
		"-I" + cfg.KernelDir + "/include/generated",
		"-I" + cfg.KernelDir + "/include/generated/uapi",
		"-I" + arch + "/include/uapi",
	}
}

// KernelFlags returns the preprocessor and code generation flags for module sources.
func KernelFlags() []string {
	return []string{
		"-nostdinc",
		"-D__KERNEL__",
		"-DMODULE",
		"-Wall",
		"-Wundef",
		"-Wstrict-prototypes",
		"-Wno-trigraphs",
		"-fno-strict-aliasing",
		"-fno-common",
		"-fshort-wchar",
		"-std=gnu11",
		"-O2",
	}
}

func (cfg *Config) DriverArgs(file string) []string {
	args := []string{cfg.Compiler(), "-c"}
	args = append(args, cfg.KernelIncludes()...)
	args = append(args, KernelFlags()...)
	return append(args, file)
}

func (cfg *Config) AppArgs(file string) []string {
	return []string{cfg.Compiler(), "-c", "-I" + cfg.KernelDir + "/include", "-std=gnu11", "-O2", file}
}

// Generate returns compile commands for all C files directly inside the driver
// and app subdirectories of root. Driver files come first, each group sorted by name.
func Generate(root string, cfg *Config) ([]Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cmds := []Command{}
	for _, sub := range []struct {
		dir  string
		args func(string) []string
	}{
		{DriverDir, cfg.DriverArgs},
		{AppDir, cfg.AppArgs},
	} {
		dir := filepath.Join(root, sub.dir)
		files, err := sources(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			cmds = append(cmds, Command{
				Directory: dir,
				Command:   strings.Join(sub.args(file), " "),
				File:      file,
			})
		}
	}
	return cmds, nil
}

func sources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sourceExt) {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// OutputPath resolves the output file name against the project root.
func OutputPath(root, output string) string {
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(osutil.Abs(root), output)
}

func Marshal(cmds []Command) ([]byte, error) {
	if cmds == nil {
		cmds = []Command{}
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cmds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes cmds to file, replacing any previous content.
func Write(file string, cmds []Command) error {
	data, err := Marshal(cmds)
	if err != nil {
		return err
	}
	if log.V(1) {
		if old, err := os.ReadFile(file); err == nil {
			if diff := ui.LineDiff(string(old), string(data)); diff != "" {
				log.Logf(1, "%v changed:\n%v", file, diff)
			}
		}
	}
	if err := osutil.WriteFile(file, data); err != nil {
		return fmt.Errorf("failed to write compile commands: %w", err)
	}
	return nil
}
