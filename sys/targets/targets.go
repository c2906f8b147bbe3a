// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package targets describes the kernel architectures a driver project can be built for.
package targets

import (
	"fmt"
	"sort"
)

type Target struct {
	// Arch is the value passed as ARCH= to the kernel build.
	Arch string
	// KernelHeaderArch is the directory under arch/ holding the headers.
	KernelHeaderArch string
	// Triple is the GNU target triple passed to clang for editor tooling.
	Triple          string
	CCompilerPrefix string
}

var List = map[string]*Target{
	"arm": {
		Arch:             "arm",
		KernelHeaderArch: "arm",
		Triple:           "arm-none-linux-gnueabihf",
		CCompilerPrefix:  "arm-none-linux-gnueabihf-",
	},
	"arm64": {
		Arch:             "arm64",
		KernelHeaderArch: "arm64",
		Triple:           "aarch64-none-linux-gnu",
		CCompilerPrefix:  "aarch64-none-linux-gnu-",
	},
	"x86_64": {
		Arch:             "x86_64",
		KernelHeaderArch: "x86",
		Triple:           "x86_64-linux-gnu",
		CCompilerPrefix:  "x86_64-linux-gnu-",
	},
	"riscv": {
		Arch:             "riscv",
		KernelHeaderArch: "riscv",
		Triple:           "riscv64-linux-gnu",
		CCompilerPrefix:  "riscv64-linux-gnu-",
	},
}

func init() {
	List["x86"] = List["x86_64"]
	List["aarch64"] = List["arm64"]
}

func Get(arch string) (*Target, error) {
	target := List[arch]
	if target == nil {
		return nil, fmt.Errorf("unknown arch %q, supported: %v", arch, Names())
	}
	return target, nil
}

func Names() []string {
	var names []string
	for name := range List {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
