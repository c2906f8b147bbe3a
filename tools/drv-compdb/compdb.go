// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// drv-compdb generates compile_commands.json for a driver project.
// It is installed into <project>/scripts and by default works on that project.
// Kernel tree and toolchain come from defaults, <project>/.env, KDIR/CROSS_COMPILE/ARCH
// environment variables, the --config file and flags, in increasing priority.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/drvkit/drvkit/pkg/compdb"
	"github.com/drvkit/drvkit/pkg/tool"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil && !errors.Is(err, pflag.ErrHelp) {
		tool.Fail(err)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := tool.NewFlagSet("drv-compdb", "[flags]", stdout)
	compdb.RegisterFlags(flags, true)
	flagRoot := flags.String("root", "", "project root (default: the tree this binary is installed in)")
	if err := tool.ParseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 0 {
		flags.Usage()
		return fmt.Errorf("unexpected arguments: %q", flags.Args())
	}
	root := *flagRoot
	if root == "" {
		var err error
		if root, err = tool.RootDir(""); err != nil {
			return err
		}
	}
	flagConfig, _ := tool.StringFlag(flags, "config")
	cfg, err := compdb.LoadConfig(root, flagConfig, os.Getenv)
	if err != nil {
		return err
	}
	compdb.ApplyFlags(flags, cfg)
	if err := cfg.Resolve(); err != nil {
		return err
	}
	cmds, err := compdb.Generate(root, cfg)
	if err != nil {
		return err
	}
	output := compdb.OutputPath(root, cfg.Output)
	if err := compdb.Write(output, cmds); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Generated %v with %v entries\n", output, len(cmds))
	return nil
}
