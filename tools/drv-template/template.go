// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// drv-template writes the driver template skeleton: Makefiles, the LED sample
// driver and app, editor settings and .clangd for the configured kernel tree.
// Existing skeleton files are overwritten, other files are left alone.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/drvkit/drvkit/pkg/compdb"
	"github.com/drvkit/drvkit/pkg/skel"
	"github.com/drvkit/drvkit/pkg/tool"
	"github.com/drvkit/drvkit/pkg/ui"
	"github.com/spf13/pflag"
)

const templateEnv = "DRVKIT_TEMPLATE"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil && !errors.Is(err, pflag.ErrHelp) {
		tool.Fail(err)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := tool.NewFlagSet("drv-template", "[--dir DIR] [flags]", stdout)
	flagDir := flags.String("dir", "", "template dir (default: $"+templateEnv+" or the tree this binary is installed in)")
	compdb.RegisterFlags(flags, false)
	if err := tool.ParseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 0 {
		flags.Usage()
		return fmt.Errorf("unexpected arguments: %q", flags.Args())
	}
	dir := *flagDir
	if dir == "" {
		var err error
		if dir, err = tool.RootDir(templateEnv); err != nil {
			return err
		}
	}
	flagConfig, _ := tool.StringFlag(flags, "config")
	cfg, err := compdb.LoadConfig(dir, flagConfig, os.Getenv)
	if err != nil {
		return err
	}
	compdb.ApplyFlags(flags, cfg)
	if err := cfg.Resolve(); err != nil {
		return err
	}
	ui.Header(stdout, "Upgrading driver template at %v", dir)
	res, err := skel.Seed(dir, cfg)
	if err != nil {
		return err
	}
	ui.List(stdout, "Written:", res.Written)
	ui.List(stdout, "Removed:", res.Removed)
	ui.Success(stdout, "Driver template upgraded successfully")
	ui.Info(stdout, "Next step: cd %v && make", dir)
	return nil
}
