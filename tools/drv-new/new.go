// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// drv-new creates a new driver project from the driver template.
// It is installed into <template>/scripts and by default creates the project next to the template:
//
//	drv-new temp_sensor_drv
//	drv-new temp_sensor_drv -p ~/projects
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/drvkit/drvkit/pkg/log"
	"github.com/drvkit/drvkit/pkg/project"
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
	flags := tool.NewFlagSet("drv-new", "[-p DIR] [--template DIR] NAME", stdout)
	flagPath := flags.StringP("path", "p", "", "directory to create the project in (default: next to the template)")
	flagTemplate := flags.String("template", "", "template dir (default: $"+templateEnv+" or the tree this binary is installed in)")
	if err := tool.ParseFlags(flags, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected one project name, got %v arguments", flags.NArg())
	}
	templateDir := *flagTemplate
	if templateDir == "" {
		var err error
		if templateDir, err = tool.RootDir(templateEnv); err != nil {
			return err
		}
	}
	res, err := project.Create(&project.Params{
		Name:        flags.Arg(0),
		TemplateDir: templateDir,
		ParentDir:   *flagPath,
	})
	if err != nil {
		return err
	}
	ui.Header(stdout, "Creating new driver project: %v", res.Name)
	ui.Info(stdout, "Template: %v", res.TemplateDir)
	ui.Info(stdout, "Target: %v", res.Dir)
	if log.V(1) && len(res.Skipped) != 0 {
		ui.Info(stdout, "Skipped:")
		for _, rel := range res.Skipped {
			ui.Path(stdout, "%v", rel)
		}
	}
	if !res.Substituted {
		ui.Warning(stdout, "%q not found in %v, set the module name manually",
			project.ModuleLine(project.DefaultModule), project.MakefilePath)
	}
	ui.Success(stdout, "\nProject created successfully (%v files copied, %v skipped)", res.Files, len(res.Skipped))
	fmt.Fprintln(stdout)
	ui.Steps(stdout, "Next steps:", res.NextSteps())
	return nil
}
