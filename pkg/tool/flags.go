// Copyright 2020 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"fmt"
	"io"

	"github.com/drvkit/drvkit/pkg/log"
	"github.com/spf13/pflag"
)

const verbosityFlag = "vv"

// NewFlagSet creates a flag set for a tool that reports parsing errors
// to the caller instead of exiting. Usage goes to out.
func NewFlagSet(name, usage string, out io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(out)
	flags.SortFlags = false
	flags.Usage = func() {
		fmt.Fprintf(out, "usage: %v %v\n", name, usage)
		flags.PrintDefaults()
	}
	return flags
}

// ParseFlags registers the common -vv flag, parses args and configures logging.
// Returns pflag.ErrHelp if help was requested.
func ParseFlags(flags *pflag.FlagSet, args []string) error {
	verbosity := flags.Int(verbosityFlag, 0, "verbosity")
	if err := flags.Parse(args); err != nil {
		return err
	}
	log.SetVerbosity(*verbosity)
	return nil
}

// StringFlag returns the value of the named flag if it was set on the command line.
func StringFlag(flags *pflag.FlagSet, name string) (string, bool) {
	if !flags.Changed(name) {
		return "", false
	}
	val, err := flags.GetString(name)
	if err != nil {
		return "", false
	}
	return val, true
}
