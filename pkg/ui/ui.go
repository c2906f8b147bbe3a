// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ui prints user-facing tool output. Colors are disabled automatically
// when the output is not a terminal or NO_COLOR is set.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

func Header(w io.Writer, format string, a ...interface{}) {
	HeaderColor.Fprintf(w, format+"\n", a...)
}

func Info(w io.Writer, format string, a ...interface{}) {
	InfoColor.Fprintf(w, format+"\n", a...)
}

func Success(w io.Writer, format string, a ...interface{}) {
	SuccessColor.Fprintf(w, format+"\n", a...)
}

func Warning(w io.Writer, format string, a ...interface{}) {
	WarningColor.Fprintf(w, "Warning: "+format+"\n", a...)
}

func Error(w io.Writer, format string, a ...interface{}) {
	ErrorColor.Fprintf(w, "Error: "+format+"\n", a...)
}

// Path prints an indented, highlighted line, normally a file name.
func Path(w io.Writer, format string, a ...interface{}) {
	PathColor.Fprintf(w, "  "+format+"\n", a...)
}

// List prints a header followed by the items, one per line.
func List(w io.Writer, header string, items []string) {
	if len(items) == 0 {
		return
	}
	Info(w, "%v", header)
	for _, item := range items {
		fmt.Fprintf(w, "  - %v\n", item)
	}
}

// Steps prints numbered steps.
func Steps(w io.Writer, header string, steps []string) {
	Header(w, "%v", header)
	for i, step := range steps {
		fmt.Fprintf(w, "  %v. %v\n", i+1, step)
	}
}

// LineDiff returns a line-oriented diff of a and b where removed lines are
// prefixed with "-", added with "+" and common lines with a space.
// The result is empty if a and b are equal.
func LineDiff(a, b string) string {
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)
	buf := new(strings.Builder)
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		text := strings.TrimSuffix(diff.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(buf, "%v%v\n", prefix, line)
		}
	}
	return buf.String()
}
