// Copyright 2016 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to standard log package with some extensions:
//  - verbosity levels
//  - global verbosity setting that can be used by multiple packages
//  - ability to redirect all output
package log

import (
	"fmt"
	"io"
	golog "log"
	"os"
	"sync"
)

var (
	mu        sync.Mutex
	verbosity int
	logger    = golog.New(os.Stderr, "", golog.LstdFlags)
)

// SetVerbosity sets the global verbosity level, messages with a higher level are dropped.
func SetVerbosity(v int) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = v
}

// V reports whether messages of level v are printed.
func V(v int) bool {
	mu.Lock()
	defer mu.Unlock()
	return v <= verbosity
}

// SetOutput redirects log output to w and returns a function that restores the previous writer.
// If timestamps is false, messages are written without the date/time prefix.
func SetOutput(w io.Writer, timestamps bool) func() {
	mu.Lock()
	defer mu.Unlock()
	prevWriter, prevFlags := logger.Writer(), logger.Flags()
	logger.SetOutput(w)
	if timestamps {
		logger.SetFlags(golog.LstdFlags)
	} else {
		logger.SetFlags(0)
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger.SetOutput(prevWriter)
		logger.SetFlags(prevFlags)
	}
}

func Logf(v int, msg string, args ...interface{}) {
	if !V(v) {
		return
	}
	logger.Output(2, fmt.Sprintf(msg, args...))
}
