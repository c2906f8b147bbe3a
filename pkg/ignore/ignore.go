// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ignore decides which template files are not copied into a new driver project.
package ignore

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

type Kind int

const (
	// Exact matches a file or directory base name literally.
	Exact Kind = iota
	// Suffix matches base names ending with the pattern (without the leading '*').
	Suffix
	// Glob matches base names with path.Match.
	Glob
	// Path matches the slash-separated path relative to the template root.
	Path
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Suffix:
		return "suffix"
	case Glob:
		return "glob"
	case Path:
		return "path"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Rule struct {
	Kind    Kind
	Pattern string
}

func (r Rule) String() string {
	if r.Kind == Suffix {
		return "*" + r.Pattern
	}
	return r.Pattern
}

// Parse classifies a pattern: anything with a slash is a Path rule,
// "*<literal>" is a Suffix rule, other wildcards make a Glob rule.
func Parse(pattern string) Rule {
	switch {
	case strings.Contains(pattern, "/"):
		return Rule{Path, strings.Trim(pattern, "/")}
	case strings.HasPrefix(pattern, "*") && !strings.ContainsAny(pattern[1:], "*?["):
		return Rule{Suffix, pattern[1:]}
	case strings.ContainsAny(pattern, "*?["):
		return Rule{Glob, pattern}
	}
	return Rule{Exact, pattern}
}

func (r Rule) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	switch r.Kind {
	case Exact:
		return base == r.Pattern
	case Suffix:
		return strings.HasSuffix(base, r.Pattern)
	case Glob:
		ok, _ := path.Match(r.Pattern, base)
		return ok
	case Path:
		return rel == r.Pattern
	}
	return false
}

type Set []Rule

func NewSet(patterns ...string) Set {
	var set Set
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			set = append(set, Parse(p))
		}
	}
	return set
}

// Match returns the first rule matching rel.
func (s Set) Match(rel string) (Rule, bool) {
	for _, r := range s {
		if r.Match(rel) {
			return r, true
		}
	}
	return Rule{}, false
}

func (s Set) Patterns() []string {
	var res []string
	for _, r := range s {
		res = append(res, r.String())
	}
	return res
}

// Template lists what is left out when a driver project is created from the template:
// version control and cache directories, kernel build artifacts and the built sample app.
var Template = NewSet(
	".git",
	"__pycache__",
	"*.ko",
	"*.o",
	"*.mod.c",
	"*.mod",
	"*.symvers",
	"*.order",
	".tmp_versions",
	".*.cmd",
	"app/led_app",
)
