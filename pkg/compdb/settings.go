// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package compdb

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drvkit/drvkit/pkg/config"
	"github.com/drvkit/drvkit/pkg/log"
	"github.com/drvkit/drvkit/pkg/osutil"
	"github.com/drvkit/drvkit/pkg/tool"
	"github.com/drvkit/drvkit/sys/targets"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const EnvFile = ".env"

// LoadConfig resolves generator settings for the project in root.
// Later sources override earlier ones: defaults, root/.env, the environment, cfgFile.
// Values set on the command line are applied by the caller.
func LoadConfig(root, cfgFile string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	envFile := filepath.Join(root, EnvFile)
	if osutil.IsExist(envFile) {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %v: %w", envFile, err)
		}
		log.Logf(1, "loaded %v variables from %v", len(vars), envFile)
		cfg.applyEnv(func(key string) string { return vars[key] })
	}
	if getenv != nil {
		cfg.applyEnv(getenv)
	}
	if cfgFile != "" {
		if err := config.LoadFile(cfgFile, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (cfg *Config) applyEnv(getenv func(string) string) {
	for _, v := range []struct {
		key string
		dst *string
	}{
		{"KDIR", &cfg.KernelDir},
		{"CROSS_COMPILE", &cfg.CrossCompile},
		{"ARCH", &cfg.Arch},
	} {
		if val := getenv(v.key); val != "" {
			*v.dst = val
		}
	}
}

// Resolve validates cfg. If the arch was changed but the toolchain was left at
// the default, the arch's conventional compiler prefix is used instead.
func (cfg *Config) Resolve() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if target := cfg.Target(); cfg.CrossCompile == DefaultCrossCompile && target.Arch != DefaultArch {
		log.Logf(1, "using %v toolchain prefix %q", target.Arch, target.CCompilerPrefix)
		cfg.CrossCompile = target.CCompilerPrefix
	}
	return nil
}

// RegisterFlags adds the generator settings to flags.
func RegisterFlags(flags *pflag.FlagSet, output bool) {
	flags.String("kdir", DefaultKernelDir, "kernel source directory")
	flags.String("cross-compile", DefaultCrossCompile, "cross compiler prefix")
	flags.String("arch", DefaultArch, fmt.Sprintf("kernel architecture (%v)", strings.Join(targets.Names(), ", ")))
	if output {
		flags.String("output", DefaultOutput, "output file, relative to the project root")
	}
	flags.String("config", "", "JSON config file with kdir, cross_compile, arch and output fields")
}

// ApplyFlags overrides cfg with the settings given on the command line.
func ApplyFlags(flags *pflag.FlagSet, cfg *Config) {
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"kdir", &cfg.KernelDir},
		{"cross-compile", &cfg.CrossCompile},
		{"arch", &cfg.Arch},
		{"output", &cfg.Output},
	} {
		if val, ok := tool.StringFlag(flags, v.name); ok {
			*v.dst = val
		}
	}
}
