// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tools contains utility types and functions shared by ctxflow's
// sub-command front-ends.
package tools

import (
	"flag"
	"fmt"
	"os"

	"github.com/valuectx/ctxflow/analysis/config"
)

// UnparsedCommonFlags is a flag set carrying the flags common to every
// sub-command, before Parse has been called.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	Client     *string
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name,
// pre-populated with -config, -verbose, and -client.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for the analysis")
	verbose := cmd.Bool("verbose", false, "verbose tracing of the engine's fixpoint computation")
	client := cmd.String("client", "nilness", "client analysis to run: sign, copyconst, or nilness")
	return UnparsedCommonFlags{FlagSet: cmd, ConfigPath: configPath, Verbose: verbose, Client: client}
}

// CommonFlags is a parsed common flag set.
type CommonFlags struct {
	FlagSet *flag.FlagSet
	Verbose bool
	Client  string
	Config  *config.Config
}

// NewCommonFlags parses args against a flag set named name, printing
// cmdUsage on -help. Sub-commands with extra flags of their own should
// instead call NewUnparsedCommonFlags, register their own flags on its
// FlagSet, parse once, and call Finish.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %w", name, args, err)
	}
	return Finish(flags)
}

// Finish loads the config file named by an already-parsed
// UnparsedCommonFlags and assembles a CommonFlags from it. Call this after
// FlagSet.Parse, once any sub-command-specific flags have also been
// registered and parsed on the same FlagSet.
func Finish(flags UnparsedCommonFlags) (CommonFlags, error) {
	cfg := config.NewDefault()
	if *flags.ConfigPath != "" {
		loaded, err := config.Load(*flags.ConfigPath)
		if err != nil {
			return CommonFlags{}, fmt.Errorf("failed to load config %s: %w", *flags.ConfigPath, err)
		}
		cfg = loaded
	}
	if *flags.Verbose {
		cfg.Verbose = true
	}
	return CommonFlags{FlagSet: flags.FlagSet, Verbose: cfg.IsVerbose(), Client: *flags.Client, Config: cfg}, nil
}

// SetUsage sets cmd's usage (for -help) to print cmdUsage followed by each
// flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  -%s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}
