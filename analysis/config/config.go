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

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config holds the settings for a single ctxflow run: the two engine
// flags, the mode ssaprog uses to build the initial call graph, and the
// package/entry-point filters that scope which functions are analysed.
// If some field is not defined in the config file, it takes its zero value.
type Config struct {
	// source file this config was loaded from, used to resolve RelPath
	sourceFile string

	// Verbose enables the driver's trace of per-node IN/OUT values and of
	// newly created contexts.
	// Forwarded to ctxflow.Options.Verbose.
	Verbose bool `yaml:"verbose"`

	// FreeResultsOnTheFly enables on-the-fly memory reclamation of contexts
	// that have become unreachable and are no longer on the worklist.
	// Forwarded to ctxflow.Options.FreeResultsOnTheFly.
	FreeResultsOnTheFly bool `yaml:"free-results-on-the-fly"`

	// CallgraphMode selects the algorithm ssaprog uses to build the initial
	// call graph before handing it to ctxflow: one of "pointer", "cha",
	// "rta", "vta", "static". See ssaprog.ParseCallgraphAnalysisMode.
	CallgraphMode string `yaml:"callgraph-mode"`

	// PackageFilter restricts analysis to packages whose import path matches
	// this regex. Empty matches every package.
	PackageFilter string `yaml:"package-filter"`

	// EntryPointFilter restricts the set of program entry points to those
	// whose qualified name matches this regex. Empty matches every entry
	// point ssaprog identifies.
	EntryPointFilter string `yaml:"entry-point-filter"`

	// LogLevel controls the verbosity of the LogGroup built from this
	// configuration.
	LogLevel int `yaml:"log-level"`

	pkgFilterRegex   *regexp.Regexp
	entryFilterRegex *regexp.Regexp
}

// NewDefault returns a default configuration: pointer-analysis call graphs,
// no filters, info-level logging, on-the-fly reclamation off.
func NewDefault() *Config {
	return &Config{
		CallgraphMode: "pointer",
		LogLevel:      int(InfoLevel),
	}
}

// Load reads a YAML configuration from a file.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.CallgraphMode == "" {
		cfg.CallgraphMode = "pointer"
	}

	if cfg.PackageFilter != "" {
		if r, err := regexp.Compile(cfg.PackageFilter); err == nil {
			cfg.pkgFilterRegex = r
		} else {
			return nil, fmt.Errorf("invalid package-filter %q: %w", cfg.PackageFilter, err)
		}
	}

	if cfg.EntryPointFilter != "" {
		if r, err := regexp.Compile(cfg.EntryPointFilter); err == nil {
			cfg.entryFilterRegex = r
		} else {
			return nil, fmt.Errorf("invalid entry-point-filter %q: %w", cfg.EntryPointFilter, err)
		}
	}

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPackageFilter returns true if pkgname matches PackageFilter, or if no
// filter has been set.
func (c Config) MatchPackageFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	}
	return true
}

// MatchEntryPointFilter returns true if name matches EntryPointFilter, or if
// no filter has been set.
func (c Config) MatchEntryPointFilter(name string) bool {
	if c.entryFilterRegex != nil {
		return c.entryFilterRegex.MatchString(name)
	}
	return true
}

// IsVerbose is true if Verbose is set or the configuration's log level is
// Debug or above.
func (c Config) IsVerbose() bool {
	return c.Verbose || c.LogLevel >= int(DebugLevel)
}
