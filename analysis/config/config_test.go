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
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, "ctxflow.yaml")
	if err := os.WriteFile(filename, []byte(contents), 0600); err != nil {
		t.Fatalf("could not write test config: %v", err)
	}
	return filename
}

func TestNewDefaultSetsCallgraphModeAndLogLevel(t *testing.T) {
	cfg := NewDefault()
	if cfg.CallgraphMode != "pointer" {
		t.Errorf("CallgraphMode = %q, want %q", cfg.CallgraphMode, "pointer")
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Errorf("LogLevel = %d, want %d", cfg.LogLevel, int(InfoLevel))
	}
}

func TestLoadParsesEngineFlagsAndFilters(t *testing.T) {
	filename := writeConfig(t, `
verbose: true
free-results-on-the-fly: true
callgraph-mode: rta
package-filter: ^example\.com/foo
entry-point-filter: ^main\.
`)

	cfg, err := Load(filename)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if !cfg.FreeResultsOnTheFly {
		t.Error("FreeResultsOnTheFly = false, want true")
	}
	if cfg.CallgraphMode != "rta" {
		t.Errorf("CallgraphMode = %q, want %q", cfg.CallgraphMode, "rta")
	}
	if !cfg.MatchPackageFilter("example.com/foo/bar") {
		t.Error("MatchPackageFilter(\"example.com/foo/bar\") = false, want true")
	}
	if cfg.MatchPackageFilter("example.com/other") {
		t.Error("MatchPackageFilter(\"example.com/other\") = true, want false")
	}
	if !cfg.MatchEntryPointFilter("main.main") {
		t.Error("MatchEntryPointFilter(\"main.main\") = false, want true")
	}
	if cfg.MatchEntryPointFilter("helper.run") {
		t.Error("MatchEntryPointFilter(\"helper.run\") = true, want false")
	}
}

func TestLoadDefaultsUnsetFieldsAndFiltersMatchEverything(t *testing.T) {
	filename := writeConfig(t, "verbose: false\n")

	cfg, err := Load(filename)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CallgraphMode != "pointer" {
		t.Errorf("CallgraphMode = %q, want %q", cfg.CallgraphMode, "pointer")
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Errorf("LogLevel = %d, want %d", cfg.LogLevel, int(InfoLevel))
	}
	if !cfg.MatchPackageFilter("anything/at/all") {
		t.Error("MatchPackageFilter with no filter set should match everything")
	}
	if !cfg.MatchEntryPointFilter("anything") {
		t.Error("MatchEntryPointFilter with no filter set should match everything")
	}
}

func TestLoadRejectsInvalidFilterRegex(t *testing.T) {
	filename := writeConfig(t, "package-filter: \"(unterminated\"\n")

	if _, err := Load(filename); err == nil {
		t.Fatal("Load() with an invalid package-filter regex succeeded, want error")
	}
}

func TestIsVerbose(t *testing.T) {
	cfg := NewDefault()
	if cfg.IsVerbose() {
		t.Error("IsVerbose() = true for default config, want false")
	}
	cfg.Verbose = true
	if !cfg.IsVerbose() {
		t.Error("IsVerbose() = false with Verbose set, want true")
	}
	cfg2 := NewDefault()
	cfg2.LogLevel = int(DebugLevel)
	if !cfg2.IsVerbose() {
		t.Error("IsVerbose() = false with LogLevel Debug, want true")
	}
}
