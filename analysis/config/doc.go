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

/*
Package config provides a simple way to manage the settings of a ctxflow
run.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and
then [LoadGlobal]() to load the global config.

A config file is in yaml format. Its top-level fields are the fields of the
[Config] struct. For example, a valid config file is as follows:

	verbose: true
	free-results-on-the-fly: true
	callgraph-mode: pointer
	package-filter: ^example.com/myproject/
	entry-point-filter: ^main\.

# Filters

PackageFilter and EntryPointFilter narrow which packages and entry points
ssaprog hands to the engine. Both are treated as regexes; an empty filter
matches everything.
*/
package config
