// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads repgrep settings from a YAML, JSON or HCL file.

	.repgrep.yaml ──► GetParser ──► Parser.Parse ──► Config.Validate

🎯 Settings:
  - ripgrep: binary to run
  - encoding: default patch-time encoding override
  - concurrency: files patched at once
  - protect: doublestar globs of paths never written
  - dry_run: preview instead of writing

Command line flags win over the file. Without an explicit --config, the first
of DefaultFiles found in the working directory is used, and none at all means
Default().
*/
package config
