// Copyright 2025 Tom Barlow
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

package shared

import "time"

// Global flag values - set by root command
var (
	apiKeyFlag  string
	baseURLFlag string
	timeoutFlag time.Duration
	debugFlag   bool
	jsonFlag    bool
	jqFlag      string
	configFlag  string
	traceFlag   string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// GlobalFlags holds pointers to the persistent flag variables for binding.
type GlobalFlags struct {
	APIKey  *string
	BaseURL *string
	Timeout *time.Duration
	Debug   *bool
	JSON    *bool
	JQ      *string
	Config  *string
	Trace   *string
}

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() GlobalFlags {
	return GlobalFlags{
		APIKey:  &apiKeyFlag,
		BaseURL: &baseURLFlag,
		Timeout: &timeoutFlag,
		Debug:   &debugFlag,
		JSON:    &jsonFlag,
		JQ:      &jqFlag,
		Config:  &configFlag,
		Trace:   &traceFlag,
	}
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// GetJSON returns the JSON output flag value. A --jq expression implies JSON.
func GetJSON() bool {
	return jsonFlag || jqFlag != ""
}

// GetJQ returns the --jq expression
func GetJQ() string {
	return jqFlag
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetAPIKeyFlag returns the --api-key value
func GetAPIKeyFlag() string {
	return apiKeyFlag
}

// GetTraceFlag returns the --trace exporter override
func GetTraceFlag() string {
	return traceFlag
}

// ResetFlagsForTest restores every global flag to its zero value.
func ResetFlagsForTest() {
	apiKeyFlag, baseURLFlag, jqFlag, configFlag, traceFlag = "", "", "", "", ""
	timeoutFlag = 0
	debugFlag, jsonFlag = false, false
}
