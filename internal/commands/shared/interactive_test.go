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

import (
	"testing"
)

var interactiveEnv = []string{
	"EXA_NON_INTERACTIVE",
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"JENKINS_HOME",
}

func TestIsNonInteractive(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{name: "EXA_NON_INTERACTIVE=true", envVars: map[string]string{"EXA_NON_INTERACTIVE": "true"}},
		{name: "CI=true", envVars: map[string]string{"CI": "true"}},
		{name: "CI=1", envVars: map[string]string{"CI": "1"}},
		{name: "GITHUB_ACTIONS=true", envVars: map[string]string{"GITHUB_ACTIONS": "true"}},
		{name: "JENKINS_HOME set to path", envVars: map[string]string{"JENKINS_HOME": "/var/jenkins"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range interactiveEnv {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			if !IsNonInteractive() {
				t.Error("IsNonInteractive() = false, expected true")
			}
		})
	}
}

func TestIsCIEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected bool
	}{
		{name: "no CI vars", envVars: map[string]string{}, expected: false},
		{name: "CI=true", envVars: map[string]string{"CI": "true"}, expected: true},
		{name: "CI=false (should be false)", envVars: map[string]string{"CI": "false"}, expected: false},
		{name: "GITLAB_CI=true", envVars: map[string]string{"GITLAB_CI": "true"}, expected: true},
		{name: "CIRCLECI=true", envVars: map[string]string{"CIRCLECI": "true"}, expected: true},
		{name: "JENKINS_HOME set", envVars: map[string]string{"JENKINS_HOME": "/var/jenkins"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range interactiveEnv {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			if got := isCIEnvironment(); got != tt.expected {
				t.Errorf("isCIEnvironment() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestIsTTY_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if IsTTY() {
		t.Error("IsTTY() = true with NO_COLOR set")
	}
}
