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

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func durationField(p func(c *Config) *time.Duration) field {
	return field{
		get: func(c *Config) string { return p(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			*p(c) = d
			return nil
		},
	}
}

func stringField(p func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			*p(c) = v
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*p(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"api.base_url":     stringField(func(c *Config) *string { return &c.API.BaseURL }),
	"api.timeout":      durationField(func(c *Config) *time.Duration { return &c.API.Timeout }),
	"api.open_timeout": durationField(func(c *Config) *time.Duration { return &c.API.OpenTimeout }),
	"api.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.API.RateLimit, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			c.API.RateLimit = r
			return nil
		},
	},
	"api.debug":      boolField(func(c *Config) *bool { return &c.API.Debug }),
	"output.format":  stringField(func(c *Config) *string { return &c.Output.Format }),
	"log.level":      stringField(func(c *Config) *string { return &c.Log.Level }),
	"log.format":     stringField(func(c *Config) *string { return &c.Log.Format }),
	"trace.exporter": stringField(func(c *Config) *string { return &c.Trace.Exporter }),
	"trace.endpoint": stringField(func(c *Config) *string { return &c.Trace.Endpoint }),
	"trace.insecure": boolField(func(c *Config) *bool { return &c.Trace.Insecure }),
	"trace.redact":   stringField(func(c *Config) *string { return &c.Trace.Redact }),
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value of a dotted key such as "api.timeout".
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", unknownKey(key)
	}
	return f.get(c), nil
}

// Set parses value into the dotted key. The result is not validated; call
// Validate before saving.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return unknownKey(key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return &exaerrors.ConfigurationError{
			Key:    key,
			Reason: fmt.Sprintf("invalid value %q", value),
			Cause:  err,
		}
	}
	return nil
}

func unknownKey(key string) error {
	return &exaerrors.ConfigurationError{
		Key:    key,
		Reason: "unknown key; valid keys: " + strings.Join(Keys(), ", "),
	}
}
