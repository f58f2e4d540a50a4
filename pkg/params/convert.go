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

// Package params converts request parameters from the client naming
// convention to the wire convention before they are sent.
//
// The conversion is table driven: only keys listed in
// RenameTable are renamed. It is not a general snake_case to camelCase
// transformer.
package params

// RenameTable maps client-side parameter names to their wire names.
// Lookups are exact and case-sensitive.
var RenameTable = map[string]string{
	"external_id": "externalId",
}

// Convert returns a copy of p with keys renamed according to RenameTable.
//
// Nested maps are converted recursively. Slices are mapped element by
// element: elements that are maps are converted, everything else (scalars,
// nested slices) is kept as is. The input is never modified.
func Convert(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}

	out := make(map[string]any, len(p))
	for key, value := range p {
		out[renameKey(key)] = convertValue(value)
	}
	return out
}

func renameKey(key string) string {
	if wire, ok := RenameTable[key]; ok {
		return wire
	}
	return key
}

func convertValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Convert(val)
	case []map[string]any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Convert(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			if m, ok := elem.(map[string]any); ok {
				out[i] = Convert(m)
			} else {
				out[i] = elem
			}
		}
		return out
	default:
		return v
	}
}
