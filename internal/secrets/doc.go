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

/*
Package secrets stores and resolves the Exa API key.

The key is looked up in priority order:

	--api-key flag   (highest)
	EXA_API_KEY      environment variable
	keychain         OS keychain entry, service "exa", account "api_key"

The keychain backend is backed by github.com/zalando/go-keyring, which uses
Keychain Access on macOS, the Secret Service API on Linux and the Credential
Manager on Windows. The environment backend is read-only.

# Usage

	r := secrets.NewResolver(secrets.NewEnvBackend(), secrets.NewKeychainBackend())
	key, err := secrets.ResolveAPIKey(ctx, flagValue, r)

ResolveAPIKey returns a *errors.ConfigurationError with key "api_key" when no
source provides a value, so callers can print setup guidance.
*/
package secrets
