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

package secrets

import (
	"context"
	"errors"
)

var (
	// ErrSecretNotFound means the key is not stored in a backend.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable means no usable backend could serve the call,
	// e.g. no keychain service on a headless host.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrReadOnlyBackend is returned by Set and Delete on backends that
	// cannot be written, such as the environment.
	ErrReadOnlyBackend = errors.New("backend is read-only")
)

// Backend is one place an API key can live. A Resolver consults backends
// from highest Priority down.
type Backend interface {
	Name() string

	// Get returns ErrSecretNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Delete returns ErrSecretNotFound when key is absent.
	Delete(ctx context.Context, key string) error

	// Available reports whether the backend works on this host.
	Available() bool
	Priority() int
}

// ReadOnlyBackend is implemented by backends the Resolver must skip for
// writes.
type ReadOnlyBackend interface {
	Backend
	ReadOnly() bool
}
