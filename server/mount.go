// Copyright 2025 The Rivaas Authors
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

package server

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"rivaas.dev/rawhttp/router"
)

// Mount is a router reachable under a path prefix.
type Mount struct {
	// Prefix is the normalised prefix; the root mount is "".
	Prefix string
	Router *router.Router
}

// MountTable maps path prefixes to routers.
//
// Registration takes an exclusive lock and resolution a shared one, so a
// router may be mounted while requests are being served.
type MountTable struct {
	mu     sync.RWMutex
	mounts []Mount // longest prefix first
}

// NewMountTable creates an empty mount table.
func NewMountTable() *MountTable {
	return &MountTable{}
}

// normalizePrefix maps "/" to "" and trims trailing slashes.
func normalizePrefix(prefix string) (string, error) {
	trimmed := strings.TrimRight(prefix, "/")
	if trimmed == "" {
		return "", nil
	}
	if trimmed[0] != '/' {
		return "", fmt.Errorf("%w: %q must start with '/'", ErrInvalidPrefix, prefix)
	}
	return trimmed, nil
}

// Register mounts r under prefix.
func (t *MountTable) Register(prefix string, r *router.Router) error {
	if r == nil {
		return ErrNilRouter
	}
	p, err := normalizePrefix(prefix)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.mounts {
		if m.Prefix == p {
			return fmt.Errorf("%w: %q", ErrDuplicateMount, prefix)
		}
	}
	t.mounts = append(t.mounts, Mount{Prefix: p, Router: r})
	slices.SortStableFunc(t.mounts, func(a, b Mount) int {
		return len(b.Prefix) - len(a.Prefix)
	})
	return nil
}

// Resolve finds the mount owning path and returns it with the path that
// remains once the prefix is removed. A prefix only owns whole segments:
// "/inner" owns "/inner" and "/inner/x" but not "/innermost". The
// remaining path is "/" when nothing is left.
func (t *MountTable) Resolve(path string) (Mount, string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, m := range t.mounts {
		rest, ok := strings.CutPrefix(path, m.Prefix)
		if !ok || (rest != "" && rest[0] != '/') {
			continue
		}
		if rest == "" {
			rest = "/"
		}
		return m, rest, nil
	}
	return Mount{}, "", &MountError{Path: path}
}

// Mounts returns the registered mounts sorted by prefix.
func (t *MountTable) Mounts() []Mount {
	t.mu.RLock()
	out := slices.Clone(t.mounts)
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b Mount) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return out
}

// Len returns the number of mounts.
func (t *MountTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.mounts)
}
