// Copyright Crosscut Authors
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

// Package packages implements the host-facing registry of provided
// functions: functions whose implementation lives outside the language core
// and is invoked via an effect (§6 of the design). A host adds its functions
// here, by name, before constructing the compiler and the editor.
package packages

import (
	"fmt"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
)

// Packages is the registry of host-provided functions, keyed by a stable
// name the compiler resolves tokens against and an integer id carried by
// ProvidedFunction nodes and ApplyProvidedFunction effects.
type Packages struct {
	mu     sync.RWMutex
	byName map[string]int
	byID   map[int]string
	nextID int
}

// New returns an empty registry.
func New() *Packages {
	return &Packages{
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
}

// Register adds a function under name, assigning it the next free id.
// Registering the same name twice is a programmer error in the host and
// returns an error rather than silently reassigning the id an already-built
// codebase may reference.
func (p *Packages) Register(name string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byName[name]; ok {
		return 0, fmt.Errorf("packages: function %q is already registered", name)
	}

	id := p.nextID
	p.nextID++
	p.byName[name] = id
	p.byID[id] = name
	return id, nil
}

// RegisterAll registers every name in order, collecting every failure (not
// just the first) into a single error so a host can report every bad
// registration from one startup pass.
func (p *Packages) RegisterAll(names ...string) error {
	var result *multierror.Error
	for _, name := range names {
		if _, err := p.Register(name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Resolve looks up a function by name, as the compiler does while resolving
// a token.
func (p *Packages) Resolve(name string) (id int, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok = p.byName[name]
	return
}

// Name looks up a function's registered name by id, as a renderer or the
// evaluator's ProvidedFunctionNotFound check does.
func (p *Packages) Name(id int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.byID[id]
	return name, ok
}

// Len returns the number of registered functions.
func (p *Packages) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byName)
}
