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

package code

import "sync"

// ChangeLog is the ordered history of change sets produced by every edit
// made to a codebase so far. It is the generalization, from a single flat
// key index to per-path replacement chains, of the teacher's history type
// (istio.io/pkg/ledger/history.go): instead of indexing "when was this root
// hash observed", it answers "what does this path resolve to now".
type ChangeLog struct {
	mu   sync.RWMutex
	sets []*ChangeSet
}

// NewChangeLog returns an empty change log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{}
}

// NewChangeSet begins a change set bound to store. Pass the returned handle
// to Commit to append its finished ChangeSet to the log; Codebase does this
// as part of MakeChange.
func (l *ChangeLog) NewChangeSet(store *Store) *NewChangeSet {
	return newNewChangeSet(store)
}

// Commit appends a finished change set to the log.
func (l *ChangeLog) Commit(cs *NewChangeSet) *ChangeSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	finished := cs.changeSetValue()
	l.sets = append(l.sets, finished)
	return finished
}

// LatestVersionOf resolves path to the most recent path that denotes the
// "same" node, by walking every change set in order and, each time the
// current path was replaced, jumping to the replacement. A path that was
// removed resolves to itself from that point on, unless a later change set
// replaces it again (the "cycles across change sets are allowed" case:
// A -> B in one change set, then B -> A in a later one, resolves to A).
func (l *ChangeLog) LatestVersionOf(path Path) Path {
	l.mu.RLock()
	defer l.mu.RUnlock()

	current := path
	for _, cs := range l.sets {
		if replacement, ok := cs.Replacement(current); ok {
			current = replacement
		}
		// A removal leaves current unchanged; the caller decides how to
		// react to a path that denotes a removed node (§4.3).
	}
	return current
}

// Len returns the number of change sets recorded so far.
func (l *ChangeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sets)
}
