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

import "fmt"

// entryKind distinguishes the two things a single change-set entry can
// record for a path.
type entryKind uint8

const (
	entryReplaced entryKind = iota
	entryRemoved
)

type entry struct {
	kind        entryKind
	replacement Path // meaningful when kind == entryReplaced
}

// ChangeSet is the recorded, immutable delta of one edit: for each affected
// path, either a replacement (old path -> new path) or a removal.
type ChangeSet struct {
	byOldKey map[string]entry
	oldPaths map[string]Path
}

func newChangeSet() *ChangeSet {
	return &ChangeSet{
		byOldKey: make(map[string]entry),
		oldPaths: make(map[string]Path),
	}
}

// Replacement returns the path old was replaced with in this change set, if
// any.
func (c *ChangeSet) Replacement(old Path) (Path, bool) {
	e, ok := c.byOldKey[old.Key()]
	if !ok || e.kind != entryReplaced {
		return Path{}, false
	}
	return e.replacement, true
}

// WasRemoved reports whether p was removed in this change set.
func (c *ChangeSet) WasRemoved(p Path) bool {
	e, ok := c.byOldKey[p.Key()]
	return ok && e.kind == entryRemoved
}

// NewChangeSet is the mutable handle passed to the callback given to
// Codebase.MakeChange. It wraps a single in-progress ChangeSet and a mutable
// handle on the store nodes can be inserted into while building it.
type NewChangeSet struct {
	store     *Store
	changeSet *ChangeSet
}

func newNewChangeSet(store *Store) *NewChangeSet {
	return &NewChangeSet{store: store, changeSet: newChangeSet()}
}

// Nodes returns the store new nodes should be inserted into while building
// this change set.
func (cs *NewChangeSet) Nodes() *Store { return cs.store }

// Replace records that oldPath was replaced by newPath. A no-op if the two
// paths are equal. Panics if recording this replacement would create a cycle
// within this change set (chasing more than one replacement link while
// resolving a single query inside one change set is never valid; see
// ChangeLog.LatestVersionOf for why cycles *across* change sets are fine).
// Also panics if oldPath was already recorded as removed in this change set.
func (cs *NewChangeSet) Replace(oldPath, newPath Path) {
	if oldPath.Equal(newPath) {
		return
	}

	oldKey := oldPath.Key()
	if e, ok := cs.changeSet.byOldKey[oldKey]; ok && e.kind == entryRemoved {
		panic(fmt.Sprintf("code: %s was both removed and replaced in the same change set", oldPath))
	}
	if cs.wouldCycle(oldKey, newPath.Key()) {
		panic(fmt.Sprintf("code: replacing %s with %s would create a cycle within this change set", oldPath, newPath))
	}

	cs.changeSet.byOldKey[oldKey] = entry{kind: entryReplaced, replacement: newPath}
	cs.changeSet.oldPaths[oldKey] = oldPath
}

// wouldCycle reports whether adding oldKey -> newKey would let a lookup,
// starting at newKey and chasing replacement links within this same change
// set, ever arrive back at oldKey.
func (cs *NewChangeSet) wouldCycle(oldKey, newKey string) bool {
	seen := map[string]bool{oldKey: true}
	cur := newKey
	for {
		if seen[cur] {
			return cur == oldKey
		}
		seen[cur] = true

		e, ok := cs.changeSet.byOldKey[cur]
		if !ok || e.kind != entryReplaced {
			return false
		}
		cur = e.replacement.Key()
	}
}

// Remove records that path was removed in this change set. Panics if path
// was already recorded as replaced in this change set.
func (cs *NewChangeSet) Remove(path Path) {
	key := path.Key()
	if e, ok := cs.changeSet.byOldKey[key]; ok && e.kind == entryReplaced {
		panic(fmt.Sprintf("code: %s was both replaced and removed in the same change set", path))
	}
	cs.changeSet.byOldKey[key] = entry{kind: entryRemoved}
	cs.changeSet.oldPaths[key] = path
}

// changeSetValue returns the finished, immutable ChangeSet once the
// building callback has returned.
func (cs *NewChangeSet) changeSetValue() *ChangeSet { return cs.changeSet }
