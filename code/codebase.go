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

// LocatedNode pairs a node with the path it was found at.
type LocatedNode struct {
	Path Path
	Node Node
}

// Codebase is the aggregate of the node store, the current root, the change
// log, and the build-error map. It is the sole mutable piece of state in the
// language core: the only way to change it is MakeChange / MakeChangeWithErrors,
// which always produce exactly one new change set.
type Codebase struct {
	store   *Store
	changes *ChangeLog
	errors  *Errors
	root    Path
}

// NewCodebase returns a codebase whose root is a fresh Empty node.
func NewCodebase() *Codebase {
	store := NewStore()
	empty := store.Insert(NewEmpty())

	return &Codebase{
		store:   store,
		changes: NewChangeLog(),
		errors:  NewErrors(),
		root:    ForRoot(empty),
	}
}

// Nodes returns the codebase's node store.
func (c *Codebase) Nodes() *Store { return c.store }

// Errors returns the codebase's build-error map.
func (c *Codebase) Errors() *Errors { return c.errors }

// Root returns the current root node and its path.
func (c *Codebase) Root() LocatedNode {
	return LocatedNode{Path: c.root, Node: c.store.Get(c.root.Hash())}
}

// NodeAt returns the node living at path.
func (c *Codebase) NodeAt(path Path) LocatedNode {
	return LocatedNode{Path: path, Node: c.store.Get(path.Hash())}
}

// LatestVersionOf resolves path against the full change history.
func (c *Codebase) LatestVersionOf(path Path) Path {
	return c.changes.LatestVersionOf(path)
}

// ChangeCount returns the number of edits applied to this codebase so far.
func (c *Codebase) ChangeCount() int { return c.changes.Len() }

// MakeChange is the only mutation primitive on Codebase: f is given a fresh
// NewChangeSet to record replacements and removals into (and the store to
// insert any new nodes into), and its return value is passed back to the
// caller once the new root has been derived and the change set committed.
func MakeChange[R any](c *Codebase, f func(*NewChangeSet) R) R {
	return MakeChangeWithErrors(c, func(cs *NewChangeSet, _ *Errors) R {
		return f(cs)
	})
}

// MakeChangeWithErrors is MakeChange, additionally giving f direct access to
// the codebase's build-error map so it can record or clear CodeErrors as
// part of the same change set.
func MakeChangeWithErrors[R any](c *Codebase, f func(*NewChangeSet, *Errors) R) R {
	cs := c.changes.NewChangeSet(c.store)
	result := f(cs, c.errors)

	finished := c.changes.Commit(cs)
	c.deriveRoot(finished)

	return result
}

// deriveRoot applies §4.4's root-derivation rules once a change set has been
// committed.
func (c *Codebase) deriveRoot(cs *ChangeSet) {
	replacement, wasReplaced := cs.Replacement(c.root)
	wasRemoved := cs.WasRemoved(c.root)

	if wasRemoved && wasReplaced {
		panic("code: root was both removed and replaced in the same change set")
	}

	switch {
	case wasReplaced:
		c.root = replacement
	case wasRemoved:
		c.root = c.rootAfterRemoval()
	default:
		// Root path untouched by this change set: either nothing changed,
		// or (more commonly) the compiler's ancestor-propagation already
		// produced a replacement entry for it, which the wasReplaced branch
		// above caught.
	}
}

// rootAfterRemoval implements the three arity cases from §4.4 for removing
// the root: zero children becomes a fresh Empty root, exactly one child
// becomes the new root directly, and more than one child is wrapped in a
// synthesized Error root so no children are lost.
func (c *Codebase) rootAfterRemoval() Path {
	removed := c.store.Get(c.root.Hash())

	switch len(removed.Children) {
	case 0:
		h := c.store.Insert(NewEmpty())
		return ForRoot(h)
	case 1:
		return ForRoot(removed.Children[0])
	default:
		h := c.store.Insert(NewError("", removed.Children))
		return ForRoot(h)
	}
}
